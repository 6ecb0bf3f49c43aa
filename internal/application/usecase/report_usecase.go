package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

const (
	defaultTopN          = 10
	maxTopN              = 100
	defaultLowStockLimit = 50
	maxLowStockLimit     = 500
	dashboardTopProducts = 5  // top de salidas en el dashboard
	dashboardLowStock    = 10 // productos a reponer en el dashboard
	defaultPeriodDays    = 30
	defaultGranularity   = "day"
)

// ReportUseCase reportes de inventario de solo lectura:
//   - resumen general (entradas, salidas, stock y valor);
//   - ranking de productos por unidades de salida;
//   - productos con stock bajo;
//   - distribución por categoría;
//   - entradas y salidas por día, semana o mes.
type ReportUseCase struct {
	repo repository.ReportRepository
	now  func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{repo: repo, now: time.Now}
}

// InventorySummary resumen general del inventario.
func (uc *ReportUseCase) InventorySummary(ctx context.Context) (*dto.InventorySummaryDTO, error) {
	s, err := uc.repo.InventorySummary(ctx)
	if err != nil {
		return nil, err
	}
	out := toSummaryDTO(s)
	return &out, nil
}

// TopProducts ranking de salidas. Limit por defecto 10 (máximo 100); el período es opcional.
func (uc *ReportUseCase) TopProducts(ctx context.Context, q dto.TopProductsQuery) ([]dto.TopProductDTO, error) {
	if q.StartDate != nil && q.EndDate != nil && q.EndDate.Before(*q.StartDate) {
		return nil, domain.NewValidationError("end_date", "end_date no puede ser anterior a start_date")
	}
	rows, err := uc.repo.TopProducts(ctx, q.StartDate, q.EndDate, clamp(q.Limit, defaultTopN, maxTopN))
	if err != nil {
		return nil, err
	}
	return toTopProductDTOs(rows), nil
}

// LowStock productos a reponer. Sin umbral se usa el nivel de reorden de cada producto.
func (uc *ReportUseCase) LowStock(ctx context.Context, q dto.LowStockQuery) ([]*dto.ProductResponse, error) {
	if q.Threshold != nil && *q.Threshold < 0 {
		return nil, domain.NewValidationError("threshold", "threshold no puede ser negativo")
	}
	list, err := uc.repo.LowStock(ctx, q.Threshold, clamp(q.Limit, defaultLowStockLimit, maxLowStockLimit))
	if err != nil {
		return nil, err
	}
	return ToProductResponses(list), nil
}

// CategoryDistribution productos, stock y valor por categoría.
func (uc *ReportUseCase) CategoryDistribution(ctx context.Context) ([]dto.CategoryDistributionDTO, error) {
	rows, err := uc.repo.CategoryDistribution(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryDistributionDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CategoryDistributionDTO{
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			ProductCount: r.ProductCount,
			TotalStock:   r.TotalStock,
			TotalValue:   r.TotalValue,
		})
	}
	return out, nil
}

// MovementsByPeriod entradas y salidas agrupadas por día, semana o mes.
// Sin end_date se usa el momento actual; sin start_date, los 30 días anteriores a end_date.
func (uc *ReportUseCase) MovementsByPeriod(ctx context.Context, q dto.MovementsByPeriodQuery) (*dto.MovementsByPeriodDTO, error) {
	if err := validateStruct(q); err != nil {
		return nil, err
	}
	granularity := q.Granularity
	if granularity == "" {
		granularity = defaultGranularity
	}
	end := uc.now()
	if q.EndDate != nil {
		end = *q.EndDate
	}
	start := end.AddDate(0, 0, -defaultPeriodDays)
	if q.StartDate != nil {
		start = *q.StartDate
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("end_date", "end_date no puede ser anterior a start_date")
	}
	rows, err := uc.repo.MovementsByPeriod(ctx, start, end, granularity)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementsByPeriodDTO{
		Granularity: granularity,
		StartDate:   start,
		EndDate:     end,
		Periods:     make([]dto.MovementPeriodDTO, 0, len(rows)),
	}
	for _, r := range rows {
		out.Periods = append(out.Periods, dto.MovementPeriodDTO{
			PeriodStart:  r.PeriodStart,
			TotalEntrada: r.TotalEntrada,
			TotalSalida:  r.TotalSalida,
			Net:          r.TotalEntrada - r.TotalSalida,
			Movements:    r.Movements,
		})
		out.TotalEntrada += r.TotalEntrada
		out.TotalSalida += r.TotalSalida
	}
	return out, nil
}

// Dashboard resumen, top 5 de salidas del mes en curso y productos bajo su nivel de reorden.
// Las tres consultas corren en paralelo; la primera que falla cancela las demás.
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var (
		summary  *repository.InventorySummary
		top      []repository.TopProductResult
		lowStock []*dto.ProductResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = uc.repo.InventorySummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = uc.repo.TopProducts(gctx, &monthStart, &now, dashboardTopProducts)
		return err
	})
	g.Go(func() error {
		list, err := uc.repo.LowStock(gctx, nil, dashboardLowStock)
		lowStock = ToProductResponses(list)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.DashboardDTO{
		Summary:     toSummaryDTO(summary),
		TopProducts: toTopProductDTOs(top),
		LowStock:    lowStock,
		PeriodStart: monthStart,
		PeriodEnd:   now,
	}, nil
}

func toSummaryDTO(s *repository.InventorySummary) dto.InventorySummaryDTO {
	return dto.InventorySummaryDTO{
		TotalProducts:    s.TotalProducts,
		TotalCategories:  s.TotalCategories,
		TotalEntrada:     s.TotalEntrada,
		TotalSalida:      s.TotalSalida,
		CurrentStock:     s.CurrentStock,
		TotalValue:       s.TotalValue,
		LowStockProducts: s.LowStockProducts,
	}
}

func toTopProductDTOs(rows []repository.TopProductResult) []dto.TopProductDTO {
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductDTO{
			ProductID:      r.ProductID,
			SKU:            r.SKU,
			Name:           r.Name,
			TotalQuantity:  r.TotalQuantity,
			TotalMovements: r.TotalMovements,
		})
	}
	return out
}

func clamp(v, def, upper int) int {
	if v <= 0 {
		return def
	}
	if v > upper {
		return upper
	}
	return v
}
