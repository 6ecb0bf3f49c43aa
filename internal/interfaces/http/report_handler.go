package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
)

// ReportService reportes de inventario (implementado por usecase.ReportUseCase).
type ReportService interface {
	InventorySummary(ctx context.Context) (*dto.InventorySummaryDTO, error)
	TopProducts(ctx context.Context, q dto.TopProductsQuery) ([]dto.TopProductDTO, error)
	LowStock(ctx context.Context, q dto.LowStockQuery) ([]*dto.ProductResponse, error)
	CategoryDistribution(ctx context.Context) ([]dto.CategoryDistributionDTO, error)
	Dashboard(ctx context.Context) (*dto.DashboardDTO, error)
	MovementsByPeriod(ctx context.Context, q dto.MovementsByPeriodQuery) (*dto.MovementsByPeriodDTO, error)
}

// ReportHandler endpoints de reportes (solo lectura).
type ReportHandler struct {
	reports ReportService
}

// NewReportHandler construye el handler.
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// InventorySummary godoc
// @Summary      Resumen del inventario
// @Description  Productos, categorías, unidades de entrada y salida, stock actual y valor total.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventorySummaryResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/inventory-summary [get]
func (h *ReportHandler) InventorySummary(c *fiber.Ctx) error {
	out, err := h.reports.InventorySummary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InventorySummaryResponse{Success: true, Data: out})
}

// TopProducts godoc
// @Summary      Productos con más salidas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit       query     int     false  "Máximo de filas (por defecto 10, máximo 100)"
// @Param        start_date  query     string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        end_date    query     string  false  "Hasta (YYYY-MM-DD incluye el día completo)"
// @Success      200         {object}  dto.TopProductsResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	var (
		q   dto.TopProductsQuery
		err error
	)
	if q.StartDate, err = queryDate(c, false, "start_date", "startDate"); err != nil {
		return writeError(c, err)
	}
	if q.EndDate, err = queryDate(c, true, "end_date", "endDate"); err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return writeError(c, err)
	}
	if limit != nil {
		q.Limit = *limit
	}
	out, err := h.reports.TopProducts(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TopProductsResponse{Success: true, Data: out})
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Description  Sin threshold se compara contra el nivel de reorden de cada producto.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold  query     int  false  "Umbral de unidades"
// @Param        limit      query     int  false  "Máximo de filas (por defecto 50, máximo 500)"
// @Success      200        {object}  dto.LowStockResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	var (
		q   dto.LowStockQuery
		err error
	)
	if q.Threshold, err = queryInt(c, "threshold"); err != nil {
		return writeError(c, err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return writeError(c, err)
	}
	if limit != nil {
		q.Limit = *limit
	}
	out, err := h.reports.LowStock(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LowStockResponse{Success: true, Data: out, Total: len(out)})
}

// CategoryDistribution godoc
// @Summary      Distribución por categoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CategoryDistributionResponse
// @Router       /api/reports/category-distribution [get]
func (h *ReportHandler) CategoryDistribution(c *fiber.Ctx) error {
	out, err := h.reports.CategoryDistribution(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CategoryDistributionResponse{Success: true, Data: out})
}

// Dashboard godoc
// @Summary      Dashboard de inventario
// @Description  Resumen, top 5 de salidas del mes en curso y productos bajo su nivel de reorden.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DashboardResponse{Success: true, Data: out})
}

// MovementsByPeriod godoc
// @Summary      Entradas y salidas por período
// @Description  Agrupa por día, semana o mes. Por defecto los últimos 30 días por día; excluye ajustes de conciliación.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date   query     string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        end_date     query     string  false  "Hasta (YYYY-MM-DD incluye el día completo)"
// @Param        granularity  query     string  false  "day | week | month"
// @Success      200          {object}  dto.MovementsByPeriodResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/reports/movements-by-period [get]
func (h *ReportHandler) MovementsByPeriod(c *fiber.Ctx) error {
	q := dto.MovementsByPeriodQuery{Granularity: queryValue(c, "granularity")}
	var err error
	if q.StartDate, err = queryDate(c, false, "start_date", "startDate"); err != nil {
		return writeError(c, err)
	}
	if q.EndDate, err = queryDate(c, true, "end_date", "endDate"); err != nil {
		return writeError(c, err)
	}
	out, err := h.reports.MovementsByPeriod(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementsByPeriodResponse{Success: true, Data: out})
}
