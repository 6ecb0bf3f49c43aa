package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// Acciones posibles al conciliar un producto.
const (
	ActionNone      = "none"
	ActionBootstrap = "bootstrap"
	ActionCorrected = "corrected"
)

// ReconcileAllLockKey clave del bloqueo distribuido de la conciliación por lotes.
const ReconcileAllLockKey = "inventario:reconciliation:all"

// ReconciliationResult resultado de conciliar un producto.
type ReconciliationResult struct {
	ProductID  int64
	Cached     int // quantity_in_stock antes de conciliar
	Derived    int // saldo calculado desde los movimientos
	Action     string
	StockAfter int
	Movement   *entity.InventoryMovement // movimiento de arranque o de ajuste, si se generó
}

// ReconciliationReport resumen de una conciliación de todos los productos.
type ReconciliationReport struct {
	Checked      int
	Bootstrapped int
	Corrected    int
	Failed       int
	DryRun       bool
	StartedAt    time.Time
	FinishedAt   time.Time
	Results      []*ReconciliationResult
}

// ReconciliationConfig parámetros de la conciliación por lotes.
type ReconciliationConfig struct {
	Concurrency int
	LockTTL     time.Duration
}

// ReconciliationUseCase recalcula el stock desde el historial de movimientos y corrige la desviación
// del contador en caché con un movimiento de ajuste.
type ReconciliationUseCase struct {
	txRunner TxRunner
	products repository.ProductRepository
	ledger   *MovementUseCase
	locker   Locker
	metrics  Metrics
	cfg      ReconciliationConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewReconciliationUseCase construye el caso de uso. locker y metrics pueden ser nil.
func NewReconciliationUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	ledger *MovementUseCase,
	locker Locker,
	metrics Metrics,
	cfg ReconciliationConfig,
	log zerolog.Logger,
) *ReconciliationUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &ReconciliationUseCase{
		txRunner: txRunner,
		products: products,
		ledger:   ledger,
		locker:   locker,
		metrics:  metrics,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// ReconcileProduct concilia un producto con la fila bloqueada durante todo el cálculo.
//   - Sin movimientos y con stock > 0: crea la entrada de inventario inicial sin tocar el stock.
//   - Saldo derivado distinto del contador: emite un ajuste que lleva el contador al saldo derivado.
//
// Con dryRun no escribe nada; solo informa la acción que se tomaría.
func (uc *ReconciliationUseCase) ReconcileProduct(ctx context.Context, productID int64, dryRun bool) (*ReconciliationResult, error) {
	var result *ReconciliationResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("Producto", productID)
		}
		derived, count, err := movRepo.LedgerBalance(ctx, productID)
		if err != nil {
			return err
		}
		result = &ReconciliationResult{
			ProductID:  productID,
			Cached:     product.QuantityInStock,
			Derived:    derived,
			Action:     ActionNone,
			StockAfter: product.QuantityInStock,
		}

		switch {
		case count == 0 && product.QuantityInStock > 0:
			result.Action = ActionBootstrap
			result.Derived = product.QuantityInStock
			if dryRun {
				return nil
			}
			m, err := uc.bootstrap(ctx, movRepo, outboxRepo, product)
			if err != nil {
				return err
			}
			result.Movement = m
		case derived != product.QuantityInStock:
			result.Action = ActionCorrected
			result.StockAfter = derived
			if dryRun {
				return nil
			}
			m, err := uc.ledger.createInTx(ctx, movRepo, productRepo, outboxRepo, correctionFor(product, derived, uc.now()), entity.EventStockReconciled)
			if err != nil {
				return err
			}
			result.Movement = m
			result.StockAfter = m.Product.QuantityInStock
		}
		return nil
	})
	if err != nil {
		if domain.IsClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: conciliar producto %d: %w", domain.ErrTransaction, productID, err)
	}

	if !dryRun {
		uc.metrics.ReconciliationOutcome(result.Action)
	}
	if result.Action != ActionNone {
		uc.log.Info().
			Int64("product_id", productID).
			Int("cached", result.Cached).
			Int("derived", result.Derived).
			Str("action", result.Action).
			Bool("dry_run", dryRun).
			Msg("stock conciliado")
	}
	return result, nil
}

// bootstrap inserta la entrada de inventario inicial de un producto sin historial.
// El stock ya refleja la cantidad, por eso no se ajusta.
func (uc *ReconciliationUseCase) bootstrap(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	outboxRepo repository.OutboxRepository,
	product *entity.Product,
) (*entity.InventoryMovement, error) {
	at := product.CreatedAt
	if now := uc.now(); at.IsZero() || at.After(now) {
		at = now
	}
	m := &entity.InventoryMovement{
		ProductID:     product.ID,
		WarehouseID:   product.WarehouseID,
		MovementType:  entity.MovementTypeEntrada,
		Quantity:      product.QuantityInStock,
		ReferenceType: entity.ReferenceTypeInitialStock,
		ReferenceID:   fmt.Sprintf("INV-%04d", product.ID),
		Notes:         "Inventario inicial - " + product.Name,
		CreatedAt:     at,
	}
	if err := movRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	m.Product = product
	changes := []entity.StockChange{{ProductID: product.ID, Delta: 0, StockAfter: product.QuantityInStock}}
	if err := uc.ledger.emit(ctx, outboxRepo, entity.EventStockBootstrapped, m, changes); err != nil {
		return nil, err
	}
	return m, nil
}

func correctionFor(product *entity.Product, derived int, at time.Time) *entity.InventoryMovement {
	diff := derived - product.QuantityInStock
	mt := entity.MovementTypeEntrada
	if diff < 0 {
		mt = entity.MovementTypeSalida
		diff = -diff
	}
	return &entity.InventoryMovement{
		ProductID:     product.ID,
		WarehouseID:   product.WarehouseID,
		MovementType:  mt,
		Quantity:      diff,
		ReferenceType: entity.ReferenceTypeReconciliation,
		ReferenceID:   fmt.Sprintf("REC-%d-%d", product.ID, at.Unix()),
		Notes:         fmt.Sprintf("Ajuste por conciliación: stock en caché %d, saldo de movimientos %d", product.QuantityInStock, derived),
	}
}

// ReconcileAll concilia todos los productos no eliminados con concurrencia acotada.
// Un fallo en un producto se registra y no detiene el resto.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context, dryRun bool) (*ReconciliationReport, error) {
	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, ReconcileAllLockKey, uc.cfg.LockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				uc.log.Warn().Err(err).Msg("liberar bloqueo de conciliación")
			}
		}()
	}

	report := &ReconciliationReport{DryRun: dryRun, StartedAt: uc.now()}
	ids, err := uc.products.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.cfg.Concurrency)
	results := make([]*ReconciliationResult, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			res, err := uc.ReconcileProduct(ctx, id, dryRun)
			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			if err != nil {
				report.Failed++
				uc.log.Warn().Err(err).Int64("product_id", id).Msg("conciliación de producto fallida, se omite")
				return nil
			}
			results[i] = res
			switch res.Action {
			case ActionBootstrap:
				report.Bootstrapped++
			case ActionCorrected:
				report.Corrected++
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r != nil && r.Action != ActionNone {
			report.Results = append(report.Results, r)
		}
	}
	report.FinishedAt = uc.now()
	uc.metrics.ObserveReconciliationRun(report.FinishedAt.Sub(report.StartedAt), report.Failed)
	uc.log.Info().
		Int("checked", report.Checked).
		Int("bootstrapped", report.Bootstrapped).
		Int("corrected", report.Corrected).
		Int("failed", report.Failed).
		Bool("dry_run", dryRun).
		Msg("conciliación de inventario finalizada")
	return report, nil
}
