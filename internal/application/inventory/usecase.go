package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// MovementUseCase ledger de movimientos de inventario. Cada alta, edición o borrado
// se aplica junto con el ajuste de quantity_in_stock del producto en una sola transacción.
type MovementUseCase struct {
	txRunner  TxRunner
	movements repository.InventoryMovementRepository
	products  repository.ProductRepository
	validator *Validator
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewMovementUseCase construye el caso de uso. metrics puede ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
	validator *Validator,
	metrics Metrics,
	log zerolog.Logger,
) *MovementUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &MovementUseCase{
		txRunner:  txRunner,
		movements: movements,
		products:  products,
		validator: validator,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Create registra un movimiento y ajusta el stock del producto.
// userID es opcional (nil en modo desarrollo sin autenticación).
func (uc *MovementUseCase) Create(ctx context.Context, userID *int64, in dto.CreateMovementRequest) (*entity.InventoryMovement, error) {
	draft, err := uc.validator.ValidateCreate(ctx, in)
	if err != nil {
		return nil, uc.fail("create", err)
	}
	draft.Product = nil
	draft.CreatedByID = userID

	var created *entity.InventoryMovement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		var err error
		created, err = uc.createInTx(ctx, movRepo, productRepo, outboxRepo, draft, entity.EventMovementCreated)
		return err
	})
	if err != nil {
		return nil, uc.fail("create", err)
	}

	uc.metrics.MovementApplied("create", created.MovementType)
	uc.log.Info().
		Int64("movement_id", created.ID).
		Int64("product_id", created.ProductID).
		Str("type", string(created.MovementType)).
		Int("quantity", created.Quantity).
		Int("stock", created.Product.QuantityInStock).
		Msg("movimiento registrado")
	return uc.reload(ctx, created), nil
}

// createInTx bloquea el producto, revalida el stock, inserta el movimiento, ajusta el stock y escribe el evento.
// Lo comparten el alta normal y la conciliación.
func (uc *MovementUseCase) createInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	outboxRepo repository.OutboxRepository,
	m *entity.InventoryMovement,
	eventType string,
) (*entity.InventoryMovement, error) {
	product, err := productRepo.GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Producto", m.ProductID)
	}
	if err := CheckCreate(product, m); err != nil {
		return nil, err
	}
	if err := movRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	delta := m.SignedDelta()
	stock, err := productRepo.AdjustStock(ctx, product.ID, delta)
	if err != nil {
		return nil, err
	}
	product.QuantityInStock = stock
	m.Product = product

	changes := []entity.StockChange{{ProductID: product.ID, Delta: delta, StockAfter: stock}}
	if err := uc.emit(ctx, outboxRepo, eventType, m, changes); err != nil {
		return nil, err
	}
	return m, nil
}

// Update edita un movimiento y aplica el cambio neto de stock.
// Si cambia el producto se revierte el efecto en el producto anterior y se aplica en el nuevo.
func (uc *MovementUseCase) Update(ctx context.Context, id int64, in dto.UpdateMovementRequest) (*entity.InventoryMovement, error) {
	if _, _, err := uc.validator.ValidateUpdate(ctx, id, in); err != nil {
		return nil, uc.fail("update", err)
	}

	var updated *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		old, err := movRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.NewNotFoundError("Movimiento", id)
		}
		merged, err := MergeUpdate(old, in)
		if err != nil {
			return err
		}
		locked, err := lockProducts(ctx, productRepo, old.ProductID, merged.ProductID)
		if err != nil {
			return err
		}
		oldProduct, newProduct := locked[old.ProductID], locked[merged.ProductID]
		if err := CheckUpdate(old, merged, oldProduct, newProduct); err != nil {
			return err
		}

		var changes []entity.StockChange
		if old.ProductID == merged.ProductID {
			net := merged.SignedDelta() - old.SignedDelta()
			stock := oldProduct.QuantityInStock
			if net != 0 {
				if stock, err = productRepo.AdjustStock(ctx, oldProduct.ID, net); err != nil {
					return err
				}
			}
			oldProduct.QuantityInStock = stock
			changes = append(changes, entity.StockChange{ProductID: oldProduct.ID, Delta: net, StockAfter: stock})
		} else {
			reverted, err := productRepo.AdjustStock(ctx, oldProduct.ID, -old.SignedDelta())
			if err != nil {
				return err
			}
			applied, err := productRepo.AdjustStock(ctx, newProduct.ID, merged.SignedDelta())
			if err != nil {
				return err
			}
			oldProduct.QuantityInStock = reverted
			newProduct.QuantityInStock = applied
			changes = append(changes,
				entity.StockChange{ProductID: oldProduct.ID, Delta: -old.SignedDelta(), StockAfter: reverted},
				entity.StockChange{ProductID: newProduct.ID, Delta: merged.SignedDelta(), StockAfter: applied},
			)
		}

		merged.UpdatedAt = uc.now()
		if err := movRepo.Update(ctx, merged); err != nil {
			return err
		}
		merged.Product = newProduct
		if err := uc.emit(ctx, outboxRepo, entity.EventMovementUpdated, merged, changes); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		return nil, uc.fail("update", err)
	}

	uc.metrics.MovementApplied("update", updated.MovementType)
	uc.log.Info().
		Int64("movement_id", updated.ID).
		Int64("product_id", updated.ProductID).
		Str("type", string(updated.MovementType)).
		Int("quantity", updated.Quantity).
		Msg("movimiento actualizado")
	return uc.reload(ctx, updated), nil
}

// Delete hace borrado lógico del movimiento y revierte su efecto en el stock.
func (uc *MovementUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.validator.ValidateDelete(ctx, id); err != nil {
		return uc.fail("delete", err)
	}

	var deleted *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NewNotFoundError("Movimiento", id)
		}
		if m.IsReconciliation() {
			return errReconciliationImmutable
		}
		locked, err := lockProducts(ctx, productRepo, m.ProductID)
		if err != nil {
			return err
		}
		product := locked[m.ProductID]
		if err := CheckDelete(m, product); err != nil {
			return err
		}
		if err := movRepo.SoftDelete(ctx, id, uc.now()); err != nil {
			return err
		}
		delta := -m.SignedDelta()
		stock, err := productRepo.AdjustStock(ctx, product.ID, delta)
		if err != nil {
			return err
		}
		changes := []entity.StockChange{{ProductID: product.ID, Delta: delta, StockAfter: stock}}
		if err := uc.emit(ctx, outboxRepo, entity.EventMovementDeleted, m, changes); err != nil {
			return err
		}
		deleted = m
		return nil
	})
	if err != nil {
		return uc.fail("delete", err)
	}

	uc.metrics.MovementApplied("delete", deleted.MovementType)
	uc.log.Info().Int64("movement_id", id).Int64("product_id", deleted.ProductID).Msg("movimiento eliminado")
	return nil
}

// GetByID obtiene un movimiento no eliminado con su producto y creador.
func (uc *MovementUseCase) GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewNotFoundError("Movimiento", id)
	}
	return m, nil
}

// List lista movimientos con filtros y paginación (page por defecto 1, limit 10).
func (uc *MovementUseCase) List(ctx context.Context, q dto.ListMovementsQuery) ([]*entity.InventoryMovement, dto.Pagination, error) {
	if err := uc.validator.Struct(q); err != nil {
		return nil, dto.Pagination{}, err
	}
	q.PageRequest.Normalize()
	if q.StartDate != nil && q.EndDate != nil && q.StartDate.After(*q.EndDate) {
		return nil, dto.Pagination{}, domain.NewValidationError("start_date", "start_date no puede ser posterior a end_date")
	}
	if q.MinQuantity != nil && q.MaxQuantity != nil && *q.MinQuantity > *q.MaxQuantity {
		return nil, dto.Pagination{}, domain.NewValidationError("min_quantity", "min_quantity no puede ser mayor que max_quantity")
	}

	filter := repository.MovementFilter{
		ProductID:   q.ProductID,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		MinQuantity: q.MinQuantity,
		MaxQuantity: q.MaxQuantity,
		Limit:       q.Limit,
		Offset:      q.Offset(),
	}
	if q.MovementType != nil {
		mt, err := entity.ParseMovementType(*q.MovementType)
		if err != nil {
			return nil, dto.Pagination{}, domain.NewValidationError("movement_type", err.Error())
		}
		filter.MovementType = &mt
	}

	list, total, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, dto.Pagination{}, err
	}
	return list, dto.NewPagination(total, q.PageRequest), nil
}

// ListByProduct lista los movimientos de un producto existente, los más recientes primero.
func (uc *MovementUseCase) ListByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	_, list, err := uc.ProductHistory(ctx, productID)
	return list, err
}

// ProductHistory devuelve el producto y sus movimientos (para el kardex).
func (uc *MovementUseCase) ProductHistory(ctx context.Context, productID int64) (*entity.Product, []*entity.InventoryMovement, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.NewNotFoundError("Producto", productID)
	}
	list, err := uc.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, list, nil
}

func (uc *MovementUseCase) emit(
	ctx context.Context,
	outboxRepo repository.OutboxRepository,
	eventType string,
	m *entity.InventoryMovement,
	changes []entity.StockChange,
) error {
	event, err := entity.NewMovementOutboxEvent(eventType, m, changes, uc.now())
	if err != nil {
		return fmt.Errorf("build outbox event: %w", err)
	}
	return outboxRepo.Save(ctx, event)
}

// reload relee el movimiento confirmado para incluir el creador; si falla devuelve el que ya se tiene.
func (uc *MovementUseCase) reload(ctx context.Context, m *entity.InventoryMovement) *entity.InventoryMovement {
	fresh, err := uc.movements.GetByID(ctx, m.ID)
	if err != nil || fresh == nil {
		return m
	}
	return fresh
}

// fail clasifica el error: las precondiciones se devuelven tal cual; el resto se envuelve en ErrTransaction.
func (uc *MovementUseCase) fail(op string, err error) error {
	if domain.IsClientError(err) {
		uc.metrics.MovementRejected(op, rejectionReason(err))
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	uc.log.Error().Err(err).Str("op", op).Msg("transacción de movimiento fallida")
	return fmt.Errorf("%w: %w", domain.ErrTransaction, err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	default:
		return "validation"
	}
}

// lockProducts bloquea los productos en orden ascendente de ID para evitar interbloqueos.
func lockProducts(ctx context.Context, productRepo repository.ProductRepository, ids ...int64) (map[int64]*entity.Product, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	locked := make(map[int64]*entity.Product, len(unique))
	for _, id := range unique {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFoundError("Producto", id)
		}
		locked[id] = p
	}
	return locked, nil
}
