package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; en otro caso Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		outboxRepo repository.OutboxRepository,
	) error) error
}

// Locker bloqueo distribuido para procesos por lotes (conciliación).
// Acquire devuelve domain.ErrLockNotAcquired si otro proceso ya lo tiene.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Metrics instrumentación del ledger y la conciliación.
type Metrics interface {
	MovementApplied(op string, movementType entity.MovementType)
	MovementRejected(op, reason string)
	ReconciliationOutcome(action string)
	ObserveReconciliationRun(d time.Duration, failed int)
}

type noopMetrics struct{}

func (noopMetrics) MovementApplied(string, entity.MovementType) {}
func (noopMetrics) MovementRejected(string, string) {}
func (noopMetrics) ReconciliationOutcome(string) {}
func (noopMetrics) ObserveReconciliationRun(time.Duration, int) {}
