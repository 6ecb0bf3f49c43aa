package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

// Reconciler subconjunto de inventory.ReconciliationUseCase que usa la tarea.
type Reconciler interface {
	ReconcileProduct(ctx context.Context, productID int64, dryRun bool) (*inventory.ReconciliationResult, error)
	ReconcileAll(ctx context.Context, dryRun bool) (*inventory.ReconciliationReport, error)
}

// ReconcileJob procesa TaskInventoryReconcile.
type ReconcileJob struct {
	reconciler Reconciler
	log        zerolog.Logger
}

// NewReconcileJob construye el handler de la tarea.
func NewReconcileJob(reconciler Reconciler, log zerolog.Logger) *ReconcileJob {
	return &ReconcileJob{reconciler: reconciler, log: log}
}

// Handle ejecuta la conciliación. Si otra instancia ya tiene el bloqueo la ejecución se omite
// sin reintentos; un producto inexistente tampoco se reintenta.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}

	if payload.ProductID != nil {
		res, err := j.reconciler.ReconcileProduct(ctx, *payload.ProductID, payload.DryRun)
		if err != nil {
			if domain.IsClientError(err) {
				j.log.Warn().Err(err).Int64("product_id", *payload.ProductID).Msg("conciliación omitida")
				return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
			}
			return err
		}
		j.log.Info().
			Int64("product_id", res.ProductID).
			Str("action", res.Action).
			Int("cached", res.Cached).
			Int("derived", res.Derived).
			Msg("conciliación de producto ejecutada")
		return nil
	}

	_, err := j.reconciler.ReconcileAll(ctx, payload.DryRun)
	if errors.Is(err, domain.ErrLockNotAcquired) {
		j.log.Info().Msg("conciliación en curso en otra instancia, se omite")
		return nil
	}
	return err
}
