package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// OutboxRepository persistencia de eventos pendientes de publicar.
type OutboxRepository interface {
	// Save inserta el evento; dentro de una tx queda atado al commit del movimiento.
	Save(ctx context.Context, event *entity.OutboxEvent) error
	// FindUnpublished eventos no publicados con reintentos disponibles, los más antiguos primero.
	FindUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
	IncrementRetry(ctx context.Context, id string, lastError string) error
}
