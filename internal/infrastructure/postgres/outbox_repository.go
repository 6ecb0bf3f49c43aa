package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/messaging"
)

var (
	_ repository.OutboxRepository = (*OutboxRepo)(nil)
	_ messaging.BatchRunner       = (*OutboxBatchRunner)(nil)
)

// OutboxRepo eventos pendientes de publicar en la tabla outbox_events.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Dentro de TxRunner recibe la tx del movimiento.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Save inserta el evento.
func (r *OutboxRepo) Save(ctx context.Context, e *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, topic, payload, created_at, retry_count, max_retries, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, []byte(e.Payload),
		e.CreatedAt, e.RetryCount, e.MaxRetries, e.LastError,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FindUnpublished eventos no publicados con reintentos disponibles, en orden de creación.
// Dentro de OutboxBatchRunner las filas quedan bloqueadas hasta el commit y otro relay las salta.
func (r *OutboxRepo) FindUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, topic, payload, created_at, published_at, retry_count, max_retries, last_error
		FROM outbox_events
		WHERE published_at IS NULL AND retry_count < max_retries
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("find unpublished: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.OutboxEvent, error) {
		var (
			e       entity.OutboxEvent
			payload []byte
		)
		err := row.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Topic, &payload,
			&e.CreatedAt, &e.PublishedAt, &e.RetryCount, &e.MaxRetries, &e.LastError)
		e.Payload = payload
		return &e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan outbox event: %w", err)
	}
	return events, nil
}

// MarkPublished marca el evento como publicado.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `UPDATE outbox_events SET published_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// IncrementRetry registra un intento fallido.
func (r *OutboxRepo) IncrementRetry(ctx context.Context, id, lastError string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE outbox_events SET retry_count = retry_count + 1, last_error = $2 WHERE id = $1`,
		id, lastError,
	)
	if err != nil {
		return fmt.Errorf("increment retry: %w", err)
	}
	return nil
}

// OutboxBatchRunner ejecuta cada lote del relay en su propia transacción: buscar, publicar y marcar
// ocurren con las filas bloqueadas, así dos relays nunca publican el mismo evento a la vez.
type OutboxBatchRunner struct {
	pool *pgxpool.Pool
}

// NewOutboxBatchRunner construye el runner con el pool.
func NewOutboxBatchRunner(pool *pgxpool.Pool) *OutboxBatchRunner {
	return &OutboxBatchRunner{pool: pool}
}

// RunBatch abre la transacción, ejecuta fn con un OutboxRepo atado a ella y hace Commit o Rollback.
func (r *OutboxBatchRunner) RunBatch(ctx context.Context, fn func(repo repository.OutboxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin outbox batch: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(NewOutboxRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit outbox batch: %w", err)
	}
	return nil
}
