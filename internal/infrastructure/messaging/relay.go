package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// Publisher destino de los eventos del outbox.
type Publisher interface {
	Publish(ctx context.Context, e *entity.OutboxEvent) error
}

// RelayMetrics contadores del relay. Puede ser nil.
type RelayMetrics interface {
	OutboxPublished(eventType string)
	OutboxFailed(eventType string)
	OutboxPending(n int)
}

// BatchRunner ejecuta un lote con un repositorio de outbox atado a una transacción.
type BatchRunner interface {
	RunBatch(ctx context.Context, fn func(repo repository.OutboxRepository) error) error
}

// RelayConfig intervalo de sondeo y tamaño de lote.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay lee eventos pendientes del outbox y los publica. Entrega al menos una vez.
type Relay struct {
	batches   BatchRunner
	publisher Publisher
	metrics   RelayMetrics
	interval  time.Duration
	batchSize int
	log       zerolog.Logger
}

// NewRelay construye el relay.
func NewRelay(batches BatchRunner, publisher Publisher, metrics RelayMetrics, cfg RelayConfig, log zerolog.Logger) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{
		batches:   batches,
		publisher: publisher,
		metrics:   metrics,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
		log:       log,
	}
}

// Run sondea el outbox hasta que se cancele ctx.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("relay de outbox iniciado")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("relay de outbox detenido")
			return nil
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("procesar lote de outbox")
			}
		}
	}
}

// ProcessBatch publica un lote de eventos pendientes y devuelve cuántos se publicaron.
// Con el circuito abierto corta el lote sin consumir reintentos.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.batches.RunBatch(ctx, func(repo repository.OutboxRepository) error {
		events, err := repo.FindUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if r.metrics != nil {
			r.metrics.OutboxPending(len(events))
		}
		for _, e := range events {
			err := r.publisher.Publish(ctx, e)
			if errors.Is(err, ErrCircuitOpen) {
				r.log.Warn().Int("remaining", len(events)-published).Msg("circuito abierto, se pospone el lote")
				return nil
			}
			if err != nil {
				if r.metrics != nil {
					r.metrics.OutboxFailed(e.EventType)
				}
				r.log.Warn().Err(err).Str("event_id", e.ID).Str("event_type", e.EventType).Int("retry", e.RetryCount+1).Msg("publicación fallida")
				if err := repo.IncrementRetry(ctx, e.ID, err.Error()); err != nil {
					return err
				}
				continue
			}
			if err := repo.MarkPublished(ctx, e.ID); err != nil {
				return err
			}
			if r.metrics != nil {
				r.metrics.OutboxPublished(e.EventType)
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}
