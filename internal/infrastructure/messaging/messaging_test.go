package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/messaging"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeOutbox struct {
	events  []*entity.OutboxEvent
	batches int
	markErr error
}

func (o *fakeOutbox) RunBatch(_ context.Context, fn func(repo repository.OutboxRepository) error) error {
	o.batches++
	return fn(o)
}

func (o *fakeOutbox) Save(_ context.Context, e *entity.OutboxEvent) error {
	o.events = append(o.events, e)
	return nil
}

func (o *fakeOutbox) FindUnpublished(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, e := range o.events {
		if e.ShouldRetry() && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, id string) error {
	if o.markErr != nil {
		return o.markErr
	}
	for _, e := range o.events {
		if e.ID == id {
			now := time.Now()
			e.PublishedAt = &now
		}
	}
	return nil
}

func (o *fakeOutbox) IncrementRetry(_ context.Context, id, lastError string) error {
	for _, e := range o.events {
		if e.ID == id {
			e.RetryCount++
			e.LastError = lastError
		}
	}
	return nil
}

type countingMetrics struct {
	published, failed, pending int
}

func (m *countingMetrics) OutboxPublished(string) { m.published++ }
func (m *countingMetrics) OutboxFailed(string)    { m.failed++ }
func (m *countingMetrics) OutboxPending(n int)    { m.pending = n }

func newEvent(t *testing.T, productID int64) *entity.OutboxEvent {
	t.Helper()
	m := &entity.InventoryMovement{ID: productID * 10, ProductID: productID, MovementType: entity.MovementTypeEntrada, Quantity: 1}
	e, err := entity.NewMovementOutboxEvent(entity.EventMovementCreated, m, nil, time.Now())
	require.NoError(t, err)
	return e
}

// ──────────────────────────────────────────────────────────────────────────────
// Producer
// ──────────────────────────────────────────────────────────────────────────────

func TestProducer_PublicaConClaveYCabeceras(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop())
	e := newEvent(t, 7)

	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, entity.TopicInventoryMovements, msg.Topic)
	assert.Equal(t, "7", string(msg.Key))
	assert.JSONEq(t, string(e.Payload), string(msg.Value))
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, entity.EventMovementCreated, headers["event-type"])
	assert.Equal(t, e.ID, headers["event-id"])
}

func TestProducer_RouteToSobrescribeTopic(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop()).RouteTo("bodega.eventos")

	require.NoError(t, p.Publish(context.Background(), newEvent(t, 3)))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "bodega.eventos", w.msgs[0].Topic)
}

func TestProducer_AbreCircuitoTrasFallosConsecutivos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	cfg := messaging.DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 3
	p := messaging.NewProducer(w, cfg, zerolog.Nop())
	e := newEvent(t, 1)

	for i := 0; i < 3; i++ {
		err := p.Publish(context.Background(), e)
		require.Error(t, err)
		assert.NotErrorIs(t, err, messaging.ErrCircuitOpen)
	}

	err := p.Publish(context.Background(), e)
	assert.ErrorIs(t, err, messaging.ErrCircuitOpen)
}

// ──────────────────────────────────────────────────────────────────────────────
// Relay
// ──────────────────────────────────────────────────────────────────────────────

func TestRelay_PublicaYMarca(t *testing.T) {
	w := &fakeWriter{}
	repo := &fakeOutbox{events: []*entity.OutboxEvent{newEvent(t, 1), newEvent(t, 2)}}
	metrics := &countingMetrics{}
	relay := messaging.NewRelay(repo, messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop()), metrics, messaging.RelayConfig{BatchSize: 10}, zerolog.Nop())

	n, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, w.msgs, 2)
	assert.Equal(t, 2, metrics.published)
	assert.Equal(t, 2, metrics.pending)
	assert.Equal(t, 1, repo.batches, "un lote por transacción")
	for _, e := range repo.events {
		assert.NotNil(t, e.PublishedAt)
	}

	n, err = relay.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "los publicados no se reenvían")
}

func TestRelay_FalloIncrementaReintento(t *testing.T) {
	w := &fakeWriter{err: errors.New("timeout")}
	repo := &fakeOutbox{events: []*entity.OutboxEvent{newEvent(t, 1)}}
	metrics := &countingMetrics{}
	relay := messaging.NewRelay(repo, messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop()), metrics, messaging.RelayConfig{}, zerolog.Nop())

	n, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, repo.events[0].RetryCount)
	assert.Contains(t, repo.events[0].LastError, "timeout")
	assert.Nil(t, repo.events[0].PublishedAt)
	assert.Equal(t, 1, metrics.failed)
}

func TestRelay_ErrorAlMarcarAbortaElLote(t *testing.T) {
	w := &fakeWriter{}
	repo := &fakeOutbox{events: []*entity.OutboxEvent{newEvent(t, 1), newEvent(t, 2)}, markErr: errors.New("conexión perdida")}
	relay := messaging.NewRelay(repo, messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop()), nil, messaging.RelayConfig{}, zerolog.Nop())

	n, err := relay.ProcessBatch(context.Background())

	assert.ErrorContains(t, err, "conexión perdida")
	assert.Zero(t, n)
	assert.Len(t, w.msgs, 1, "el lote se corta en el primer error")
}

// Con el circuito abierto el lote se corta y los eventos no gastan reintentos.
func TestRelay_CircuitoAbiertoNoConsumeReintentos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	cfg := messaging.DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 1
	cfg.Timeout = time.Hour
	repo := &fakeOutbox{events: []*entity.OutboxEvent{newEvent(t, 1), newEvent(t, 2), newEvent(t, 3)}}
	relay := messaging.NewRelay(repo, messaging.NewProducer(w, cfg, zerolog.Nop()), nil, messaging.RelayConfig{}, zerolog.Nop())

	_, err := relay.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repo.events[0].RetryCount)
	assert.Zero(t, repo.events[1].RetryCount)
	assert.Zero(t, repo.events[2].RetryCount)
}

func TestRelay_RunTerminaAlCancelar(t *testing.T) {
	repo := &fakeOutbox{events: []*entity.OutboxEvent{newEvent(t, 1)}}
	w := &fakeWriter{}
	relay := messaging.NewRelay(repo, messaging.NewProducer(w, messaging.DefaultBreakerConfig(), zerolog.Nop()), nil,
		messaging.RelayConfig{PollInterval: 10 * time.Millisecond}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	assert.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.msgs) == 1
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}
