package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// ErrCircuitOpen el broker viene fallando y el circuito no deja pasar publicaciones.
var ErrCircuitOpen = errors.New("kafka: circuito abierto")

// MessageWriter lo que el productor usa de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter writer síncrono sin topic fijo: cada mensaje lleva el suyo.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}
}

// BreakerConfig umbrales del circuit breaker del productor.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig valores por defecto.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: 30 * time.Second, ConsecutiveFailures: 5}
}

// Producer publica eventos del outbox en Kafka detrás de un circuit breaker.
type Producer struct {
	writer MessageWriter
	cb     *gobreaker.CircuitBreaker
	topic  string
	log    zerolog.Logger
}

// NewProducer construye el productor.
func NewProducer(writer MessageWriter, cfg BreakerConfig, log zerolog.Logger) *Producer {
	settings := gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	}
	return &Producer{writer: writer, cb: gobreaker.NewCircuitBreaker(settings), log: log}
}

// RouteTo publica todos los eventos en topic en lugar del guardado en cada evento. Vacío no cambia nada.
func (p *Producer) RouteTo(topic string) *Producer {
	p.topic = topic
	return p
}

// Publish escribe el evento en su topic. La clave es el agregado (producto) para conservar el orden por producto.
func (p *Producer) Publish(ctx context.Context, e *entity.OutboxEvent) error {
	topic := e.Topic
	if p.topic != "" {
		topic = p.topic
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.EventType)},
			{Key: "aggregate-type", Value: []byte(e.AggregateType)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: e.CreatedAt,
	}
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err != nil {
		return fmt.Errorf("publicar %s en %s: %w", e.EventType, topic, err)
	}
	return nil
}

// Close cierra el writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
