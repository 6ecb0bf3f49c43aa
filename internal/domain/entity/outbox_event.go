package entity

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Tipos de evento emitidos por el ledger.
const (
	EventMovementCreated   = "inventory.movement.created"
	EventMovementUpdated   = "inventory.movement.updated"
	EventMovementDeleted   = "inventory.movement.deleted"
	EventStockReconciled   = "inventory.stock.reconciled"
	EventStockBootstrapped = "inventory.stock.bootstrapped"

	// TopicInventoryMovements topic por defecto de los eventos de inventario.
	TopicInventoryMovements = "inventario.movimientos"

	outboxMaxRetries = 10
)

// StockChange describe el efecto de un movimiento sobre el stock de un producto.
type StockChange struct {
	ProductID  int64 `json:"product_id"`
	Delta      int   `json:"delta"`
	StockAfter int   `json:"stock_after"`
}

// MovementEvent payload publicado por cada escritura del ledger.
type MovementEvent struct {
	MovementID   int64         `json:"movement_id"`
	ProductID    int64         `json:"product_id"`
	MovementType MovementType  `json:"movement_type"`
	Quantity     int           `json:"quantity"`
	Changes      []StockChange `json:"changes"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// OutboxEvent evento pendiente de publicar, escrito en la misma transacción que el movimiento.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	RetryCount    int
	LastError     string
	MaxRetries    int
}

// NewMovementOutboxEvent construye el evento del outbox para un movimiento.
func NewMovementOutboxEvent(eventType string, m *InventoryMovement, changes []StockChange, at time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(MovementEvent{
		MovementID:   m.ID,
		ProductID:    m.ProductID,
		MovementType: m.MovementType,
		Quantity:     m.Quantity,
		Changes:      changes,
		OccurredAt:   at,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "product",
		AggregateID:   strconv.FormatInt(m.ProductID, 10),
		EventType:     eventType,
		Topic:         TopicInventoryMovements,
		Payload:       payload,
		CreatedAt:     at,
		MaxRetries:    outboxMaxRetries,
	}, nil
}

// ShouldRetry indica si el evento aún puede reintentarse.
func (e *OutboxEvent) ShouldRetry() bool {
	return e.PublishedAt == nil && e.RetryCount < e.MaxRetries
}
