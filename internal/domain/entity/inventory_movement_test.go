package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

func TestParseMovementType(t *testing.T) {
	mt, err := entity.ParseMovementType("entrada")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeEntrada, mt)

	mt, err = entity.ParseMovementType("salida")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeSalida, mt)

	for _, invalid := range []string{"ajuste", "devolucion", "ENTRADA", ""} {
		_, err := entity.ParseMovementType(invalid)
		assert.Error(t, err, invalid)
		assert.False(t, entity.MovementType(invalid).Valid())
	}
}

func TestSignedDelta(t *testing.T) {
	assert.Equal(t, 7, entity.SignedDelta(entity.MovementTypeEntrada, 7))
	assert.Equal(t, -7, entity.SignedDelta(entity.MovementTypeSalida, 7))
	assert.Panics(t, func() { entity.SignedDelta("ajuste", 1) })
}

func TestInventoryMovement_CloneNoComparteMemoria(t *testing.T) {
	w, u := int64(3), int64(9)
	m := &entity.InventoryMovement{ID: 1, WarehouseID: &w, CreatedByID: &u, MovementType: entity.MovementTypeEntrada, Quantity: 2}

	c := m.Clone()
	*c.WarehouseID = 4
	*c.CreatedByID = 10

	assert.Equal(t, int64(3), *m.WarehouseID)
	assert.Equal(t, int64(9), *m.CreatedByID)
	assert.Equal(t, 2, c.SignedDelta())
}

func TestNewMovementOutboxEvent(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	m := &entity.InventoryMovement{ID: 11, ProductID: 5, MovementType: entity.MovementTypeSalida, Quantity: 3}

	e, err := entity.NewMovementOutboxEvent(entity.EventMovementDeleted, m,
		[]entity.StockChange{{ProductID: 5, Delta: 3, StockAfter: 8}}, at)

	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "5", e.AggregateID)
	assert.True(t, e.ShouldRetry())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(e.Payload, &payload))
	assert.Equal(t, "salida", payload["movement_type"])
	assert.EqualValues(t, 11, payload["movement_id"])

	e.RetryCount = e.MaxRetries
	assert.False(t, e.ShouldRetry())
}
