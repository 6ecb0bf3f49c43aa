package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

func movement(productID int64, mt entity.MovementType, qty int) *entity.InventoryMovement {
	return &entity.InventoryMovement{ID: 1, ProductID: productID, MovementType: mt, Quantity: qty}
}

func product(id int64, stock int) *entity.Product {
	return &entity.Product{ID: id, QuantityInStock: stock}
}

func TestCheckCreate(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		m     *entity.InventoryMovement
		ok    bool
	}{
		{"entrada sobre cero", 0, movement(1, entity.MovementTypeEntrada, 5), true},
		{"salida exacta", 5, movement(1, entity.MovementTypeSalida, 5), true},
		{"salida mayor al stock", 4, movement(1, entity.MovementTypeSalida, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inventory.CheckCreate(product(1, tt.stock), tt.m)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ise *domain.InsufficientStockError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tt.stock, ise.Available)
		})
	}
}

func TestCheckUpdate_MismoProducto(t *testing.T) {
	tests := []struct {
		name   string
		stock  int
		old    *entity.InventoryMovement
		merged *entity.InventoryMovement
		ok     bool
		avail  int
	}{
		{"entrada a salida", 50, movement(1, entity.MovementTypeEntrada, 10), movement(1, entity.MovementTypeSalida, 4), true, 0},
		{"reducir salida con stock cero", 0, movement(1, entity.MovementTypeSalida, 5), movement(1, entity.MovementTypeSalida, 3), true, 0},
		{"reducir entrada ya consumida", 2, movement(1, entity.MovementTypeEntrada, 10), movement(1, entity.MovementTypeEntrada, 5), false, -8},
		{"salida a entrada", 0, movement(1, entity.MovementTypeSalida, 5), movement(1, entity.MovementTypeEntrada, 5), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product(1, tt.stock)
			err := inventory.CheckUpdate(tt.old, tt.merged, p, p)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ise *domain.InsufficientStockError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tt.avail, ise.Available, "disponible se informa tras revertir el movimiento")
		})
	}
}

func TestCheckUpdate_CambioDeProducto(t *testing.T) {
	old := movement(1, entity.MovementTypeEntrada, 10)
	merged := movement(2, entity.MovementTypeEntrada, 10)

	assert.NoError(t, inventory.CheckUpdate(old, merged, product(1, 10), product(2, 0)))

	err := inventory.CheckUpdate(old, merged, product(1, 3), product(2, 0))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(1), ise.ProductID)

	salida := movement(2, entity.MovementTypeSalida, 10)
	err = inventory.CheckUpdate(old, salida, product(1, 10), product(2, 9))
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(2), ise.ProductID)
}

func TestCheckDelete(t *testing.T) {
	assert.NoError(t, inventory.CheckDelete(movement(1, entity.MovementTypeEntrada, 10), product(1, 10)))
	assert.NoError(t, inventory.CheckDelete(movement(1, entity.MovementTypeSalida, 10), product(1, 0)))
	assert.ErrorIs(t, inventory.CheckDelete(movement(1, entity.MovementTypeEntrada, 10), product(1, 2)), domain.ErrInsufficientStock)
}

func TestMergeUpdate(t *testing.T) {
	old := movement(1, entity.MovementTypeEntrada, 10)
	old.Notes = "original"
	old.Product = product(1, 10)

	merged, err := inventory.MergeUpdate(old, dto.UpdateMovementRequest{
		MovementType: ptr("salida"),
		ReferenceID:  ptr("  OC-12 "),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeSalida, merged.MovementType)
	assert.Equal(t, 10, merged.Quantity)
	assert.Equal(t, "original", merged.Notes)
	assert.Equal(t, "OC-12", merged.ReferenceID)
	assert.Nil(t, merged.Product)
	assert.Equal(t, entity.MovementTypeEntrada, old.MovementType, "el original no se modifica")

	_, err = inventory.MergeUpdate(old, dto.UpdateMovementRequest{ReferenceType: ptr("RECONCILIATION")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	old.ReferenceType = entity.ReferenceTypeReconciliation
	_, err = inventory.MergeUpdate(old, dto.UpdateMovementRequest{Notes: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidatorStruct_MensajesEnEspanol(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)

	err := v.Struct(dto.CreateMovementRequest{ProductID: 1, MovementType: "entrada"})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "quantity", verr.Field)
	assert.Equal(t, `"quantity" es requerido`, verr.Message)

	err = v.Struct(dto.CreateMovementRequest{ProductID: 1, MovementType: "traslado", Quantity: 1})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, `"movement_type" debe ser uno de [entrada, salida]`, verr.Message)
}

func TestValidateCreate_CantidadFueraDeRangoEntero(t *testing.T) {
	s := newMemStore()
	s.addProduct(1, 0)
	v := inventory.NewValidator(memProducts{s}, memMovements{s}, memWarehouses{s})

	_, err := v.ValidateCreate(context.Background(), createReq(1, "entrada", 3_000_000_000))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "quantity", verr.Field)
	assert.Equal(t, `"quantity" no puede ser mayor que 2147483647`, verr.Message)
}

func TestCheckCreate_StockResultanteSuperaMaximo(t *testing.T) {
	err := inventory.CheckCreate(product(1, inventory.MaxStock-5), movement(1, entity.MovementTypeEntrada, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = inventory.CheckCreate(product(1, inventory.MaxStock-5), movement(1, entity.MovementTypeEntrada, 5))
	assert.NoError(t, err)
}

func TestCheckDelete_RevertirSalidaSinDesbordar(t *testing.T) {
	err := inventory.CheckDelete(movement(1, entity.MovementTypeSalida, 10), product(1, inventory.MaxStock))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
