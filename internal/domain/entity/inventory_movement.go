package entity

import (
	"fmt"
	"time"
)

// MovementType tipo de movimiento de inventario. Conjunto cerrado: entrada o salida.
type MovementType string

const (
	MovementTypeEntrada MovementType = "entrada"
	MovementTypeSalida  MovementType = "salida"
)

// Tipos de referencia reservados por el sistema.
const (
	ReferenceTypeInitialStock   = "INVENTARIO_INICIAL"
	ReferenceTypeReconciliation = "RECONCILIATION"
)

// ParseMovementType convierte el valor recibido por la API en un MovementType.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(s) {
	case MovementTypeEntrada:
		return MovementTypeEntrada, nil
	case MovementTypeSalida:
		return MovementTypeSalida, nil
	default:
		return "", fmt.Errorf("tipo de movimiento inválido: %q", s)
	}
}

// Sign devuelve +1 para entrada y -1 para salida.
func (t MovementType) Sign() int {
	switch t {
	case MovementTypeEntrada:
		return 1
	case MovementTypeSalida:
		return -1
	default:
		panic(fmt.Sprintf("tipo de movimiento no soportado: %q", string(t)))
	}
}

// Valid indica si el tipo pertenece al conjunto soportado.
func (t MovementType) Valid() bool {
	_, err := ParseMovementType(string(t))
	return err == nil
}

// SignedDelta efecto de un movimiento sobre el stock: +q en entrada, -q en salida.
func SignedDelta(t MovementType, quantity int) int {
	return t.Sign() * quantity
}

// InventoryMovement representa un evento de stock (entrada o salida) de un producto.
// Nunca se borra físicamente: DeletedAt marca el borrado lógico.
type InventoryMovement struct {
	ID            int64
	ProductID     int64
	WarehouseID   *int64
	MovementType  MovementType
	Quantity      int // siempre > 0; el signo lo da MovementType
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedByID   *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time

	// Relaciones cargadas por las consultas de lectura.
	Product   *Product
	CreatedBy *User
}

// SignedDelta efecto del movimiento sobre quantity_in_stock.
func (m *InventoryMovement) SignedDelta() int {
	return SignedDelta(m.MovementType, m.Quantity)
}

// IsReconciliation indica si el movimiento fue generado por la conciliación de stock.
// Estos movimientos no cuentan en el saldo derivado y no se pueden editar ni eliminar.
func (m *InventoryMovement) IsReconciliation() bool {
	return m.ReferenceType == ReferenceTypeReconciliation
}

// IsDeleted indica si el movimiento tiene borrado lógico.
func (m *InventoryMovement) IsDeleted() bool {
	return m.DeletedAt != nil
}

// Clone copia superficial del movimiento (los punteros a IDs se duplican).
func (m *InventoryMovement) Clone() *InventoryMovement {
	c := *m
	if m.WarehouseID != nil {
		w := *m.WarehouseID
		c.WarehouseID = &w
	}
	if m.CreatedByID != nil {
		u := *m.CreatedByID
		c.CreatedByID = &u
	}
	if m.DeletedAt != nil {
		d := *m.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}
