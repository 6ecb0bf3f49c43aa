package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Product.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto del inventario.
// QuantityInStock es un contador en caché: solo lo modifican el ledger de movimientos y la conciliación.
type Product struct {
	ID              int64
	SKU             string // único, inmutable
	Name            string
	Description     string
	Price           decimal.Decimal
	Cost            decimal.Decimal
	CategoryID      *int64
	WarehouseID     *int64
	QuantityInStock int
	ReorderLevel    int
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// IsLowStock indica si el stock está en o por debajo del nivel de reorden.
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= p.ReorderLevel
}
