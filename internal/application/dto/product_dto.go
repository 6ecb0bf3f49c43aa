package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSummary datos del producto que acompañan a un movimiento.
type ProductSummary struct {
	ID              int64           `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ReorderLevel    int             `json:"reorder_level"`
}

// CreateProductRequest alta de producto. El stock inicia en 0 y solo cambia con movimientos.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=100"`
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	CategoryID   *int64          `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	WarehouseID  *int64          `json:"warehouse_id,omitempty" validate:"omitempty,gt=0"`
	ReorderLevel int             `json:"reorder_level" validate:"min=0"`
}

// UpdateProductRequest campos opcionales; sku y stock no son editables.
type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string          `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	CategoryID   *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	WarehouseID  *int64           `json:"warehouse_id,omitempty" validate:"omitempty,gt=0"`
	ReorderLevel *int             `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	Status       *string          `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ListProductsQuery filtros del catálogo.
type ListProductsQuery struct {
	PageRequest
	Search     string `json:"search"`
	Status     string `json:"status" validate:"omitempty,oneof=active inactive"`
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
}

// ProductResponse producto completo.
type ProductResponse struct {
	ID              int64           `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Cost            decimal.Decimal `json:"cost"`
	CategoryID      *int64          `json:"category_id"`
	WarehouseID     *int64          `json:"warehouse_id"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ReorderLevel    int             `json:"reorder_level"`
	LowStock        bool            `json:"low_stock"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductEnvelope respuesta de un producto.
type ProductEnvelope struct {
	Success bool             `json:"success"`
	Data    *ProductResponse `json:"data"`
	Message string           `json:"message,omitempty"`
}

// ProductListResponse listado paginado del catálogo.
type ProductListResponse struct {
	Success    bool               `json:"success"`
	Data       []*ProductResponse `json:"data"`
	Pagination Pagination         `json:"pagination"`
}
