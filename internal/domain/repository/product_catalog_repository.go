package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// ProductFilter filtros del catálogo.
type ProductFilter struct {
	Search     string // ILIKE sobre sku y name
	Status     string
	CategoryID *int64
	Limit      int
	Offset     int
}

// ProductCatalogRepository mantenimiento del catálogo. El stock no se toca desde aquí.
type ProductCatalogRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// UpdateAttributes reescribe todo salvo sku y quantity_in_stock.
	UpdateAttributes(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int64, error)
}
