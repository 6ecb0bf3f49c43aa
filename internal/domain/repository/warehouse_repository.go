package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// WarehouseRepository define el puerto de lectura de bodegas que usa el validador de movimientos.
type WarehouseRepository interface {
	// GetByID devuelve nil, nil si la bodega no existe o fue eliminada.
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
}

// WarehouseCatalogRepository alta y consulta de bodegas.
type WarehouseCatalogRepository interface {
	WarehouseRepository
	Create(ctx context.Context, w *entity.Warehouse) error
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
