package repository

import (
	"context"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Solo ve productos sin borrado lógico.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si el producto no existe o fue eliminado.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate igual que GetByID pero bloquea la fila (SELECT FOR UPDATE); solo dentro de una tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// AdjustStock suma delta a quantity_in_stock en una sola sentencia y devuelve el nuevo valor.
	// Devuelve domain.ErrInsufficientStock si el resultado sería negativo.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	// ListActiveIDs IDs de todos los productos no eliminados, en orden ascendente.
	ListActiveIDs(ctx context.Context) ([]int64, error)
}
