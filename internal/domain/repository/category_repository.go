package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// CategoryFilter filtros del listado de categorías.
type CategoryFilter struct {
	Search string // ILIKE sobre name
	Status string
	Limit  int
	Offset int
}

// CategoryRepository define el puerto de persistencia para Category.
type CategoryRepository interface {
	// Create devuelve domain.ErrDuplicate si ya existe una categoría viva con el mismo nombre.
	Create(ctx context.Context, c *entity.Category) error
	// GetByID devuelve nil, nil si no existe o fue eliminada.
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	Update(ctx context.Context, c *entity.Category) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, f CategoryFilter) ([]*entity.Category, int64, error)
	// CountProducts productos no eliminados que apuntan a la categoría.
	CountProducts(ctx context.Context, id int64) (int64, error)
}
