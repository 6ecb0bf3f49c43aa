package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// MovementFilter filtros del listado paginado de movimientos. Los campos nil no filtran.
type MovementFilter struct {
	ProductID    *int64
	MovementType *entity.MovementType
	StartDate    *time.Time
	EndDate      *time.Time
	MinQuantity  *int
	MaxQuantity  *int
	Limit        int
	Offset       int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// Todas las lecturas excluyen movimientos con borrado lógico.
type InventoryMovementRepository interface {
	// Create persiste el movimiento y completa ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// GetByID devuelve nil, nil si no existe o está eliminado. Carga producto y creador.
	GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error)
	// GetForUpdate igual que GetByID pero bloquea la fila (SELECT FOR UPDATE); solo dentro de una tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.InventoryMovement, error)
	Update(ctx context.Context, movement *entity.InventoryMovement) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, int64, error)
	ListByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error)
	// LedgerBalance suma firmada y cantidad de movimientos del producto, sin contar ajustes de conciliación.
	LedgerBalance(ctx context.Context, productID int64) (balance int, count int, err error)
}
