package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.WarehouseCatalogRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO warehouses (name, location) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		w.Name, w.Location,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega no eliminada por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, created_at, updated_at, deleted_at
		FROM warehouses WHERE id = $1 AND deleted_at IS NULL`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Location, &w.CreatedAt, &w.UpdatedAt, &w.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// List bodegas no eliminadas por nombre.
func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, location, created_at, updated_at, deleted_at
		FROM warehouses WHERE deleted_at IS NULL ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Warehouse, error) {
		var w entity.Warehouse
		err := row.Scan(&w.ID, &w.Name, &w.Location, &w.CreatedAt, &w.UpdatedAt, &w.DeletedAt)
		return &w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan warehouses: %w", err)
	}
	return list, nil
}
