package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, name, description, status, created_at, updated_at, deleted_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una categoría nueva.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	if c.Status == "" {
		c.Status = entity.CategoryStatusActive
	}
	err := r.q.QueryRow(ctx,
		`INSERT INTO categories (name, description, status) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría no eliminada.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Update reescribe nombre, descripción y estado.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	err := r.q.QueryRow(ctx, `
		UPDATE categories SET name = $2, description = $3, status = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		c.ID, c.Name, c.Description, c.Status,
	).Scan(&c.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.NewNotFoundError("Categoría", c.ID)
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	default:
		return fmt.Errorf("update category: %w", err)
	}
}

// SoftDelete marca deleted_at; una categoría ya eliminada es NotFound.
func (r *CategoryRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE categories SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("Categoría", id)
	}
	return nil
}

// List página de categorías por nombre y total sin paginar.
func (r *CategoryRepo) List(ctx context.Context, f repository.CategoryFilter) ([]*entity.Category, int64, error) {
	where := squirrel.And{squirrel.Expr("deleted_at IS NULL")}
	if f.Search != "" {
		where = append(where, squirrel.ILike{"name": "%" + f.Search + "%"})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").From("categories").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	qb := squirrel.Select(categoryColumns).From("categories").Where(where).
		OrderBy("name", "id").
		PlaceholderFormat(squirrel.Dollar)
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan categories: %w", err)
	}
	return list, total, nil
}

// CountProducts productos vivos de la categoría.
func (r *CategoryRepo) CountProducts(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND deleted_at IS NULL`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}
	return n, nil
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
