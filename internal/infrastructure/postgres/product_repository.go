package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var (
	_ repository.ProductRepository        = (*ProductRepo)(nil)
	_ repository.ProductCatalogRepository = (*ProductRepo)(nil)
)

const productColumns = `id, sku, name, description, price, cost, category_id, warehouse_id,
	quantity_in_stock, reorder_level, status, created_at, updated_at, deleted_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y completa ID y fechas.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.Status == "" {
		product.Status = entity.ProductStatusActive
	}
	query := `
		INSERT INTO products (sku, name, description, price, cost, category_id, warehouse_id, quantity_in_stock, reorder_level, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		product.SKU, product.Name, product.Description, product.Price, product.Cost,
		product.CategoryID, product.WarehouseID, product.QuantityInStock, product.ReorderLevel, product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isCheckViolation(err):
			return domain.NewValidationError("quantity_in_stock", "quantity_in_stock no puede ser negativo")
		case isForeignKeyViolation(err):
			return domain.NewValidationError(constraintName(err), "referencia inexistente")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto no eliminado por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query string, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// AdjustStock suma delta al contador en una sola sentencia, solo si el resultado no es negativo.
// Sin fila actualizada se distingue entre producto inexistente y stock insuficiente.
// El CHECK quantity_in_stock >= 0 de la tabla queda como respaldo.
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	query := `
		UPDATE products
		SET quantity_in_stock = quantity_in_stock + $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL AND quantity_in_stock + $2 >= 0
		RETURNING quantity_in_stock`
	var stock int
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&stock)
	switch {
	case err == nil:
		return stock, nil
	case errors.Is(err, pgx.ErrNoRows):
		var available int
		err := r.q.QueryRow(ctx, `SELECT quantity_in_stock FROM products WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewNotFoundError("Producto", id)
		}
		if err != nil {
			return 0, fmt.Errorf("read stock: %w", err)
		}
		return 0, &domain.InsufficientStockError{ProductID: id, Available: available, Requested: -delta}
	case isCheckViolation(err):
		return 0, &domain.InsufficientStockError{ProductID: id, Requested: -delta}
	case isOutOfRange(err):
		return 0, domain.NewValidationError("quantity", "el stock resultante supera el máximo permitido")
	default:
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
}

// ListActiveIDs IDs de productos no eliminados en orden ascendente.
func (r *ProductRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan product ids: %w", err)
	}
	return ids, nil
}

// UpdateAttributes actualiza los datos descriptivos; sku y quantity_in_stock no cambian.
func (r *ProductRepo) UpdateAttributes(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, cost = $5, category_id = $6, warehouse_id = $7,
			reorder_level = $8, status = $9, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Cost, p.CategoryID, p.WarehouseID, p.ReorderLevel, p.Status,
	).Scan(&p.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.NewNotFoundError("Producto", p.ID)
	case isForeignKeyViolation(err):
		return domain.NewValidationError(constraintName(err), "referencia inexistente")
	default:
		return fmt.Errorf("update product: %w", err)
	}
}

// List página del catálogo ordenada por nombre y total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int64, error) {
	where := squirrel.And{squirrel.Expr("deleted_at IS NULL")}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"sku": like}, squirrel.ILike{"name": like}})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}
	if f.CategoryID != nil {
		where = append(where, squirrel.Eq{"category_id": *f.CategoryID})
	}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").From("products").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	qb := squirrel.Select(productColumns).From("products").Where(where).
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
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan products: %w", err)
	}
	return list, total, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost, &p.CategoryID, &p.WarehouseID,
		&p.QuantityInStock, &p.ReorderLevel, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
