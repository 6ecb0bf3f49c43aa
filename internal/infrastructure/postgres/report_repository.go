package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para los reportes de inventario.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// InventorySummary totales de productos, movimientos y valor del inventario en una sola consulta.
// Los ajustes de conciliación no suman, igual que en LedgerBalance.
func (r *ReportRepo) InventorySummary(ctx context.Context) (*repository.InventorySummary, error) {
	const query = `
	WITH p AS (
	    SELECT
	        COUNT(*)                                                   AS total_products,
	        COALESCE(SUM(quantity_in_stock), 0)                        AS current_stock,
	        COALESCE(SUM(price * quantity_in_stock), 0)                AS total_value,
	        COUNT(*) FILTER (WHERE quantity_in_stock <= reorder_level) AS low_stock
	    FROM products
	    WHERE deleted_at IS NULL
	), m AS (
	    SELECT
	        COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'entrada'), 0) AS total_entrada,
	        COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'salida'),  0) AS total_salida
	    FROM inventory_movements
	    WHERE deleted_at IS NULL AND reference_type <> $1
	)
	SELECT p.total_products, (SELECT COUNT(*) FROM categories WHERE deleted_at IS NULL), m.total_entrada, m.total_salida,
	       p.current_stock, p.total_value, p.low_stock
	FROM p, m`

	var s repository.InventorySummary
	err := r.q.QueryRow(ctx, query, entity.ReferenceTypeReconciliation).Scan(
		&s.TotalProducts,
		&s.TotalCategories,
		&s.TotalEntrada,
		&s.TotalSalida,
		&s.CurrentStock,
		&s.TotalValue,
		&s.LowStockProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("reports.InventorySummary: %w", err)
	}
	return &s, nil
}

// TopProducts productos con más unidades de salida. Los ajustes de conciliación no cuentan como venta.
func (r *ReportRepo) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]repository.TopProductResult, error) {
	qb := squirrel.Select(
		"p.id", "p.sku", "p.name",
		"SUM(m.quantity) AS total_quantity",
		"COUNT(m.id) AS total_movements",
	).
		From("inventory_movements m").
		Join("products p ON p.id = m.product_id").
		Where("m.deleted_at IS NULL").
		Where("p.deleted_at IS NULL").
		Where(squirrel.Eq{"m.movement_type": string(entity.MovementTypeSalida)}).
		Where(squirrel.NotEq{"m.reference_type": entity.ReferenceTypeReconciliation}).
		GroupBy("p.id", "p.sku", "p.name").
		OrderBy("total_quantity DESC", "p.id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if start != nil {
		qb = qb.Where(squirrel.GtOrEq{"m.created_at": *start})
	}
	if end != nil {
		qb = qb.Where(squirrel.LtOrEq{"m.created_at": *end})
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("reports.TopProducts build: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("reports.TopProducts: %w", err)
	}
	defer rows.Close()

	results := make([]repository.TopProductResult, 0, limit)
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.TotalQuantity, &row.TotalMovements); err != nil {
			return nil, fmt.Errorf("reports.TopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// LowStock productos en o por debajo del umbral, los más escasos primero.
func (r *ReportRepo) LowStock(ctx context.Context, threshold *int, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND quantity_in_stock <= COALESCE($1::int, reorder_level)
		ORDER BY quantity_in_stock ASC, id
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("reports.LowStock: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("reports.LowStock scan: %w", err)
	}
	return list, nil
}

// CategoryDistribution productos, stock y valor por categoría; los productos sin categoría van al final.
func (r *ReportRepo) CategoryDistribution(ctx context.Context) ([]repository.CategoryDistributionResult, error) {
	const query = `
	SELECT
	    c.id,
	    COALESCE(c.name, 'Sin categoría')           AS category_name,
	    COUNT(p.id)                                 AS product_count,
	    COALESCE(SUM(p.quantity_in_stock), 0)       AS total_stock,
	    COALESCE(SUM(p.price * p.quantity_in_stock), 0) AS total_value
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	WHERE p.deleted_at IS NULL
	GROUP BY c.id, c.name
	ORDER BY c.id NULLS LAST`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports.CategoryDistribution: %w", err)
	}
	defer rows.Close()

	var results []repository.CategoryDistributionResult
	for rows.Next() {
		var row repository.CategoryDistributionResult
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.ProductCount, &row.TotalStock, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("reports.CategoryDistribution scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// MovementsByPeriod entradas y salidas por día, semana o mes entre start y end (inclusive).
func (r *ReportRepo) MovementsByPeriod(ctx context.Context, start, end time.Time, granularity string) ([]repository.MovementPeriodResult, error) {
	const query = `
	SELECT
	    date_trunc($1, created_at)                                          AS period_start,
	    COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'entrada'), 0) AS total_entrada,
	    COALESCE(SUM(quantity) FILTER (WHERE movement_type = 'salida'),  0) AS total_salida,
	    COUNT(*)                                                            AS movements
	FROM inventory_movements
	WHERE deleted_at IS NULL
	  AND reference_type <> $2
	  AND created_at >= $3 AND created_at <= $4
	GROUP BY period_start
	ORDER BY period_start`

	rows, err := r.q.Query(ctx, query, granularity, entity.ReferenceTypeReconciliation, start, end)
	if err != nil {
		return nil, fmt.Errorf("reports.MovementsByPeriod: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.MovementPeriodResult, error) {
		var p repository.MovementPeriodResult
		err := row.Scan(&p.PeriodStart, &p.TotalEntrada, &p.TotalSalida, &p.Movements)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("reports.MovementsByPeriod scan: %w", err)
	}
	return list, nil
}
