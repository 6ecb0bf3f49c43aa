package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// InventorySummary totales del inventario. Sin ajustes de conciliación, TotalEntrada − TotalSalida
// coincide con CurrentStock cuando el stock está conciliado.
type InventorySummary struct {
	TotalProducts    int
	TotalCategories  int
	TotalEntrada     int64
	TotalSalida      int64
	CurrentStock     int64
	TotalValue       decimal.Decimal // Σ price × quantity_in_stock
	LowStockProducts int             // stock en o por debajo del nivel de reorden
}

// TopProductResult producto con sus salidas acumuladas en el período.
type TopProductResult struct {
	ProductID      int64
	SKU            string
	Name           string
	TotalQuantity  int64
	TotalMovements int
}

// CategoryDistributionResult productos, stock y valor por categoría. CategoryID nil agrupa los productos sin categoría.
type CategoryDistributionResult struct {
	CategoryID   *int64
	CategoryName string
	ProductCount int
	TotalStock   int64
	TotalValue   decimal.Decimal
}

// MovementPeriodResult entradas y salidas de un intervalo (día, semana o mes).
type MovementPeriodResult struct {
	PeriodStart  time.Time
	TotalEntrada int64
	TotalSalida  int64
	Movements    int
}

// ReportRepository consultas de solo lectura para reportes de inventario.
type ReportRepository interface {
	InventorySummary(ctx context.Context) (*InventorySummary, error)
	// TopProducts ranking por unidades de salida; start/end nil = sin límite. Excluye ajustes de conciliación.
	TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]TopProductResult, error)
	// LowStock productos con stock <= threshold; threshold nil usa el reorder_level de cada producto.
	LowStock(ctx context.Context, threshold *int, limit int) ([]*entity.Product, error)
	CategoryDistribution(ctx context.Context) ([]CategoryDistributionResult, error)
	// MovementsByPeriod totales agrupados con date_trunc(granularity); solo intervalos con movimientos.
	// Excluye ajustes de conciliación.
	MovementsByPeriod(ctx context.Context, start, end time.Time, granularity string) ([]MovementPeriodResult, error)
}
