package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventorySummaryDTO resumen general del inventario.
type InventorySummaryDTO struct {
	TotalProducts    int             `json:"total_products"`
	TotalCategories  int             `json:"total_categories"`
	TotalEntrada     int64           `json:"total_entrada"`
	TotalSalida      int64           `json:"total_salida"`
	CurrentStock     int64           `json:"current_stock"`
	TotalValue       decimal.Decimal `json:"total_value"`
	LowStockProducts int             `json:"low_stock_products"`
}

// TopProductsQuery parámetros del ranking de salidas.
type TopProductsQuery struct {
	Limit     int        `json:"limit"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// TopProductDTO fila del ranking.
type TopProductDTO struct {
	ProductID      int64  `json:"product_id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	TotalQuantity  int64  `json:"total_quantity"`
	TotalMovements int    `json:"total_movements"`
}

// LowStockQuery sin Threshold se compara contra el nivel de reorden de cada producto.
type LowStockQuery struct {
	Threshold *int `json:"threshold"`
	Limit     int  `json:"limit"`
}

// CategoryDistributionDTO productos, stock y valor de una categoría.
type CategoryDistributionDTO struct {
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ProductCount int             `json:"product_count"`
	TotalStock   int64           `json:"total_stock"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// DashboardDTO resumen, top de salidas del mes y productos a reponer.
type DashboardDTO struct {
	Summary     InventorySummaryDTO `json:"summary"`
	TopProducts []TopProductDTO     `json:"top_products"`
	LowStock    []*ProductResponse  `json:"low_stock"`
	PeriodStart time.Time           `json:"period_start"`
	PeriodEnd   time.Time           `json:"period_end"`
}

// MovementsByPeriodQuery rango y agrupación del reporte por período.
type MovementsByPeriodQuery struct {
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Granularity string     `json:"granularity" validate:"omitempty,oneof=day week month"`
}

// MovementPeriodDTO totales de un intervalo.
type MovementPeriodDTO struct {
	PeriodStart  time.Time `json:"period_start"`
	TotalEntrada int64     `json:"total_entrada"`
	TotalSalida  int64     `json:"total_salida"`
	Net          int64     `json:"net"`
	Movements    int       `json:"movements"`
}

// MovementsByPeriodDTO intervalos con movimientos y totales del rango.
type MovementsByPeriodDTO struct {
	Granularity  string              `json:"granularity"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	Periods      []MovementPeriodDTO `json:"periods"`
	TotalEntrada int64               `json:"total_entrada"`
	TotalSalida  int64               `json:"total_salida"`
}

// InventorySummaryResponse envoltorio del resumen.
type InventorySummaryResponse struct {
	Success bool                 `json:"success"`
	Data    *InventorySummaryDTO `json:"data"`
}

// TopProductsResponse envoltorio del ranking.
type TopProductsResponse struct {
	Success bool            `json:"success"`
	Data    []TopProductDTO `json:"data"`
}

// LowStockResponse envoltorio de productos a reponer.
type LowStockResponse struct {
	Success bool               `json:"success"`
	Data    []*ProductResponse `json:"data"`
	Total   int                `json:"total"`
}

// CategoryDistributionResponse envoltorio de la distribución por categoría.
type CategoryDistributionResponse struct {
	Success bool                      `json:"success"`
	Data    []CategoryDistributionDTO `json:"data"`
}

// DashboardResponse envoltorio del dashboard.
type DashboardResponse struct {
	Success bool          `json:"success"`
	Data    *DashboardDTO `json:"data"`
}

// MovementsByPeriodResponse envoltorio del reporte por período.
type MovementsByPeriodResponse struct {
	Success bool                  `json:"success"`
	Data    *MovementsByPeriodDTO `json:"data"`
}
