package dto

import "time"

// CreateMovementRequest body para POST /api/inventory-movements.
type CreateMovementRequest struct {
	ProductID     int64  `json:"product_id" validate:"required,gt=0"`
	WarehouseID   *int64 `json:"warehouse_id,omitempty" validate:"omitempty,gt=0"`
	MovementType  string `json:"movement_type" validate:"required,oneof=entrada salida"`
	Quantity      int    `json:"quantity" validate:"required,gt=0,lte=2147483647"`
	Notes         string `json:"notes" validate:"max=500"`
	ReferenceType string `json:"reference_type" validate:"max=100"`
	ReferenceID   string `json:"reference_id" validate:"max=100"`
}

// UpdateMovementRequest body para PUT /api/inventory-movements/:id. Todos los campos son opcionales.
type UpdateMovementRequest struct {
	ProductID     *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	WarehouseID   *int64  `json:"warehouse_id,omitempty" validate:"omitempty,gt=0"`
	MovementType  *string `json:"movement_type,omitempty" validate:"omitempty,oneof=entrada salida"`
	Quantity      *int    `json:"quantity,omitempty" validate:"omitempty,gt=0,lte=2147483647"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	ReferenceType *string `json:"reference_type,omitempty" validate:"omitempty,max=100"`
	ReferenceID   *string `json:"reference_id,omitempty" validate:"omitempty,max=100"`
}

// ListMovementsQuery filtros de GET /api/inventory-movements.
type ListMovementsQuery struct {
	PageRequest
	ProductID    *int64     `json:"product_id" validate:"omitempty,gt=0"`
	MovementType *string    `json:"movement_type" validate:"omitempty,oneof=entrada salida"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	MinQuantity  *int       `json:"min_quantity" validate:"omitempty,gt=0,lte=2147483647"`
	MaxQuantity  *int       `json:"max_quantity" validate:"omitempty,gt=0,lte=2147483647"`
}

// MovementResponse salida de un movimiento con su producto y creador.
type MovementResponse struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	WarehouseID   *int64          `json:"warehouse_id"`
	MovementType  string          `json:"movement_type"`
	Quantity      int             `json:"quantity"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Notes         string          `json:"notes"`
	CreatedByID   *int64          `json:"created_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Product       *ProductSummary `json:"product,omitempty"`
	CreatedBy     *UserSummary    `json:"created_by,omitempty"`
}

// MovementEnvelope respuesta de un solo movimiento.
type MovementEnvelope struct {
	Success bool              `json:"success"`
	Data    *MovementResponse `json:"data"`
	Message string            `json:"message,omitempty"`
}

// MovementListResponse respuesta paginada de movimientos.
type MovementListResponse struct {
	Success    bool                `json:"success"`
	Data       []*MovementResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// ProductMovementsResponse respuesta de movimientos de un producto.
type ProductMovementsResponse struct {
	Success bool                `json:"success"`
	Data    []*MovementResponse `json:"data"`
	Total   int                 `json:"total"`
}

// ReconcileRequest body para POST /api/inventory/reconciliation. Sin product_id concilia todos.
type ReconcileRequest struct {
	ProductID *int64 `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	DryRun    bool   `json:"dry_run"`
}

// ReconciliationResultDTO resultado de conciliar un producto.
type ReconciliationResultDTO struct {
	ProductID  int64             `json:"product_id"`
	Cached     int               `json:"cached"`
	Derived    int               `json:"derived"`
	Action     string            `json:"action"`
	StockAfter int               `json:"stock_after"`
	Movement   *MovementResponse `json:"movement,omitempty"`
}

// ReconciliationReportDTO resultado de conciliar todos los productos.
type ReconciliationReportDTO struct {
	Checked      int                        `json:"checked"`
	Bootstrapped int                        `json:"bootstrapped"`
	Corrected    int                        `json:"corrected"`
	Failed       int                        `json:"failed"`
	DryRun       bool                       `json:"dry_run"`
	StartedAt    time.Time                  `json:"started_at"`
	FinishedAt   time.Time                  `json:"finished_at"`
	Results      []*ReconciliationResultDTO `json:"results"`
}
