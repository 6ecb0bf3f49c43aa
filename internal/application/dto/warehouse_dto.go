package dto

import "time"

// CreateWarehouseRequest alta de bodega.
type CreateWarehouseRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Location string `json:"location" validate:"max=255"`
}

// WarehouseResponse bodega.
type WarehouseResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseEnvelope respuesta de una bodega.
type WarehouseEnvelope struct {
	Success bool               `json:"success"`
	Data    *WarehouseResponse `json:"data"`
	Message string             `json:"message,omitempty"`
}

// WarehouseListResponse listado de bodegas.
type WarehouseListResponse struct {
	Success bool                 `json:"success"`
	Data    []*WarehouseResponse `json:"data"`
	Total   int                  `json:"total"`
}
