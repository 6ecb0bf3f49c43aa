package dto

import "time"

// CreateCategoryRequest alta de categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdateCategoryRequest campos opcionales.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ListCategoriesQuery filtros del listado.
type ListCategoriesQuery struct {
	PageRequest
	Search string `json:"search"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CategoryResponse categoría.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryEnvelope respuesta de una categoría.
type CategoryEnvelope struct {
	Success bool              `json:"success"`
	Data    *CategoryResponse `json:"data"`
	Message string            `json:"message,omitempty"`
}

// CategoryListResponse listado paginado de categorías.
type CategoryListResponse struct {
	Success    bool                `json:"success"`
	Data       []*CategoryResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}
