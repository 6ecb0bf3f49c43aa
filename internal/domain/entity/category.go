package entity

import "time"

const (
	CategoryStatusActive   = "active"
	CategoryStatusInactive = "inactive"
)

// Category agrupa productos para el catálogo y los reportes.
type Category struct {
	ID          int64
	Name        string
	Description string
	Status      string // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
