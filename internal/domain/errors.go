package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrTransaction       = errors.New("error al procesar la transacción")
	ErrLockNotAcquired   = errors.New("otro proceso tiene el bloqueo")
)

// ValidationError describe un campo rechazado por el validador. Cumple errors.Is(err, ErrInvalidInput).
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NotFoundError indica que un recurso referenciado no existe o fue eliminado.
type NotFoundError struct {
	Resource string // "Producto", "Movimiento", "Bodega"
	ID       int64
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string { return e.Resource + " no encontrado" }

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError se devuelve cuando una operación dejaría el stock de un producto en negativo.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente. Disponible: %d", e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// IsClientError indica si el error corresponde a una falla de precondición (4xx) y no de infraestructura.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicate)
}
