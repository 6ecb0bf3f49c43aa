package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

// Códigos de error de la API.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeTransaction       = "TRANSACTION"
	CodeDuplicate         = "DUPLICATE"
	CodeLocked            = "LOCKED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeTimeout           = "TIMEOUT"
)

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Code: code, Message: message})
}

// writeError traduce errores de dominio a respuestas HTTP. Los errores de infraestructura
// se responden con un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ise *domain.InsufficientStockError
		nf  *domain.NotFoundError
		ve  *domain.ValidationError
	)
	switch {
	case errors.As(err, &ise):
		return errorJSON(c, fiber.StatusBadRequest, CodeInsufficientStock, ise.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return errorJSON(c, fiber.StatusBadRequest, CodeInsufficientStock, "stock insuficiente")
	case errors.As(err, &nf):
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, nf.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, "recurso no encontrado")
	case errors.As(err, &ve):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, ve.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "datos inválidos")
	case errors.Is(err, domain.ErrDuplicate):
		return errorJSON(c, fiber.StatusConflict, CodeDuplicate, "recurso duplicado")
	case errors.Is(err, domain.ErrLockNotAcquired):
		return errorJSON(c, fiber.StatusConflict, CodeLocked, "ya hay una conciliación en curso")
	case errors.Is(err, domain.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, "credenciales inválidas")
	case errors.Is(err, domain.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, CodeForbidden, "acceso denegado")
	case errors.Is(err, context.DeadlineExceeded):
		return errorJSON(c, fiber.StatusGatewayTimeout, CodeTimeout, "tiempo de espera agotado")
	default:
		return errorJSON(c, fiber.StatusInternalServerError, CodeTransaction, domain.ErrTransaction.Error())
	}
}
