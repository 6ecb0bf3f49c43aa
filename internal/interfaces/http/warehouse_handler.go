package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
)

// WarehouseService bodegas (implementado por usecase.WarehouseUseCase).
type WarehouseService interface {
	Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.WarehouseResponse, error)
	List(ctx context.Context) ([]*dto.WarehouseResponse, error)
}

// WarehouseHandler maneja las peticiones HTTP de bodegas.
type WarehouseHandler struct {
	warehouses WarehouseService
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(warehouses WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouses: warehouses}
}

// Create godoc
// @Summary      Crear bodega
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateWarehouseRequest  true  "Datos de la bodega"
// @Success      201   {object}  dto.WarehouseEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	out, err := h.warehouses.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WarehouseEnvelope{
		Success: true,
		Data:    out,
		Message: "Bodega creada exitosamente",
	})
}

// GetByID godoc
// @Summary      Obtener bodega por ID
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la bodega"
// @Success      200  {object}  dto.WarehouseEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.warehouses.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.WarehouseEnvelope{Success: true, Data: out})
}

// List godoc
// @Summary      Listar bodegas
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	list, err := h.warehouses.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.WarehouseListResponse{Success: true, Data: list, Total: len(list)})
}
