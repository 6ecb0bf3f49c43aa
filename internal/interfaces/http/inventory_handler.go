package http

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks . MovementService,StockCardService,ReconciliationService,LoginService,ProductService,WarehouseService,ReportService

// MovementService puerto del ledger de movimientos (implementado por inventory.MovementUseCase).
type MovementService interface {
	Create(ctx context.Context, userID *int64, in dto.CreateMovementRequest) (*entity.InventoryMovement, error)
	Update(ctx context.Context, id int64, in dto.UpdateMovementRequest) (*entity.InventoryMovement, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error)
	List(ctx context.Context, q dto.ListMovementsQuery) ([]*entity.InventoryMovement, dto.Pagination, error)
	ListByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error)
}

// StockCardService genera el kardex en PDF.
type StockCardService interface {
	Download(ctx context.Context, productID int64) ([]byte, string, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos de inventario.
type InventoryHandler struct {
	movements  MovementService
	stockCards StockCardService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements MovementService, stockCards StockCardService) *InventoryHandler {
	return &InventoryHandler{movements: movements, stockCards: stockCards}
}

// Create godoc
// @Summary      Registrar movimiento de inventario
// @Description  Registra una entrada o salida y ajusta el stock del producto en la misma transacción.
// @Tags         inventory-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateMovementRequest  true  "product_id, movement_type (entrada|salida), quantity"
// @Success      201   {object}  dto.MovementEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory-movements [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	m, err := h.movements.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementEnvelope{
		Success: true,
		Data:    inventory.ToMovementResponse(m),
		Message: "Movimiento de inventario registrado exitosamente",
	})
}

// List godoc
// @Summary      Listar movimientos de inventario
// @Description  Filtros opcionales; fechas en RFC3339 o YYYY-MM-DD (end_date con solo fecha incluye el día completo).
// @Tags         inventory-movements
// @Security     Bearer
// @Produce      json
// @Param        product_id     query     int     false  "ID de producto"
// @Param        movement_type  query     string  false  "entrada | salida"
// @Param        start_date     query     string  false  "Desde"
// @Param        end_date       query     string  false  "Hasta"
// @Param        min_quantity   query     int     false  "Cantidad mínima"
// @Param        max_quantity   query     int     false  "Cantidad máxima"
// @Param        page           query     int     false  "Página (por defecto 1)"
// @Param        limit          query     int     false  "Tamaño de página (por defecto 10, máximo 100)"
// @Success      200            {object}  dto.MovementListResponse
// @Failure      400            {object}  dto.ErrorResponse
// @Router       /api/inventory-movements [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	list, page, err := h.movements.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Success:    true,
		Data:       inventory.ToMovementResponses(list),
		Pagination: page,
	})
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory-movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-movements/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.movements.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementEnvelope{Success: true, Data: inventory.ToMovementResponse(m)})
}

// Update godoc
// @Summary      Actualizar movimiento de inventario
// @Description  Revierte el efecto anterior y aplica el nuevo; si cambia el producto se ajustan ambos.
// @Tags         inventory-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "ID del movimiento"
// @Param        body  body      dto.UpdateMovementRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.MovementEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory-movements/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	m, err := h.movements.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementEnvelope{
		Success: true,
		Data:    inventory.ToMovementResponse(m),
		Message: "Movimiento de inventario actualizado exitosamente",
	})
}

// Delete godoc
// @Summary      Eliminar movimiento de inventario
// @Description  Borrado lógico; revierte su efecto sobre el stock.
// @Tags         inventory-movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID del movimiento"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory-movements/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.movements.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Movimiento de inventario eliminado exitosamente"})
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         inventory-movements
// @Security     Bearer
// @Produce      json
// @Param        productId  path      int  true  "ID del producto"
// @Success      200        {object}  dto.ProductMovementsResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/inventory-movements/product/{productId} [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.movements.ListByProduct(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductMovementsResponse{
		Success: true,
		Data:    inventory.ToMovementResponses(list),
		Total:   len(list),
	})
}

// StockCardPDF godoc
// @Summary      Kardex del producto (PDF)
// @Tags         inventory-movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        productId  path  int  true  "ID del producto"
// @Success      200        {file}    binary
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/inventory-movements/product/{productId}/stock-card.pdf [get]
func (h *InventoryHandler) StockCardPDF(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	doc, filename, err := h.stockCards.Download(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, name+" debe ser un entero positivo")
	}
	return id, nil
}

// parseListQuery acepta snake_case y camelCase (productId, movementType, startDate, ...).
func parseListQuery(c *fiber.Ctx) (dto.ListMovementsQuery, error) {
	var (
		q   dto.ListMovementsQuery
		err error
	)
	if q.ProductID, err = queryInt64(c, "product_id", "productId"); err != nil {
		return q, err
	}
	if v := queryValue(c, "movement_type", "movementType"); v != "" {
		q.MovementType = &v
	}
	if q.StartDate, err = queryDate(c, false, "start_date", "startDate"); err != nil {
		return q, err
	}
	if q.EndDate, err = queryDate(c, true, "end_date", "endDate"); err != nil {
		return q, err
	}
	if q.MinQuantity, err = queryInt(c, "min_quantity", "minQuantity"); err != nil {
		return q, err
	}
	if q.MaxQuantity, err = queryInt(c, "max_quantity", "maxQuantity"); err != nil {
		return q, err
	}
	q.PageRequest, err = queryPage(c)
	return q, err
}

func queryPage(c *fiber.Ctx) (dto.PageRequest, error) {
	var p dto.PageRequest
	page, err := queryInt(c, "page")
	if err != nil {
		return p, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return p, err
	}
	if page != nil {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p, nil
}

func queryValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(c *fiber.Ctx, keys ...string) (*int, error) {
	raw := queryValue(c, keys...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError(keys[0], keys[0]+" debe ser un número entero")
	}
	return &n, nil
}

func queryInt64(c *fiber.Ctx, keys ...string) (*int64, error) {
	raw := queryValue(c, keys...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.NewValidationError(keys[0], keys[0]+" debe ser un número entero")
	}
	return &n, nil
}

// queryDate acepta RFC3339 o YYYY-MM-DD. Con solo fecha, endOfDay lleva el límite al final del día.
func queryDate(c *fiber.Ctx, endOfDay bool, keys ...string) (*time.Time, error) {
	raw := queryValue(c, keys...)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.NewValidationError(keys[0], keys[0]+" debe tener formato YYYY-MM-DD o RFC3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
