package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
)

// CategoryService categorías (implementado por usecase.CategoryUseCase).
type CategoryService interface {
	Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q dto.ListCategoriesQuery) ([]*dto.CategoryResponse, dto.Pagination, error)
}

// CategoryHandler maneja las peticiones HTTP de categorías.
type CategoryHandler struct {
	categories CategoryService
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CategoryEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	out, err := h.categories.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CategoryEnvelope{
		Success: true,
		Data:    out,
		Message: "Categoría creada exitosamente",
	})
}

// GetByID godoc
// @Summary      Obtener categoría por ID
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.categories.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CategoryEnvelope{Success: true, Data: out})
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "ID de la categoría"
// @Param        body  body      dto.UpdateCategoryRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CategoryEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	out, err := h.categories.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CategoryEnvelope{Success: true, Data: out, Message: "Categoría actualizada exitosamente"})
}

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Borrado lógico; no se permite si tiene productos asociados.
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la categoría"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Categoría eliminada exitosamente"})
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        search  query     string  false  "Búsqueda por nombre"
// @Param        status  query     string  false  "active | inactive"
// @Param        page    query     int     false  "Página (por defecto 1)"
// @Param        limit   query     int     false  "Tamaño de página (por defecto 10, máximo 100)"
// @Success      200     {object}  dto.CategoryListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	q := dto.ListCategoriesQuery{
		Search: queryValue(c, "search"),
		Status: queryValue(c, "status"),
	}
	var err error
	if q.PageRequest, err = queryPage(c); err != nil {
		return writeError(c, err)
	}
	list, page, err := h.categories.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CategoryListResponse{Success: true, Data: list, Pagination: page})
}
