package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
)

// ProductService catálogo de productos (implementado por usecase.ProductUseCase).
type ProductService interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, q dto.ListProductsQuery) ([]*dto.ProductResponse, dto.Pagination, error)
}

// ProductHandler maneja las peticiones HTTP del catálogo.
type ProductHandler struct {
	products ProductService
}

// NewProductHandler construye el handler.
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create godoc
// @Summary      Crear producto
// @Description  El stock inicia en 0; solo los movimientos lo modifican.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	out, err := h.products.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductEnvelope{
		Success: true,
		Data:    out,
		Message: "Producto creado exitosamente",
	})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID del producto"
// @Success      200  {object}  dto.ProductEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.products.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductEnvelope{Success: true, Data: out})
}

// Update godoc
// @Summary      Actualizar producto
// @Description  SKU y stock no son editables.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "ID del producto"
// @Param        body  body      dto.UpdateProductRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ProductEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
	}
	out, err := h.products.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductEnvelope{Success: true, Data: out, Message: "Producto actualizado exitosamente"})
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        search       query     string  false  "Búsqueda por SKU o nombre"
// @Param        status       query     string  false  "active | inactive"
// @Param        category_id  query     int     false  "ID de categoría"
// @Param        page         query     int     false  "Página (por defecto 1)"
// @Param        limit        query     int     false  "Tamaño de página (por defecto 10, máximo 100)"
// @Success      200          {object}  dto.ProductListResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := dto.ListProductsQuery{
		Search: queryValue(c, "search"),
		Status: queryValue(c, "status"),
	}
	var err error
	if q.CategoryID, err = queryInt64(c, "category_id", "categoryId"); err != nil {
		return writeError(c, err)
	}
	if q.PageRequest, err = queryPage(c); err != nil {
		return writeError(c, err)
	}
	list, page, err := h.products.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductListResponse{Success: true, Data: list, Pagination: page})
}
