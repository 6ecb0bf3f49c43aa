package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

func sampleProduct() *dto.ProductResponse {
	return &dto.ProductResponse{
		ID: 1, SKU: "SKU-1", Name: "Tornillo", Price: decimal.RequireFromString("120.50"),
		QuantityInStock: 3, ReorderLevel: 5, LowStock: true, Status: "active",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/products
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CreateSoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	req := dto.CreateProductRequest{SKU: "SKU-1", Name: "Tornillo", ReorderLevel: 5}
	api.products.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sampleProduct(), nil)

	resp := api.do(t, http.MethodPost, "/api/products", req, "admin")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[dto.ProductEnvelope](t, resp)
	assert.Equal(t, "Producto creado exitosamente", body.Message)
	require.NotNil(t, body.Data)
	assert.Equal(t, "SKU-1", body.Data.SKU)

	resp = api.do(t, http.MethodPost, "/api/products", req, "bodeguero")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProducts_CreateDuplicadoRetorna409(t *testing.T) {
	api := newTestAPI(t)
	api.products.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicate)

	resp := api.do(t, http.MethodPost, "/api/products", dto.CreateProductRequest{SKU: "S", Name: "A"}, "admin")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, resp).Code)
}

func TestProducts_ListParseaFiltros(t *testing.T) {
	api := newTestAPI(t)
	cat := int64(4)
	want := dto.ListProductsQuery{
		PageRequest: dto.PageRequest{Page: 2, Limit: 5},
		Search:      "tor",
		Status:      "active",
		CategoryID:  &cat,
	}
	api.products.EXPECT().List(gomock.Any(), want).
		Return([]*dto.ProductResponse{sampleProduct()}, dto.Pagination{Total: 6, Page: 2, Limit: 5, Pages: 2}, nil)

	resp := api.do(t, http.MethodGet, "/api/products?search=tor&status=active&category_id=4&page=2&limit=5", nil, "vendedor")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.ProductListResponse](t, resp)
	require.Len(t, body.Data, 1)
	assert.True(t, body.Data[0].LowStock)
	assert.Equal(t, 2, body.Pagination.Pages)
}

func TestProducts_ListFiltroInvalido(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/products?category_id=abc", nil, "admin")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_GetByIDYUpdate(t *testing.T) {
	api := newTestAPI(t)
	api.products.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, domain.NewNotFoundError("Producto", 9))
	name := "Nuevo"
	api.products.EXPECT().Update(gomock.Any(), int64(1), dto.UpdateProductRequest{Name: &name}).Return(sampleProduct(), nil)

	resp := api.do(t, http.MethodGet, "/api/products/9", nil, "bodeguero")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", decode[dto.ErrorResponse](t, resp).Message)

	resp = api.do(t, http.MethodPut, "/api/products/1", dto.UpdateProductRequest{Name: &name}, "admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Producto actualizado exitosamente", decode[dto.ProductEnvelope](t, resp).Message)
}

func TestProducts_SinToken401(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/products", nil, "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/categories
// ──────────────────────────────────────────────────────────────────────────────

func TestCategories_CreateSoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	req := dto.CreateCategoryRequest{Name: "Herramientas"}
	api.categories.EXPECT().Create(gomock.Any(), req).
		Return(&dto.CategoryResponse{ID: 3, Name: "Herramientas", Status: "active"}, nil)

	resp := api.do(t, http.MethodPost, "/api/categories", req, "admin")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[dto.CategoryEnvelope](t, resp)
	assert.Equal(t, "Categoría creada exitosamente", body.Message)
	require.NotNil(t, body.Data)
	assert.Equal(t, int64(3), body.Data.ID)

	resp = api.do(t, http.MethodPost, "/api/categories", req, "vendedor")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCategories_ListParseaFiltros(t *testing.T) {
	api := newTestAPI(t)
	want := dto.ListCategoriesQuery{PageRequest: dto.PageRequest{Limit: 20}, Search: "herr", Status: "active"}
	api.categories.EXPECT().List(gomock.Any(), want).
		Return([]*dto.CategoryResponse{{ID: 3, Name: "Herramientas"}}, dto.Pagination{Total: 1, Page: 1, Limit: 20, Pages: 1}, nil)

	resp := api.do(t, http.MethodGet, "/api/categories?search=herr&status=active&limit=20", nil, "bodeguero")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.CategoryListResponse](t, resp)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(1), body.Pagination.Total)
}

func TestCategories_DeleteConProductosRetorna400(t *testing.T) {
	api := newTestAPI(t)
	api.categories.EXPECT().Delete(gomock.Any(), int64(3)).
		Return(domain.NewValidationError("id", "la categoría tiene productos asociados"))

	resp := api.do(t, http.MethodDelete, "/api/categories/3", nil, "admin")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "la categoría tiene productos asociados", decode[dto.ErrorResponse](t, resp).Message)
}

func TestCategories_GetInexistenteRetorna404(t *testing.T) {
	api := newTestAPI(t)
	api.categories.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, domain.NewNotFoundError("Categoría", 9))

	resp := api.do(t, http.MethodGet, "/api/categories/9", nil, "vendedor")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/warehouses
// ──────────────────────────────────────────────────────────────────────────────

func TestWarehouses_CrearYListar(t *testing.T) {
	api := newTestAPI(t)
	w := &dto.WarehouseResponse{ID: 1, Name: "Principal", Location: "Bogotá"}
	api.warehouses.EXPECT().Create(gomock.Any(), dto.CreateWarehouseRequest{Name: "Principal", Location: "Bogotá"}).Return(w, nil)
	api.warehouses.EXPECT().List(gomock.Any()).Return([]*dto.WarehouseResponse{w}, nil)

	resp := api.do(t, http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Name: "Principal", Location: "Bogotá"}, "admin")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Bodega creada exitosamente", decode[dto.WarehouseEnvelope](t, resp).Message)

	resp = api.do(t, http.MethodGet, "/api/warehouses", nil, "vendedor")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.WarehouseListResponse](t, resp)
	assert.Equal(t, 1, list.Total)
}

func TestWarehouses_GetByIDInvalido(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/warehouses/0", nil, "admin")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/reports
// ──────────────────────────────────────────────────────────────────────────────

func TestReports_InventorySummary(t *testing.T) {
	api := newTestAPI(t)
	api.reports.EXPECT().InventorySummary(gomock.Any()).Return(&dto.InventorySummaryDTO{
		TotalProducts: 3, TotalEntrada: 50, TotalSalida: 20, CurrentStock: 30, TotalValue: decimal.NewFromInt(900),
	}, nil)

	resp := api.do(t, http.MethodGet, "/api/reports/inventory-summary", nil, "vendedor")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.InventorySummaryResponse](t, resp)
	require.NotNil(t, body.Data)
	assert.Equal(t, int64(30), body.Data.CurrentStock)
}

func TestReports_TopProductsFechas(t *testing.T) {
	api := newTestAPI(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	api.reports.EXPECT().TopProducts(gomock.Any(), dto.TopProductsQuery{Limit: 3, StartDate: &start, EndDate: &end}).
		Return([]dto.TopProductDTO{{ProductID: 1, SKU: "SKU-1", TotalQuantity: 12}}, nil)

	resp := api.do(t, http.MethodGet, "/api/reports/top-products?limit=3&start_date=2026-01-01&end_date=2026-01-31", nil, "admin")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.TopProductsResponse](t, resp)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(12), body.Data[0].TotalQuantity)
}

func TestReports_TopProductsFechaInvalida(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/api/reports/top-products?start_date=01/01/2026", nil, "admin")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReports_LowStockUmbral(t *testing.T) {
	api := newTestAPI(t)
	threshold := 4
	api.reports.EXPECT().LowStock(gomock.Any(), dto.LowStockQuery{Threshold: &threshold}).
		Return([]*dto.ProductResponse{sampleProduct()}, nil)

	resp := api.do(t, http.MethodGet, "/api/reports/low-stock?threshold=4", nil, "bodeguero")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.LowStockResponse](t, resp).Total)
}

func TestReports_CategoryDistributionYDashboard(t *testing.T) {
	api := newTestAPI(t)
	api.reports.EXPECT().CategoryDistribution(gomock.Any()).
		Return([]dto.CategoryDistributionDTO{{CategoryName: "Sin categoría", ProductCount: 2}}, nil)
	api.reports.EXPECT().Dashboard(gomock.Any()).Return(nil, domain.ErrTransaction)

	resp := api.do(t, http.MethodGet, "/api/reports/category-distribution", nil, "admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.CategoryDistributionResponse](t, resp)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Sin categoría", body.Data[0].CategoryName)

	resp = api.do(t, http.MethodGet, "/api/reports/dashboard", nil, "admin")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "TRANSACTION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestReports_MovementsByPeriodParseaParametros(t *testing.T) {
	api := newTestAPI(t)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	want := dto.MovementsByPeriodQuery{StartDate: &start, EndDate: &end, Granularity: "week"}
	api.reports.EXPECT().MovementsByPeriod(gomock.Any(), want).Return(&dto.MovementsByPeriodDTO{
		Granularity:  "week",
		Periods:      []dto.MovementPeriodDTO{{PeriodStart: start, TotalEntrada: 9, TotalSalida: 4, Net: 5, Movements: 2}},
		TotalEntrada: 9,
		TotalSalida:  4,
	}, nil)

	resp := api.do(t, http.MethodGet, "/api/reports/movements-by-period?start_date=2026-02-01&end_date=2026-02-28&granularity=week", nil, "vendedor")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.MovementsByPeriodResponse](t, resp)
	require.NotNil(t, body.Data)
	require.Len(t, body.Data.Periods, 1)
	assert.Equal(t, int64(5), body.Data.Periods[0].Net)
}
