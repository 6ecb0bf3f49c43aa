package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/usecase"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

func TestCategoryUseCase_CreaActiva(t *testing.T) {
	uc := usecase.NewCategoryUseCase(newMemCategories())

	c, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "  Herramientas ", Description: "Manuales"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Herramientas", c.Name)
	assert.Equal(t, "active", c.Status)
}

func TestCategoryUseCase_CreateValidaciones(t *testing.T) {
	uc := usecase.NewCategoryUseCase(newMemCategories())

	_, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "ab"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategoryUseCase_NombreDuplicado(t *testing.T) {
	uc := usecase.NewCategoryUseCase(newMemCategories())
	_, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "herramientas"})

	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategoryUseCase_UpdateParcial(t *testing.T) {
	uc := usecase.NewCategoryUseCase(newMemCategories())
	created, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas", Description: "Manuales"})
	require.NoError(t, err)

	updated, err := uc.Update(context.Background(), created.ID, dto.UpdateCategoryRequest{Status: ptr("inactive")})

	require.NoError(t, err)
	assert.Equal(t, "Herramientas", updated.Name)
	assert.Equal(t, "Manuales", updated.Description)
	assert.Equal(t, "inactive", updated.Status)

	_, err = uc.Update(context.Background(), 99, dto.UpdateCategoryRequest{Name: ptr("Otra")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryUseCase_DeleteConProductosEsValidacion(t *testing.T) {
	repo := newMemCategories()
	uc := usecase.NewCategoryUseCase(repo)
	created, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)
	repo.products[created.ID] = 2

	err = uc.Delete(context.Background(), created.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.GetByID(context.Background(), created.ID)
	assert.NoError(t, err)
}

func TestCategoryUseCase_DeleteLiberaElNombre(t *testing.T) {
	repo := newMemCategories()
	uc := usecase.NewCategoryUseCase(repo)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.SetNow(func() time.Time { return at })
	created, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), created.ID))

	_, err = uc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, at, *repo.categories[created.ID].DeletedAt)
	assert.ErrorIs(t, uc.Delete(context.Background(), created.ID), domain.ErrNotFound)

	_, err = uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas"})
	assert.NoError(t, err)
}

func TestCategoryUseCase_ListPaginaPorNombre(t *testing.T) {
	uc := usecase.NewCategoryUseCase(newMemCategories())
	for _, name := range []string{"Tornos", "Eléctricos", "Tornillería"} {
		_, err := uc.Create(context.Background(), dto.CreateCategoryRequest{Name: name})
		require.NoError(t, err)
	}

	list, page, err := uc.List(context.Background(), dto.ListCategoriesQuery{Search: "torn", PageRequest: dto.PageRequest{Limit: 1}})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	require.Len(t, list, 1)
	assert.Equal(t, "Tornillería", list[0].Name)
}

func TestProductUseCase_CategoriaInexistenteEsNotFound(t *testing.T) {
	categories := newMemCategories()
	products := newMemCatalog()
	uc := usecase.NewProductUseCase(products, categories)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "S", Name: "A", CategoryID: ptr(int64(7))})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, products.products)

	cats := usecase.NewCategoryUseCase(categories)
	c, err := cats.Create(context.Background(), dto.CreateCategoryRequest{Name: "Herramientas"})
	require.NoError(t, err)
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "S", Name: "A", CategoryID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, *p.CategoryID)
}
