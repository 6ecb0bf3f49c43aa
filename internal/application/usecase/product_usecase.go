package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// ProductUseCase catálogo de productos. Stock y movimientos se manejan en el ledger.
type ProductUseCase struct {
	repo       repository.ProductCatalogRepository
	categories repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso. categories puede ser nil (no se verifica la categoría).
func NewProductUseCase(repo repository.ProductCatalogRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories}
}

// Create crea un producto con stock 0. SKU duplicado devuelve domain.ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "price no puede ser negativo")
	}
	if in.Cost.IsNegative() {
		return nil, domain.NewValidationError("cost", "cost no puede ser negativo")
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	product := &entity.Product{
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Cost:         in.Cost,
		CategoryID:   in.CategoryID,
		WarehouseID:  in.WarehouseID,
		ReorderLevel: in.ReorderLevel,
		Status:       entity.ProductStatusActive,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto; inexistente devuelve NotFoundError.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Producto", id)
	}
	return ToProductResponse(product), nil
}

// Update actualiza los datos descriptivos. No permite modificar SKU ni stock.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Producto", id)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.NewValidationError("price", "price no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.NewValidationError("cost", "cost no puede ser negativo")
		}
		product.Cost = *in.Cost
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = in.CategoryID
	}
	if in.WarehouseID != nil {
		product.WarehouseID = in.WarehouseID
	}
	if in.ReorderLevel != nil {
		product.ReorderLevel = *in.ReorderLevel
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	if err := uc.repo.UpdateAttributes(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List página del catálogo.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ListProductsQuery) ([]*dto.ProductResponse, dto.Pagination, error) {
	q.PageRequest.Normalize()
	if err := validateStruct(q); err != nil {
		return nil, dto.Pagination{}, err
	}
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Limit:      q.Limit,
		Offset:     q.Offset(),
	})
	if err != nil {
		return nil, dto.Pagination{}, err
	}
	return ToProductResponses(list), dto.NewPagination(total, q.PageRequest), nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, id *int64) error {
	if id == nil || uc.categories == nil {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NewNotFoundError("Categoría", *id)
	}
	return nil
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Cost:            p.Cost,
		CategoryID:      p.CategoryID,
		WarehouseID:     p.WarehouseID,
		QuantityInStock: p.QuantityInStock,
		ReorderLevel:    p.ReorderLevel,
		LowStock:        p.IsLowStock(),
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses convierte una lista; nunca devuelve nil.
func ToProductResponses(list []*entity.Product) []*dto.ProductResponse {
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductResponse(p))
	}
	return out
}
