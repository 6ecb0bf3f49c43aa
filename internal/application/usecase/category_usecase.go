package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// CategoryUseCase mantenimiento de categorías de productos.
type CategoryUseCase struct {
	repo repository.CategoryRepository
	now  func() time.Time
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, now: time.Now}
}

// Create crea una categoría activa. Nombre repetido devuelve domain.ErrDuplicate.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category := &entity.Category{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Status:      entity.CategoryStatusActive,
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID obtiene una categoría no eliminada.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id int64) (*dto.CategoryResponse, error) {
	category, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Update aplica los campos presentes.
func (uc *CategoryUseCase) Update(ctx context.Context, id int64, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		category.Name = *in.Name
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		category.Status = *in.Status
	}
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Delete borrado lógico. Una categoría con productos vivos no se elimina.
func (uc *CategoryUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.NewValidationError("id", "la categoría tiene productos asociados")
	}
	return uc.repo.SoftDelete(ctx, id, uc.now())
}

// List página de categorías ordenada por nombre.
func (uc *CategoryUseCase) List(ctx context.Context, q dto.ListCategoriesQuery) ([]*dto.CategoryResponse, dto.Pagination, error) {
	q.PageRequest.Normalize()
	if err := validateStruct(q); err != nil {
		return nil, dto.Pagination{}, err
	}
	list, total, err := uc.repo.List(ctx, repository.CategoryFilter{
		Search: strings.TrimSpace(q.Search),
		Status: q.Status,
		Limit:  q.Limit,
		Offset: q.Offset(),
	})
	if err != nil {
		return nil, dto.Pagination{}, err
	}
	out := make([]*dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c))
	}
	return out, dto.NewPagination(total, q.PageRequest), nil
}

func (uc *CategoryUseCase) get(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewNotFoundError("Categoría", id)
	}
	return category, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
