package usecase_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCatalog struct {
	mu       sync.Mutex
	products map[int64]*entity.Product
	nextID   int64
	lastList repository.ProductFilter
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[int64]*entity.Product{}}
}

func (m *memCatalog) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memCatalog) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memCatalog) UpdateAttributes(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[p.ID]
	if !ok {
		return domain.NewNotFoundError("Producto", p.ID)
	}
	cp := *p
	cp.SKU = stored.SKU
	cp.QuantityInStock = stored.QuantityInStock
	m.products[p.ID] = &cp
	return nil
}

func (m *memCatalog) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = f
	var all []*entity.Product
	for _, p := range m.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if f.Offset < len(all) {
		all = all[f.Offset:]
	} else {
		all = nil
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Bodegas en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memWarehouses struct {
	list []*entity.Warehouse
}

func (m *memWarehouses) Create(_ context.Context, w *entity.Warehouse) error {
	w.ID = int64(len(m.list) + 1)
	m.list = append(m.list, w)
	return nil
}

func (m *memWarehouses) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	for _, w := range m.list {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (m *memWarehouses) List(context.Context) ([]*entity.Warehouse, error) {
	return m.list, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

type stubReports struct {
	mu         sync.Mutex
	summary    *repository.InventorySummary
	top        []repository.TopProductResult
	low        []*entity.Product
	categories []repository.CategoryDistributionResult
	periods    []repository.MovementPeriodResult
	err        error

	topStart, topEnd *time.Time
	topLimit         int
	lowThreshold     *int
	lowLimit         int

	periodStart, periodEnd time.Time
	granularity            string
}

var errDB = errors.New("conexión perdida")

func (s *stubReports) InventorySummary(context.Context) (*repository.InventorySummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func (s *stubReports) TopProducts(_ context.Context, start, end *time.Time, limit int) ([]repository.TopProductResult, error) {
	s.mu.Lock()
	s.topStart, s.topEnd, s.topLimit = start, end, limit
	s.mu.Unlock()
	return s.top, nil
}

func (s *stubReports) LowStock(_ context.Context, threshold *int, limit int) ([]*entity.Product, error) {
	s.mu.Lock()
	s.lowThreshold, s.lowLimit = threshold, limit
	s.mu.Unlock()
	return s.low, nil
}

func (s *stubReports) CategoryDistribution(context.Context) ([]repository.CategoryDistributionResult, error) {
	return s.categories, s.err
}

func (s *stubReports) MovementsByPeriod(_ context.Context, start, end time.Time, granularity string) ([]repository.MovementPeriodResult, error) {
	s.mu.Lock()
	s.periodStart, s.periodEnd, s.granularity = start, end, granularity
	s.mu.Unlock()
	return s.periods, s.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memCategories struct {
	mu         sync.Mutex
	categories map[int64]*entity.Category
	products   map[int64]int64 // productos vivos por categoría
	nextID     int64
}

func newMemCategories() *memCategories {
	return &memCategories{categories: map[int64]*entity.Category{}, products: map[int64]int64{}}
}

func (m *memCategories) Create(_ context.Context, c *entity.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(c.Name, 0) {
		return domain.ErrDuplicate
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCategories) nameTaken(name string, exceptID int64) bool {
	for id, c := range m.categories {
		if id != exceptID && c.DeletedAt == nil && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (m *memCategories) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCategories) Update(_ context.Context, c *entity.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.categories[c.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.NewNotFoundError("Categoría", c.ID)
	}
	if m.nameTaken(c.Name, c.ID) {
		return domain.ErrDuplicate
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCategories) SoftDelete(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.DeletedAt != nil {
		return domain.NewNotFoundError("Categoría", id)
	}
	c.DeletedAt = &at
	return nil
}

func (m *memCategories) List(_ context.Context, f repository.CategoryFilter) ([]*entity.Category, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*entity.Category
	for _, c := range m.categories {
		if c.DeletedAt != nil {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (m *memCategories) CountProducts(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id], nil
}
