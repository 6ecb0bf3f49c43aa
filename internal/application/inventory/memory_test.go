package inventory_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// memStore almacenamiento en memoria con transacciones serializadas y rollback por snapshot.
type memStore struct {
	mu         sync.Mutex
	txMu       sync.Mutex
	products   map[int64]*entity.Product
	movements  map[int64]*entity.InventoryMovement
	warehouses map[int64]*entity.Warehouse
	users      map[int64]*entity.User
	outbox     []*entity.OutboxEvent
	nextID     int64
	clock      time.Time
	outboxErr  error
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]*entity.Product{},
		movements:  map[int64]*entity.InventoryMovement{},
		warehouses: map[int64]*entity.Warehouse{},
		users:      map[int64]*entity.User{},
		nextID:     1,
		clock:      time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// tick avanza el reloj interno para que cada movimiento tenga una fecha distinta.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memStore) addProduct(id int64, stock int) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Product{
		ID:              id,
		SKU:             "SKU-" + string(rune('A'+id%26)),
		Name:            "Producto " + string(rune('A'+id%26)),
		QuantityInStock: stock,
		ReorderLevel:    5,
		Status:          entity.ProductStatusActive,
		CreatedAt:       time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	s.products[id] = p
	return p
}

func (s *memStore) setStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].QuantityInStock = stock
}

func (s *memStore) stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].QuantityInStock
}

// insertRaw inserta un movimiento sin tocar el stock (simula historial heredado o desviación).
func (s *memStore) insertRaw(productID int64, mt entity.MovementType, qty int, refType string) *entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	at := s.tick()
	m := &entity.InventoryMovement{
		ID:            s.nextID,
		ProductID:     productID,
		MovementType:  mt,
		Quantity:      qty,
		ReferenceType: refType,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	s.nextID++
	s.movements[m.ID] = m
	return m.Clone()
}

// ledgerSum saldo de movimientos no eliminados sin contar ajustes de conciliación.
func (s *memStore) ledgerSum(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, _ := s.balanceLocked(productID)
	return sum
}

func (s *memStore) balanceLocked(productID int64) (int, int) {
	sum, count := 0, 0
	for _, m := range s.movements {
		if m.ProductID != productID || m.DeletedAt != nil || m.IsReconciliation() {
			continue
		}
		sum += m.SignedDelta()
		count++
	}
	return sum, count
}

func (s *memStore) liveMovements(productID int64) []*entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range s.movements {
		if m.ProductID == productID && m.DeletedAt == nil {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) outboxEvents() []*entity.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.OutboxEvent(nil), s.outbox...)
}

type memSnapshot struct {
	products  map[int64]entity.Product
	movements map[int64]*entity.InventoryMovement
	outboxLen int
	nextID    int64
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		products:  make(map[int64]entity.Product, len(s.products)),
		movements: make(map[int64]*entity.InventoryMovement, len(s.movements)),
		outboxLen: len(s.outbox),
		nextID:    s.nextID,
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	for id, m := range s.movements {
		snap.movements[id] = m.Clone()
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range snap.products {
		cp := p
		s.products[id] = &cp
	}
	s.movements = snap.movements
	s.outbox = s.outbox[:snap.outboxLen]
	s.nextID = snap.nextID
}

func (s *memStore) productClone(id int64) *entity.Product {
	p, ok := s.products[id]
	if !ok || p.DeletedAt != nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *memStore) withRelations(m *entity.InventoryMovement) *entity.InventoryMovement {
	out := m.Clone()
	out.Product = s.productClone(m.ProductID)
	if m.CreatedByID != nil {
		if u, ok := s.users[*m.CreatedByID]; ok {
			cp := *u
			out.CreatedBy = &cp
		}
	}
	return out
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	outboxRepo repository.OutboxRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	if err := fn(memMovements{r.s}, memProducts{r.s}, memOutbox{r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// ── Products ──────────────────────────────────────────────────────────────────

type memProducts struct{ s *memStore }

var _ repository.ProductRepository = memProducts{}

func (r memProducts) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r memProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.productClone(id), nil
}

func (r memProducts) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r memProducts) AdjustStock(_ context.Context, id int64, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.products[id]
	if p == nil || p.DeletedAt != nil {
		return 0, domain.NewNotFoundError("Producto", id)
	}
	if p.QuantityInStock+delta < 0 {
		return 0, &domain.InsufficientStockError{ProductID: id, Available: p.QuantityInStock, Requested: -delta}
	}
	p.QuantityInStock += delta
	return p.QuantityInStock, nil
}

func (r memProducts) ListActiveIDs(context.Context) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int64
	for id, p := range r.s.products {
		if p.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ── Movements ─────────────────────────────────────────────────────────────────

type memMovements struct{ s *memStore }

var _ repository.InventoryMovementRepository = memMovements{}

func (r memMovements) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID
	r.s.nextID++
	now := r.s.tick()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	stored := m.Clone()
	stored.Product, stored.CreatedBy = nil, nil
	r.s.movements[m.ID] = stored
	return nil
}

func (r memMovements) GetByID(_ context.Context, id int64) (*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok || m.DeletedAt != nil {
		return nil, nil
	}
	return r.s.withRelations(m), nil
}

func (r memMovements) GetForUpdate(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	return r.GetByID(ctx, id)
}

func (r memMovements) Update(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.NewNotFoundError("Movimiento", m.ID)
	}
	stored := m.Clone()
	stored.Product, stored.CreatedBy = nil, nil
	r.s.movements[m.ID] = stored
	return nil
}

func (r memMovements) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok || m.DeletedAt != nil {
		return domain.NewNotFoundError("Movimiento", id)
	}
	m.DeletedAt = &at
	return nil
}

func (r memMovements) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.DeletedAt != nil {
			continue
		}
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.MovementType != nil && m.MovementType != *f.MovementType {
			continue
		}
		if f.StartDate != nil && m.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && m.CreatedAt.After(*f.EndDate) {
			continue
		}
		if f.MinQuantity != nil && m.Quantity < *f.MinQuantity {
			continue
		}
		if f.MaxQuantity != nil && m.Quantity > *f.MaxQuantity {
			continue
		}
		all = append(all, r.s.withRelations(m))
	}
	sortNewestFirst(all)
	total := int64(len(all))
	start := min(f.Offset, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], total, nil
}

func (r memMovements) ListByProduct(_ context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.DeletedAt == nil {
			out = append(out, r.s.withRelations(m))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r memMovements) LedgerBalance(_ context.Context, productID int64) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum, count := r.s.balanceLocked(productID)
	return sum, count, nil
}

func sortNewestFirst(list []*entity.InventoryMovement) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// ── Outbox / Warehouses ───────────────────────────────────────────────────────

type memOutbox struct{ s *memStore }

func (r memOutbox) Save(_ context.Context, e *entity.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.outboxErr != nil {
		return r.s.outboxErr
	}
	r.s.outbox = append(r.s.outbox, e)
	return nil
}

func (r memOutbox) FindUnpublished(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OutboxEvent
	for _, e := range r.s.outbox {
		if e.ShouldRetry() && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memOutbox) MarkPublished(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			now := time.Now()
			e.PublishedAt = &now
		}
	}
	return nil
}

func (r memOutbox) IncrementRetry(_ context.Context, id, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.outbox {
		if e.ID == id {
			e.RetryCount++
			e.LastError = lastError
		}
	}
	return nil
}

type memWarehouses struct{ s *memStore }

func (r memWarehouses) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// memLocker bloqueo en memoria con la misma semántica que el de Redis.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]bool{}} }

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrLockNotAcquired
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }
