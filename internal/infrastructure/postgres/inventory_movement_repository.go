package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

var movementColumns = []string{
	"m.id", "m.product_id", "m.warehouse_id", "m.movement_type", "m.quantity",
	"m.reference_type", "m.reference_id", "m.notes", "m.created_by",
	"m.created_at", "m.updated_at", "m.deleted_at",
}

var relationColumns = []string{
	"p.id", "p.sku", "p.name", "p.price", "p.quantity_in_stock", "p.reorder_level",
	"u.id", "u.name", "u.email",
}

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// selectWithRelations movimientos vivos con su producto y creador.
func selectWithRelations() squirrel.SelectBuilder {
	return squirrel.Select(append(append([]string{}, movementColumns...), relationColumns...)...).
		From("inventory_movements m").
		Join("products p ON p.id = m.product_id").
		LeftJoin("users u ON u.id = m.created_by").
		Where("m.deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar)
}

// Create persiste un movimiento y completa ID y fechas. Si CreatedAt viene informado se respeta
// (movimiento de inventario inicial fechado con el alta del producto).
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	var createdAt *time.Time
	if !m.CreatedAt.IsZero() {
		createdAt = &m.CreatedAt
	}
	query := `
		INSERT INTO inventory_movements
			(product_id, warehouse_id, movement_type, quantity, reference_type, reference_id, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, m.WarehouseID, string(m.MovementType), m.Quantity,
		m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedByID, createdAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return movementWriteError("create inventory movement", m, err)
	}
	return nil
}

// GetByID obtiene un movimiento no eliminado con su producto y creador.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	sql, args, err := selectWithRelations().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	m, err := scanMovementWithRelations(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetForUpdate bloquea la fila del movimiento. No carga relaciones.
func (r *InventoryMovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	sql, args, err := squirrel.Select(movementColumns...).
		From("inventory_movements m").
		Where(squirrel.Eq{"m.id": id}).
		Where("m.deleted_at IS NULL").
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	m, err := scanMovement(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock movement: %w", err)
	}
	return m, nil
}

// Update reescribe los campos editables de un movimiento vivo.
func (r *InventoryMovementRepo) Update(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		UPDATE inventory_movements
		SET product_id = $2, warehouse_id = $3, movement_type = $4, quantity = $5,
			reference_type = $6, reference_id = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.WarehouseID, string(m.MovementType), m.Quantity,
		m.ReferenceType, m.ReferenceID, m.Notes, m.UpdatedAt,
	)
	if err != nil {
		return movementWriteError("update inventory movement", m, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("Movimiento", m.ID)
	}
	return nil
}

// SoftDelete marca el movimiento como eliminado.
func (r *InventoryMovementRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_movements SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("soft delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("Movimiento", id)
	}
	return nil
}

// List devuelve una página de movimientos filtrados y el total sin paginar.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int64, error) {
	countSQL, countArgs, err := applyMovementFilter(
		squirrel.Select("COUNT(*)").From("inventory_movements m").Where("m.deleted_at IS NULL").PlaceholderFormat(squirrel.Dollar),
		f,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	qb := applyMovementFilter(selectWithRelations(), f).OrderBy("m.created_at DESC", "m.id DESC")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	list, err := r.queryWithRelations(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByProduct lista los movimientos vivos de un producto, los más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	sql, args, err := selectWithRelations().
		Where(squirrel.Eq{"m.product_id": productID}).
		OrderBy("m.created_at DESC", "m.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	return r.queryWithRelations(ctx, sql, args...)
}

// LedgerBalance saldo firmado del producto sin los ajustes de conciliación.
func (r *InventoryMovementRepo) LedgerBalance(ctx context.Context, productID int64) (int, int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN movement_type = 'entrada' THEN quantity ELSE -quantity END), 0), COUNT(*)
		FROM inventory_movements
		WHERE product_id = $1 AND deleted_at IS NULL AND reference_type <> $2`
	var balance, count int
	if err := r.q.QueryRow(ctx, query, productID, entity.ReferenceTypeReconciliation).Scan(&balance, &count); err != nil {
		return 0, 0, fmt.Errorf("ledger balance: %w", err)
	}
	return balance, count, nil
}

func applyMovementFilter(qb squirrel.SelectBuilder, f repository.MovementFilter) squirrel.SelectBuilder {
	if f.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"m.product_id": *f.ProductID})
	}
	if f.MovementType != nil {
		qb = qb.Where(squirrel.Eq{"m.movement_type": string(*f.MovementType)})
	}
	if f.StartDate != nil {
		qb = qb.Where(squirrel.GtOrEq{"m.created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		qb = qb.Where(squirrel.LtOrEq{"m.created_at": *f.EndDate})
	}
	if f.MinQuantity != nil {
		qb = qb.Where(squirrel.GtOrEq{"m.quantity": *f.MinQuantity})
	}
	if f.MaxQuantity != nil {
		qb = qb.Where(squirrel.LtOrEq{"m.quantity": *f.MaxQuantity})
	}
	return qb
}

func (r *InventoryMovementRepo) queryWithRelations(ctx context.Context, sql string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryMovement, 0)
	for rows.Next() {
		m, err := scanMovementWithRelations(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func movementDest(m *entity.InventoryMovement) []any {
	return []any{
		&m.ID, &m.ProductID, &m.WarehouseID, &m.MovementType, &m.Quantity,
		&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedByID,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
	}
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	if err := row.Scan(movementDest(&m)...); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMovementWithRelations(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m         entity.InventoryMovement
		p         entity.Product
		userID    *int64
		userName  *string
		userEmail *string
	)
	dest := append(movementDest(&m),
		&p.ID, &p.SKU, &p.Name, &p.Price, &p.QuantityInStock, &p.ReorderLevel,
		&userID, &userName, &userEmail,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Product = &p
	if userID != nil {
		u := &entity.User{ID: *userID}
		if userName != nil {
			u.Name = *userName
		}
		if userEmail != nil {
			u.Email = *userEmail
		}
		m.CreatedBy = u
	}
	return &m, nil
}

// movementWriteError traduce violaciones de constraints a errores de dominio.
func movementWriteError(op string, m *entity.InventoryMovement, err error) error {
	switch {
	case isForeignKeyViolation(err):
		switch constraintName(err) {
		case "inventory_movements_warehouse_id_fkey":
			if m.WarehouseID != nil {
				return domain.NewNotFoundError("Bodega", *m.WarehouseID)
			}
		case "inventory_movements_created_by_fkey":
			return domain.NewValidationError("created_by", "el usuario creador no existe")
		}
		return domain.NewNotFoundError("Producto", m.ProductID)
	case isCheckViolation(err):
		return domain.NewValidationError(constraintName(err), "movimiento inválido")
	case isOutOfRange(err):
		return domain.NewValidationError("quantity", "la cantidad supera el máximo permitido")
	}
	return fmt.Errorf("%s: %w", op, err)
}
