package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/domain/repository"
)

// Validator verifica las precondiciones de un movimiento antes de escribir.
// Solo lee: nunca modifica productos ni movimientos.
type Validator struct {
	validate   *validator.Validate
	products   repository.ProductRepository
	movements  repository.InventoryMovementRepository
	warehouses repository.WarehouseRepository
}

// NewValidator construye el validador. warehouses puede ser nil (no se verifica la bodega).
func NewValidator(
	products repository.ProductRepository,
	movements repository.InventoryMovementRepository,
	warehouses repository.WarehouseRepository,
) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v, products: products, movements: movements, warehouses: warehouses}
}

// Struct valida las etiquetas `validate` de un DTO y traduce el primer error a ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), fieldMessage(fe))
	}
	return domain.NewValidationError("", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q es requerido", fe.Field())
	case "gt":
		return fmt.Sprintf("%q debe ser mayor que %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%q no puede ser mayor que %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%q debe ser al menos %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q no puede superar %s caracteres", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%q no puede ser mayor que %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%q debe ser uno de [%s]", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("%q debe ser un email válido", fe.Field())
	default:
		return fmt.Sprintf("%q es inválido", fe.Field())
	}
}

// ValidateCreate valida un alta y devuelve el borrador del movimiento con su producto.
// La verificación de stock se repite dentro de la transacción con la fila bloqueada.
func (v *Validator) ValidateCreate(ctx context.Context, in dto.CreateMovementRequest) (*entity.InventoryMovement, error) {
	if err := v.Struct(in); err != nil {
		return nil, err
	}
	mt, err := entity.ParseMovementType(in.MovementType)
	if err != nil {
		return nil, domain.NewValidationError("movement_type", err.Error())
	}
	if err := v.checkWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	product, err := v.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Producto", in.ProductID)
	}
	m := &entity.InventoryMovement{
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		MovementType:  mt,
		Quantity:      in.Quantity,
		ReferenceType: strings.TrimSpace(in.ReferenceType),
		ReferenceID:   strings.TrimSpace(in.ReferenceID),
		Notes:         in.Notes,
	}
	if m.IsReconciliation() {
		return nil, domain.NewValidationError("reference_type", "reference_type RECONCILIATION está reservado")
	}
	if err := CheckCreate(product, m); err != nil {
		return nil, err
	}
	m.Product = product
	return m, nil
}

// ValidateUpdate valida una edición y devuelve el movimiento almacenado y el resultante.
func (v *Validator) ValidateUpdate(ctx context.Context, id int64, in dto.UpdateMovementRequest) (old, merged *entity.InventoryMovement, err error) {
	if err := v.Struct(in); err != nil {
		return nil, nil, err
	}
	old, err = v.movements.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if old == nil {
		return nil, nil, domain.NewNotFoundError("Movimiento", id)
	}
	merged, err = MergeUpdate(old, in)
	if err != nil {
		return nil, nil, err
	}
	if in.WarehouseID != nil {
		if err := v.checkWarehouse(ctx, in.WarehouseID); err != nil {
			return nil, nil, err
		}
	}
	oldProduct, newProduct, err := v.loadProducts(ctx, old.ProductID, merged.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if err := CheckUpdate(old, merged, oldProduct, newProduct); err != nil {
		return nil, nil, err
	}
	return old, merged, nil
}

// ValidateDelete valida un borrado y devuelve el movimiento a eliminar.
func (v *Validator) ValidateDelete(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	m, err := v.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewNotFoundError("Movimiento", id)
	}
	if m.IsReconciliation() {
		return nil, errReconciliationImmutable
	}
	product, err := v.products.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("Producto", m.ProductID)
	}
	if err := CheckDelete(m, product); err != nil {
		return nil, err
	}
	return m, nil
}

func (v *Validator) checkWarehouse(ctx context.Context, id *int64) error {
	if id == nil || v.warehouses == nil {
		return nil
	}
	w, err := v.warehouses.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.NewNotFoundError("Bodega", *id)
	}
	return nil
}

func (v *Validator) loadProducts(ctx context.Context, oldID, newID int64) (*entity.Product, *entity.Product, error) {
	oldProduct, err := v.products.GetByID(ctx, oldID)
	if err != nil {
		return nil, nil, err
	}
	if oldProduct == nil {
		return nil, nil, domain.NewNotFoundError("Producto", oldID)
	}
	if newID == oldID {
		return oldProduct, oldProduct, nil
	}
	newProduct, err := v.products.GetByID(ctx, newID)
	if err != nil {
		return nil, nil, err
	}
	if newProduct == nil {
		return nil, nil, domain.NewNotFoundError("Producto", newID)
	}
	return oldProduct, newProduct, nil
}

var errReconciliationImmutable = domain.NewValidationError("id", "los ajustes de conciliación no se pueden modificar ni eliminar")

// MergeUpdate aplica los campos presentes del request sobre una copia del movimiento.
func MergeUpdate(old *entity.InventoryMovement, in dto.UpdateMovementRequest) (*entity.InventoryMovement, error) {
	if old.IsReconciliation() {
		return nil, errReconciliationImmutable
	}
	m := old.Clone()
	m.Product = nil
	m.CreatedBy = nil
	if in.ProductID != nil {
		m.ProductID = *in.ProductID
	}
	if in.WarehouseID != nil {
		w := *in.WarehouseID
		m.WarehouseID = &w
	}
	if in.MovementType != nil {
		mt, err := entity.ParseMovementType(*in.MovementType)
		if err != nil {
			return nil, domain.NewValidationError("movement_type", err.Error())
		}
		m.MovementType = mt
	}
	if in.Quantity != nil {
		m.Quantity = *in.Quantity
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}
	if in.ReferenceType != nil {
		m.ReferenceType = strings.TrimSpace(*in.ReferenceType)
	}
	if in.ReferenceID != nil {
		m.ReferenceID = strings.TrimSpace(*in.ReferenceID)
	}
	if m.IsReconciliation() {
		return nil, domain.NewValidationError("reference_type", "reference_type RECONCILIATION está reservado")
	}
	return m, nil
}

// CheckCreate verifica que aplicar el movimiento no deje stock negativo.
func CheckCreate(p *entity.Product, m *entity.InventoryMovement) error {
	if p.QuantityInStock+m.SignedDelta() < 0 {
		return &domain.InsufficientStockError{ProductID: p.ID, Available: p.QuantityInStock, Requested: m.Quantity}
	}
	return checkCapacity(p.QuantityInStock + m.SignedDelta())
}

// MaxStock tope de quantity y quantity_in_stock (columnas INTEGER).
const MaxStock = math.MaxInt32

func checkCapacity(result int) error {
	if result > MaxStock {
		return domain.NewValidationError("quantity", fmt.Sprintf("el stock resultante no puede superar %d", MaxStock))
	}
	return nil
}

// CheckUpdate verifica el stock resultante de revertir old y aplicar merged.
// Con el mismo producto: stock - oldDelta + newDelta >= 0.
// Con cambio de producto: el producto anterior debe soportar la reversión y el nuevo la aplicación.
func CheckUpdate(old, merged *entity.InventoryMovement, oldProduct, newProduct *entity.Product) error {
	if old.ProductID == merged.ProductID {
		reverted := oldProduct.QuantityInStock - old.SignedDelta()
		if reverted+merged.SignedDelta() < 0 {
			return &domain.InsufficientStockError{ProductID: oldProduct.ID, Available: reverted, Requested: merged.Quantity}
		}
		return checkCapacity(reverted + merged.SignedDelta())
	}
	if oldProduct.QuantityInStock-old.SignedDelta() < 0 {
		return &domain.InsufficientStockError{ProductID: oldProduct.ID, Available: oldProduct.QuantityInStock, Requested: old.Quantity}
	}
	if newProduct.QuantityInStock+merged.SignedDelta() < 0 {
		return &domain.InsufficientStockError{ProductID: newProduct.ID, Available: newProduct.QuantityInStock, Requested: merged.Quantity}
	}
	if err := checkCapacity(oldProduct.QuantityInStock - old.SignedDelta()); err != nil {
		return err
	}
	return checkCapacity(newProduct.QuantityInStock + merged.SignedDelta())
}

// CheckDelete verifica que revertir el movimiento no deje stock negativo.
func CheckDelete(m *entity.InventoryMovement, p *entity.Product) error {
	if p.QuantityInStock-m.SignedDelta() < 0 {
		return &domain.InsufficientStockError{ProductID: p.ID, Available: p.QuantityInStock, Requested: m.Quantity}
	}
	return checkCapacity(p.QuantityInStock - m.SignedDelta())
}
