package inventory

import (
	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// ToMovementResponse convierte la entidad en la salida HTTP.
func ToMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	out := &dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedByID:   m.CreatedByID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if p := m.Product; p != nil {
		out.Product = &dto.ProductSummary{
			ID:              p.ID,
			SKU:             p.SKU,
			Name:            p.Name,
			Price:           p.Price,
			QuantityInStock: p.QuantityInStock,
			ReorderLevel:    p.ReorderLevel,
		}
	}
	if u := m.CreatedBy; u != nil {
		out.CreatedBy = &dto.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out
}

// ToMovementResponses convierte una lista de movimientos.
func ToMovementResponses(list []*entity.InventoryMovement) []*dto.MovementResponse {
	out := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToReconciliationResultDTO convierte el resultado de conciliar un producto.
func ToReconciliationResultDTO(r *ReconciliationResult) *dto.ReconciliationResultDTO {
	if r == nil {
		return nil
	}
	return &dto.ReconciliationResultDTO{
		ProductID:  r.ProductID,
		Cached:     r.Cached,
		Derived:    r.Derived,
		Action:     r.Action,
		StockAfter: r.StockAfter,
		Movement:   ToMovementResponse(r.Movement),
	}
}

// ToReconciliationReportDTO convierte el resumen de una conciliación por lotes.
func ToReconciliationReportDTO(r *ReconciliationReport) *dto.ReconciliationReportDTO {
	out := &dto.ReconciliationReportDTO{
		Checked:      r.Checked,
		Bootstrapped: r.Bootstrapped,
		Corrected:    r.Corrected,
		Failed:       r.Failed,
		DryRun:       r.DryRun,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Results:      make([]*dto.ReconciliationResultDTO, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, ToReconciliationResultDTO(res))
	}
	return out
}
