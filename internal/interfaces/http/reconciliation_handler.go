package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
)

// ReconciliationService puerto de la conciliación de stock.
type ReconciliationService interface {
	ReconcileProduct(ctx context.Context, productID int64, dryRun bool) (*inventory.ReconciliationResult, error)
	ReconcileAll(ctx context.Context, dryRun bool) (*inventory.ReconciliationReport, error)
}

// ReconciliationHandler endpoint administrativo de conciliación (rol admin).
type ReconciliationHandler struct {
	svc ReconciliationService
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(svc ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

// Reconcile godoc
// @Summary      Conciliar stock contra movimientos
// @Description  Con product_id concilia un producto; sin él, todos. dry_run calcula sin escribir.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReconcileRequest  false  "product_id opcional, dry_run"
// @Success      200   {object}  dto.ReconciliationReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconciliation [post]
func (h *ReconciliationHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "cuerpo inválido")
		}
	}
	if in.ProductID != nil {
		if *in.ProductID <= 0 {
			return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "product_id debe ser un entero positivo")
		}
		res, err := h.svc.ReconcileProduct(c.UserContext(), *in.ProductID, in.DryRun)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "data": inventory.ToReconciliationResultDTO(res)})
	}
	report, err := h.svc.ReconcileAll(c.UserContext(), in.DryRun)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": inventory.ToReconciliationReportDTO(report)})
}
