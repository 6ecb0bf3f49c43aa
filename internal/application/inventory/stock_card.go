package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

// StockCardLine fila del kardex: un movimiento con el saldo acumulado tras aplicarlo.
// Los ajustes de conciliación se muestran pero no alteran el saldo (AffectsBalance=false).
type StockCardLine struct {
	Movement       *entity.InventoryMovement
	In             int
	Out            int
	Balance        int
	AffectsBalance bool
}

// StockCard kardex de un producto en orden cronológico.
type StockCard struct {
	Product     *entity.Product
	Lines       []StockCardLine
	TotalIn     int
	TotalOut    int
	Balance     int
	GeneratedAt time.Time
}

// Matches indica si el saldo de los movimientos coincide con el stock registrado.
func (c *StockCard) Matches() bool {
	return c.Product != nil && c.Balance == c.Product.QuantityInStock
}

// StockCardGenerator renderiza el kardex en un documento (PDF).
type StockCardGenerator interface {
	GenerateStockCard(ctx context.Context, card *StockCard) ([]byte, error)
}

// BuildStockCard ordena los movimientos del más antiguo al más reciente y calcula el saldo corrido.
func BuildStockCard(product *entity.Product, movements []*entity.InventoryMovement, at time.Time) *StockCard {
	sorted := make([]*entity.InventoryMovement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	card := &StockCard{Product: product, Lines: make([]StockCardLine, 0, len(sorted)), GeneratedAt: at}
	for _, m := range sorted {
		line := StockCardLine{Movement: m, AffectsBalance: !m.IsReconciliation()}
		switch m.MovementType {
		case entity.MovementTypeEntrada:
			line.In = m.Quantity
		case entity.MovementTypeSalida:
			line.Out = m.Quantity
		}
		if line.AffectsBalance {
			card.Balance += m.SignedDelta()
			card.TotalIn += line.In
			card.TotalOut += line.Out
		}
		line.Balance = card.Balance
		card.Lines = append(card.Lines, line)
	}
	return card
}

// StockCardUseCase genera el kardex (PDF) de un producto a partir de su historial.
type StockCardUseCase struct {
	ledger    *MovementUseCase
	generator StockCardGenerator
	now       func() time.Time
}

// NewStockCardUseCase construye el caso de uso.
func NewStockCardUseCase(ledger *MovementUseCase, generator StockCardGenerator) *StockCardUseCase {
	return &StockCardUseCase{ledger: ledger, generator: generator, now: time.Now}
}

// Download devuelve el PDF y el nombre de archivo sugerido.
// domain.ErrNotFound si el producto no existe.
func (uc *StockCardUseCase) Download(ctx context.Context, productID int64) ([]byte, string, error) {
	product, movements, err := uc.ledger.ProductHistory(ctx, productID)
	if err != nil {
		return nil, "", err
	}
	card := BuildStockCard(product, movements, uc.now())
	doc, err := uc.generator.GenerateStockCard(ctx, card)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: generación fallida: %w", err)
	}
	return doc, fmt.Sprintf("kardex_%s.pdf", product.SKU), nil
}
