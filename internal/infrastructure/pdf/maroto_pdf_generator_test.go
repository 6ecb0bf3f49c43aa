package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/pdf"
)

func TestGenerateStockCard_GeneraPDF(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	product := &entity.Product{ID: 1, SKU: "SKU-1", Name: "Tornillo", Price: decimal.RequireFromString("12500.50"), QuantityInStock: 15}
	card := inventory.BuildStockCard(product, []*entity.InventoryMovement{
		{ID: 1, MovementType: entity.MovementTypeEntrada, Quantity: 20, ReferenceType: entity.ReferenceTypeInitialStock, ReferenceID: "INV-0001", CreatedAt: at},
		{ID: 2, MovementType: entity.MovementTypeSalida, Quantity: 5, CreatedBy: &entity.User{Name: "Ana"}, CreatedAt: at.Add(time.Hour)},
	}, at.Add(2*time.Hour))

	doc, err := pdf.NewMarotoPDFGenerator().GenerateStockCard(context.Background(), card)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

// Caso: producto sin movimientos y con desviación; debe igualmente producir documento.
func TestGenerateStockCard_SinMovimientos(t *testing.T) {
	card := inventory.BuildStockCard(&entity.Product{ID: 2, SKU: "SKU-2", Name: "Tuerca", QuantityInStock: 3}, nil, time.Now())

	doc, err := pdf.NewMarotoPDFGenerator().GenerateStockCard(context.Background(), card)

	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestGenerateStockCard_SinProductoFalla(t *testing.T) {
	_, err := pdf.NewMarotoPDFGenerator().GenerateStockCard(context.Background(), &inventory.StockCard{})

	assert.Error(t, err)
}
