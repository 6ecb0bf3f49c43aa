// Package pdf genera el kardex (tarjeta de existencias) de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU + Nombre        │  KARDEX + Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Ref. | Entrada | Salida | Saldo      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Entradas / Salidas / Saldo / Stock registrado      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain/entity"
)

var _ inventory.StockCardGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.StockCardGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador con formato numérico en español.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateStockCard genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStockCard(_ context.Context, card *inventory.StockCard) ([]byte, error) {
	if card == nil || card.Product == nil {
		return nil, fmt.Errorf("pdf: kardex sin producto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+card.Product.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(card))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(card.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("El producto no tiene movimientos registrados.", props.Text{
				Size: 8, Align: align.Center, Top: 2, Color: colorGray,
			}),
		)))
	}
	m.AddRows(g.tableDetailRows(card.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRows(card)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(card *inventory.StockCard) core.Row {
	p := card.Product
	return row.New(18).Add(
		col.New(7).Add(
			text.New(p.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+p.SKU, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(g.printer.Sprintf("Precio: $%.2f", p.Price.InexactFloat64()), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+card.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Referencia", 3, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Usuario", 2, align.Left),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoPDFGenerator) tableDetailRows(lines []inventory.StockCardLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		m := l.Movement
		style := props.Text{Size: 8, Top: 1, Left: 1}
		if !l.AffectsBalance {
			style.Color = colorGray
		}
		right := style
		right.Align = align.Right
		right.Right = 1

		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(m.CreatedAt.Format("02/01/2006"), style)),
			col.New(2).Add(text.New(movementLabel(l), style)),
			col.New(3).Add(text.New(reference(m), style)),
			col.New(1).Add(text.New(g.quantity(l.In), right)),
			col.New(1).Add(text.New(g.quantity(l.Out), right)),
			col.New(1).Add(text.New(g.printer.Sprintf("%d", l.Balance), right)),
			col.New(2).Add(text.New(creator(m), style)),
		))
	}
	return result
}

func (g *MarotoPDFGenerator) totalsRows(card *inventory.StockCard) []core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(n int) core.Component {
		return text.New(g.printer.Sprintf("%d", n), props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	rows := []core.Row{
		row.New(5).Add(col.New(6), col.New(4).Add(label("Total entradas:")), col.New(2).Add(value(card.TotalIn))),
		row.New(5).Add(col.New(6), col.New(4).Add(label("Total salidas:")), col.New(2).Add(value(card.TotalOut))),
		row.New(5).Add(col.New(6), col.New(4).Add(label("Saldo según movimientos:")), col.New(2).Add(value(card.Balance))),
		row.New(5).Add(col.New(6), col.New(4).Add(label("Stock registrado:")), col.New(2).Add(value(card.Product.QuantityInStock))),
	}
	if !card.Matches() {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("El stock registrado no coincide con los movimientos. Ejecute la conciliación.", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorAlert, Top: 2,
			}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) quantity(n int) string {
	if n == 0 {
		return ""
	}
	return g.printer.Sprintf("%d", n)
}

func movementLabel(l inventory.StockCardLine) string {
	switch {
	case !l.AffectsBalance:
		return "Ajuste conciliación"
	case l.Movement.ReferenceType == entity.ReferenceTypeInitialStock:
		return "Inventario inicial"
	case l.Movement.MovementType == entity.MovementTypeEntrada:
		return "Entrada"
	default:
		return "Salida"
	}
}

func reference(m *entity.InventoryMovement) string {
	switch {
	case m.ReferenceType != "" && m.ReferenceID != "":
		return m.ReferenceType + " " + m.ReferenceID
	case m.ReferenceID != "":
		return m.ReferenceID
	case m.ReferenceType != "":
		return m.ReferenceType
	}
	return "—"
}

func creator(m *entity.InventoryMovement) string {
	if m.CreatedBy != nil && m.CreatedBy.Name != "" {
		return m.CreatedBy.Name
	}
	return "—"
}
