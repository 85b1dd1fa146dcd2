// Package pdf genera los reportes de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte  │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas del reporte (una fila por artículo)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES (valorización) / conteo de artículos               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/reports"
)

var _ reports.Renderer = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorHeader  = &props.Color{Red: 220, Green: 230, Blue: 241}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa reports.Renderer usando Maroto v2.
type MarotoReportGenerator struct {
	company string
}

// NewMarotoReportGenerator construye el generador; company aparece como autor del documento.
func NewMarotoReportGenerator(company string) *MarotoReportGenerator {
	return &MarotoReportGenerator{company: company}
}

// column describe una columna de tabla (ancho en la grilla de 12).
type column struct {
	label string
	size  int
	align align.Type
}

func (g *MarotoReportGenerator) newDoc(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.company, true).
		Build()
	return maroto.New(cfg)
}

// LowStockPDF reporte de artículos en o por debajo del punto de reorden.
func (g *MarotoReportGenerator) LowStockPDF(_ context.Context, r *reports.LowStockReport) ([]byte, error) {
	m := g.newDoc("Reporte de stock bajo")
	m.AddRows(headerRow("REPORTE DE STOCK BAJO", g.company, r.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	cols := []column{
		{"SKU", 2, align.Left},
		{"Artículo", 4, align.Left},
		{"Cantidad", 2, align.Right},
		{"Reorden", 2, align.Right},
		{"Sugerido", 2, align.Right},
	}
	m.AddRows(tableHeaderRow(cols))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay artículos en stock bajo."))
	}
	for _, it := range r.Rows {
		qtyColor := colorGray
		if it.Quantity <= 0 {
			qtyColor = colorAlert
		}
		m.AddRows(row.New(7).Add(
			cell(it.SKU, cols[0], nil),
			cell(it.Name, cols[1], nil),
			cell(strconv.FormatInt(it.Quantity, 10), cols[2], qtyColor),
			cell(strconv.FormatInt(it.ReorderPoint, 10), cols[3], nil),
			cell(strconv.FormatInt(it.SuggestedQty, 10), cols[4], nil),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(fmt.Sprintf("Artículos: %d", len(r.Rows))))

	return generate(m)
}

// InventoryValuePDF valorización del stock al costo promedio.
func (g *MarotoReportGenerator) InventoryValuePDF(_ context.Context, r *reports.InventoryValueReport) ([]byte, error) {
	m := g.newDoc("Valorización de inventario")
	m.AddRows(headerRow("VALORIZACIÓN DE INVENTARIO", g.company, r.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	cols := []column{
		{"SKU", 2, align.Left},
		{"Artículo", 4, align.Left},
		{"Cant.", 1, align.Right},
		{"Costo unit.", 2, align.Right},
		{"Valor", 3, align.Right},
	}
	m.AddRows(tableHeaderRow(cols))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay artículos con control de stock."))
	}
	for _, it := range r.Rows {
		m.AddRows(row.New(7).Add(
			cell(it.SKU, cols[0], nil),
			cell(it.Name, cols[1], nil),
			cell(strconv.FormatInt(it.Quantity, 10), cols[2], nil),
			cell("$"+FormatMoney(it.UnitCost), cols[3], nil),
			cell("$"+FormatMoney(it.Value), cols[4], nil),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(r.TotalUnits, r.TotalValue))

	return generate(m)
}

// MovementsPDF asientos del ledger en el período, con totales de entradas y salidas.
func (g *MarotoReportGenerator) MovementsPDF(_ context.Context, r *reports.MovementReport) ([]byte, error) {
	m := g.newDoc("Movimientos de stock")
	m.AddRows(headerRow("MOVIMIENTOS DE STOCK", g.company, r.GeneratedAt))
	m.AddRows(periodRow(r.Period))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	cols := []column{
		{"Fecha", 2, align.Left},
		{"SKU", 2, align.Left},
		{"Artículo", 3, align.Left},
		{"Tipo", 1, align.Left},
		{"Cambio", 1, align.Right},
		{"Saldo", 1, align.Right},
		{"Referencia", 2, align.Left},
	}
	m.AddRows(tableHeaderRow(cols))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay movimientos en el período."))
	}
	for _, mv := range r.Rows {
		changeColor := colorGray
		if mv.QuantityChange < 0 {
			changeColor = colorAlert
		}
		ref := mv.ReferenceNumber
		if ref == "" {
			ref = mv.Reason
		}
		m.AddRows(row.New(7).Add(
			cell(mv.At.Format("02/01/2006 15:04"), cols[0], nil),
			cell(mv.SKU, cols[1], nil),
			cell(mv.Name, cols[2], nil),
			cell(mv.ChangeType, cols[3], nil),
			cell(fmt.Sprintf("%+d", mv.QuantityChange), cols[4], changeColor),
			cell(strconv.FormatInt(mv.NewQuantity, 10), cols[5], nil),
			cell(ref, cols[6], nil),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, ct := range r.ChangeTypes() {
		m.AddRows(summaryRow(fmt.Sprintf("%s: %d asientos", ct, r.ByChangeType[ct])))
	}
	m.AddRows(summaryRow(fmt.Sprintf("Entradas: %d u  ·  Salidas: %d u", r.UnitsIn, r.UnitsOut)))
	if r.Truncated {
		m.AddRows(summaryRow(fmt.Sprintf("Se muestran los primeros %d movimientos.", len(r.Rows))))
	}

	return generate(m)
}

// SalesPDF resumen de ventas del período y los artículos con más ingresos.
func (g *MarotoReportGenerator) SalesPDF(_ context.Context, r *reports.SalesReport) ([]byte, error) {
	m := g.newDoc("Reporte de ventas")
	m.AddRows(headerRow("REPORTE DE VENTAS", g.company, r.GeneratedAt))
	m.AddRows(periodRow(r.Period))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(summaryRow(fmt.Sprintf("Pedidos: %d", r.OrderCount)))
	m.AddRows(summaryRow(fmt.Sprintf("Unidades vendidas: %d", r.UnitsSold)))
	m.AddRows(summaryRow("Ingresos: $" + FormatMoney(r.Revenue)))
	m.AddRows(summaryRow("Ticket promedio: $" + FormatMoney(r.AverageTicket)))

	cols := []column{
		{"SKU", 3, align.Left},
		{"Artículo", 5, align.Left},
		{"Unidades", 2, align.Right},
		{"Ingresos", 2, align.Right},
	}
	m.AddRows(tableHeaderRow(cols))
	if len(r.TopItems) == 0 {
		m.AddRows(emptyRow("No hay ventas en el período."))
	}
	for _, it := range r.TopItems {
		m.AddRows(row.New(7).Add(
			cell(it.SKU, cols[0], nil),
			cell(it.Name, cols[1], nil),
			cell(strconv.FormatInt(it.Quantity, 10), cols[2], nil),
			cell("$"+FormatMoney(it.Revenue), cols[3], nil),
		))
	}

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title, company string, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(company, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func periodRow(p reports.Period) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Período: %s al %s", p.From.Format("02/01/2006"), p.LastDay().Format("02/01/2006")),
			props.Text{Size: 9, Color: colorGray, Top: 1}),
	))
}

func tableHeaderRow(cols []column) core.Row {
	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return r.WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

func cell(value string, c column, color *props.Color) core.Col {
	return col.New(c.size).Add(text.New(value, props.Text{
		Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1, Color: color,
	}))
}

func emptyRow(msg string) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 9, Align: align.Center, Color: colorGray, Top: 3}),
	))
}

func summaryRow(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1}),
	))
}

func totalsRow(units int64, value decimal.Decimal) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Unidades:"), label("VALOR TOTAL:")),
		col.New(3).Add(grand(strconv.FormatInt(units, 10)), grand("$"+FormatMoney(value))),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// FormatMoney formatea con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", 1234567.5 → "1.234.567,50"
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	return string(append(buf, frac...))
}
