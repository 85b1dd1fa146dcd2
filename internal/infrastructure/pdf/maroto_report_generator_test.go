package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/reports"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/pdf"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0,00",
		"25000":     "25.000,00",
		"1234567.5": "1.234.567,50",
		"-1500.256": "-1.500,26",
		"999.999":   "1.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestLowStockPDF(t *testing.T) {
	g := pdf.NewMarotoReportGenerator("Bodega Central")
	doc, err := g.LowStockPDF(context.Background(), &reports.LowStockReport{
		GeneratedAt: time.Now(),
		Rows: []reports.LowStockRow{
			{SKU: "TOR-01", Name: "Tornillo", Quantity: 0, ReorderPoint: 10, SuggestedQty: 15},
			{SKU: "MTR-01", Name: "Martillo", Quantity: 2, ReorderPoint: 3, SuggestedQty: 2},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestInventoryValuePDF_Vacio(t *testing.T) {
	g := pdf.NewMarotoReportGenerator("Bodega Central")
	doc, err := g.InventoryValuePDF(context.Background(), &reports.InventoryValueReport{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestMovementsPDF(t *testing.T) {
	g := pdf.NewMarotoReportGenerator("Bodega Central")
	p, err := reports.ParsePeriod("2026-01-01", "2026-01-31", time.Now())
	require.NoError(t, err)
	doc, err := g.MovementsPDF(context.Background(), &reports.MovementReport{
		GeneratedAt: time.Now(),
		Period:      p,
		Rows: []reports.MovementRow{
			{At: time.Now(), SKU: "TOR-01", Name: "Tornillo", ChangeType: "in", QuantityChange: 10, NewQuantity: 10, Reason: "stock inicial"},
			{At: time.Now(), SKU: "TOR-01", Name: "Tornillo", ChangeType: "sale", QuantityChange: -3, NewQuantity: 7, ReferenceNumber: "SO-1"},
		},
		UnitsIn:      10,
		UnitsOut:     3,
		ByChangeType: map[string]int64{"in": 1, "sale": 1},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestSalesPDF(t *testing.T) {
	g := pdf.NewMarotoReportGenerator("Bodega Central")
	doc, err := g.SalesPDF(context.Background(), &reports.SalesReport{
		GeneratedAt:   time.Now(),
		OrderCount:    2,
		Revenue:       decimal.NewFromInt(150000),
		UnitsSold:     5,
		AverageTicket: decimal.NewFromInt(75000),
		TopItems:      []reports.TopItemRow{{SKU: "MTR-01", Name: "Martillo", Quantity: 5, Revenue: decimal.NewFromInt(150000)}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
