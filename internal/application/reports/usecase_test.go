package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/reports"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
)

type fakeRenderer struct {
	low       *reports.LowStockReport
	value     *reports.InventoryValueReport
	movements *reports.MovementReport
	sales     *reports.SalesReport
	err       error
}

func (f *fakeRenderer) MovementsPDF(_ context.Context, r *reports.MovementReport) ([]byte, error) {
	f.movements = r
	return []byte("%PDF-movements"), f.err
}

func (f *fakeRenderer) SalesPDF(_ context.Context, r *reports.SalesReport) ([]byte, error) {
	f.sales = r
	return []byte("%PDF-sales"), f.err
}

func (f *fakeRenderer) LowStockPDF(_ context.Context, r *reports.LowStockReport) ([]byte, error) {
	f.low = r
	return []byte("%PDF-low"), f.err
}

func (f *fakeRenderer) InventoryValuePDF(_ context.Context, r *reports.InventoryValueReport) ([]byte, error) {
	f.value = r
	return []byte("%PDF-value"), f.err
}

func seed(t *testing.T, store *memory.Store, sku string, qty, reorder int64, cost string, tracked bool) {
	t.Helper()
	require.NoError(t, store.Items().Create(context.Background(), &entity.InventoryItem{
		ID: "id-" + sku, SKU: sku, Name: sku, Category: entity.CategoryOther, Status: entity.ItemStatusActive,
		IsTracked: tracked, QuantityInStock: qty, ReorderPoint: reorder,
		CostPrice: decimal.RequireFromString(cost), UnitPrice: decimal.NewFromInt(99),
	}))
}

func TestInventoryValue_SumaSoloArticulosControlados(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 10, 2, "2.50", true)
	seed(t, store, "B", 3, 5, "0", true) // sin costo: usa el precio
	seed(t, store, "SRV", 0, 0, "0", false)
	r := &fakeRenderer{}
	uc := reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), r)

	doc, err := uc.InventoryValuePDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-value", string(doc))
	require.Len(t, r.value.Rows, 2)
	assert.Equal(t, int64(13), r.value.TotalUnits)
	assert.True(t, r.value.TotalValue.Equal(decimal.RequireFromString("322")), r.value.TotalValue.String()) // 25 + 297
}

func TestLowStock_IncluyeSugerido(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 10, 2, "1", true)
	seed(t, store, "B", 3, 5, "1", true)
	r := &fakeRenderer{}
	uc := reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), r)

	_, err := uc.LowStockPDF(context.Background())
	require.NoError(t, err)
	require.Len(t, r.low.Rows, 1)
	assert.Equal(t, "B", r.low.Rows[0].SKU)
	assert.Equal(t, int64(4), r.low.Rows[0].SuggestedQty) // 5 + 2 - 3
}

func TestRendererFallido(t *testing.T) {
	store := memory.NewStore()
	uc := reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), &fakeRenderer{err: errors.New("sin fuentes")})
	_, err := uc.LowStockPDF(context.Background())
	assert.Error(t, err)
}

var enero = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestParsePeriod(t *testing.T) {
	p, err := reports.ParsePeriod("2026-01-01", "2026-01-31", enero)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), p.To)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), p.LastDay())

	// por defecto: los 30 días que terminan hoy
	p, err = reports.ParsePeriod("", "", enero)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 17, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), p.To)

	for _, c := range [][2]string{{"ayer", ""}, {"", "2026-02-30"}, {"2026-02-01", "2026-01-01"}, {"2024-01-01", "2026-01-01"}} {
		_, err := reports.ParsePeriod(c[0], c[1], enero)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "%v", c)
	}
}

func entry(t *testing.T, store *memory.Store, id, itemID, changeType string, delta, prev int64, at time.Time) {
	t.Helper()
	require.NoError(t, store.Ledger().Create(context.Background(), &entity.LedgerEntry{
		ID: id, ItemID: itemID, UserID: "u-1", ChangeType: changeType, QuantityChange: delta,
		PreviousQuantity: prev, NewQuantity: prev + delta, Reason: "x", CreatedAt: at,
	}))
}

func TestMovements_LeeElLedgerDelPeriodo(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 7, 0, "1", true)
	entry(t, store, "e1", "id-A", entity.ChangeTypeIn, 10, 0, enero.AddDate(0, -1, 0)) // fuera del rango
	entry(t, store, "e2", "id-A", entity.ChangeTypeSale, -2, 10, enero)
	entry(t, store, "e3", "id-A", entity.ChangeTypeOut, -1, 8, enero.Add(time.Hour))
	entry(t, store, "e4", "id-A", entity.ChangeTypeReturn, 1, 7, enero.Add(2*time.Hour))
	r := &fakeRenderer{}
	uc := reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), r)

	p, err := reports.ParsePeriod("2026-01-01", "2026-01-31", enero)
	require.NoError(t, err)
	doc, err := uc.MovementsPDF(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-movements", string(doc))

	rep := r.movements
	require.Len(t, rep.Rows, 3)
	assert.Equal(t, "A", rep.Rows[0].SKU)
	assert.Equal(t, int64(-2), rep.Rows[0].QuantityChange)
	assert.Equal(t, int64(1), rep.UnitsIn)
	assert.Equal(t, int64(3), rep.UnitsOut)
	assert.Equal(t, []string{"out", "return", "sale"}, rep.ChangeTypes())
	assert.False(t, rep.Truncated)
}

func salesOrder(t *testing.T, store *memory.Store, id, status string, at time.Time, lines ...entity.OrderItem) {
	t.Helper()
	o := &entity.Order{
		ID: id, OrderNumber: "SO-" + id, OrderType: entity.OrderTypeSales, Status: status,
		TaxAmount: decimal.Zero, DiscountAmount: decimal.Zero, ShippingCost: decimal.Zero,
		CreatedAt: at, UpdatedAt: at,
	}
	for i := range lines {
		lines[i].OrderID = id
		lines[i].ID = id + "-" + lines[i].ItemID
	}
	o.Items = lines
	o.RecalculateTotals()
	require.NoError(t, store.Orders().Create(context.Background(), o))
}

func line(itemID string, qty int64, price int64) entity.OrderItem {
	return entity.OrderItem{ItemID: itemID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func TestSales_AgregaPedidosNoCancelados(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 10, 0, "1", true)
	seed(t, store, "B", 10, 0, "1", true)
	salesOrder(t, store, "1", entity.OrderStatusShipped, enero, line("id-A", 2, 100), line("id-B", 1, 50))
	salesOrder(t, store, "2", entity.OrderStatusConfirmed, enero.Add(time.Hour), line("id-B", 4, 50))
	salesOrder(t, store, "3", entity.OrderStatusCancelled, enero, line("id-A", 9, 100))
	salesOrder(t, store, "4", entity.OrderStatusShipped, enero.AddDate(0, 2, 0), line("id-A", 9, 100))
	r := &fakeRenderer{}
	uc := reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), r)

	p, err := reports.ParsePeriod("2026-01-01", "2026-01-31", enero)
	require.NoError(t, err)
	_, err = uc.SalesPDF(context.Background(), p)
	require.NoError(t, err)

	rep := r.sales
	assert.Equal(t, int64(2), rep.OrderCount)
	assert.Equal(t, int64(7), rep.UnitsSold)
	assert.True(t, rep.Revenue.Equal(decimal.NewFromInt(450)), rep.Revenue.String())
	assert.Equal(t, "225", rep.AverageTicket.String())
	assert.Equal(t, int64(1), rep.ByStatus[entity.OrderStatusShipped])
	require.Len(t, rep.TopItems, 2)
	assert.Equal(t, "B", rep.TopItems[0].SKU) // 250 > 200
	assert.Equal(t, int64(5), rep.TopItems[0].Quantity)
	assert.Equal(t, "A", rep.TopItems[1].SKU)
}
