package orders_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/orders"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

var manager = entity.Actor{UserID: "u-manager", Role: entity.RoleManager}

type fixture struct {
	store    *memory.Store
	queue    *memory.Queue
	mutator  *inventory.StockMutator
	uc       *orders.OrderUseCase
	supplier *entity.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	queue := memory.NewQueue()
	tx := memory.NewTxRunner(store)
	dispatcher := notification.NewDispatcher(queue, 100*time.Millisecond, logger.Nop())
	evaluator := inventory.NewLowStockEvaluator(store.Items(), dispatcher)
	mutator := inventory.NewStockMutator(tx, inventory.NewLedgerWriter(), evaluator)
	machine := orders.NewStatusMachine(tx, mutator, evaluator, dispatcher)

	sp := &entity.Supplier{ID: uuid.New().String(), Name: "Ferretería Central", IsActive: true}
	require.NoError(t, store.Suppliers().Create(context.Background(), sp))

	return &fixture{
		store:    store,
		queue:    queue,
		mutator:  mutator,
		uc:       orders.NewOrderUseCase(tx, store.Orders(), machine, dispatcher),
		supplier: sp,
	}
}

func (f *fixture) seedItem(t *testing.T, sku string, qty, reorder int64, tracked bool) *entity.InventoryItem {
	t.Helper()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         "Artículo " + sku,
		Status:       entity.ItemStatusActive,
		IsTracked:    true,
		ReorderPoint: reorder,
		UnitPrice:    decimal.NewFromInt(25),
		CostPrice:    decimal.NewFromInt(10),
		SupplierID:   f.supplier.ID,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), item))
	if qty > 0 {
		_, err := f.mutator.Adjust(context.Background(), inventory.AdjustInput{
			ItemID: item.ID, Delta: qty, ChangeType: entity.ChangeTypeIn, Reason: "stock inicial", Actor: manager,
		})
		require.NoError(t, err)
	}
	if !tracked {
		item.IsTracked = false
		require.NoError(t, f.store.Items().Update(context.Background(), item))
	}
	return item
}

func (f *fixture) qty(t *testing.T, id string) int64 {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return it.QuantityInStock
}

func (f *fixture) salesOrder(t *testing.T, lines ...dto.OrderLineRequest) *dto.OrderResponse {
	t.Helper()
	o, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{
		OrderType: entity.OrderTypeSales, CustomerName: "Cliente Uno", CustomerEmail: "c1@example.com", Items: lines,
	}, manager)
	require.NoError(t, err)
	return o
}

func (f *fixture) advance(t *testing.T, id string, statuses ...string) *dto.OrderResponse {
	t.Helper()
	var out *dto.OrderResponse
	for _, s := range statuses {
		var err error
		out, err = f.uc.UpdateStatus(context.Background(), id, s, manager)
		require.NoError(t, err, "transición a %s", s)
	}
	return out
}

func TestCreate_CompraCalculaTotalesYNotifica(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 0, 0, true)
	b := f.seedItem(t, "B", 0, 0, true)
	price := decimal.NewFromInt(7)

	o, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{
		OrderType:    entity.OrderTypePurchase,
		SupplierID:   f.supplier.ID,
		ShippingCost: decimal.NewFromInt(5),
		Items: []dto.OrderLineRequest{
			{ItemID: a.ID, Quantity: 3, UnitPrice: &price},
			{ItemID: b.ID, Quantity: 2}, // usa el costo del artículo (10)
		},
	}, manager)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.OrderNumber, "PO-"), o.OrderNumber)
	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(41)), "subtotal %s", o.Subtotal)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(46)), "total %s", o.TotalAmount)
	assert.ElementsMatch(t, []string{entity.OrderStatusPending, entity.OrderStatusCancelled}, o.NextStatuses)
	assert.Equal(t, 1, f.queue.Count(notification.TaskOrderNotification))
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 5, 0, true)
	inactive := &entity.Supplier{ID: uuid.New().String(), Name: "Inactivo", IsActive: false}
	require.NoError(t, f.store.Suppliers().Create(context.Background(), inactive))

	cases := map[string]dto.CreateOrderRequest{
		"tipo desconocido":    {OrderType: "rental", Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}}},
		"compra sin proveedor": {OrderType: entity.OrderTypePurchase, Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}}},
		"proveedor inactivo":  {OrderType: entity.OrderTypePurchase, SupplierID: inactive.ID, Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}}},
		"venta sin cliente":   {OrderType: entity.OrderTypeSales, Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}}},
		"sin líneas":          {OrderType: entity.OrderTypeSales, CustomerName: "X"},
		"cantidad cero":       {OrderType: entity.OrderTypeSales, CustomerName: "X", Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 0}}},
		"artículo inexistente": {OrderType: entity.OrderTypeSales, CustomerName: "X", Items: []dto.OrderLineRequest{{ItemID: "nope", Quantity: 1}}},
		"línea repetida":      {OrderType: entity.OrderTypeSales, CustomerName: "X", Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}, {ItemID: a.ID, Quantity: 2}}},
		"estado inicial raro": {OrderType: entity.OrderTypeSales, CustomerName: "X", Status: entity.OrderStatusConfirmed, Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 1}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), in, manager)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "err = %v", err)
		})
	}
}

func TestCompra_RecepcionSumaStockYRecalculaCosto(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 10, 0, true) // costo 10
	price := decimal.NewFromInt(40)
	o, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{
		OrderType:  entity.OrderTypePurchase,
		SupplierID: f.supplier.ID,
		Items:      []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 10, UnitPrice: &price}},
	}, manager)
	require.NoError(t, err)

	out := f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed, entity.OrderStatusReceived)
	assert.Equal(t, entity.OrderStatusReceived, out.Status)
	assert.NotNil(t, out.ReceivedAt)
	assert.NotNil(t, out.ConfirmedAt)
	assert.Equal(t, int64(20), f.qty(t, a.ID))

	it, _ := f.store.Items().GetByID(context.Background(), a.ID)
	assert.True(t, it.CostPrice.Equal(decimal.NewFromInt(25)), "costo %s", it.CostPrice)

	entries := f.store.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, entity.ChangeTypePurchase, last.ChangeType)
	assert.Equal(t, o.OrderNumber, last.ReferenceNumber)
	assert.Equal(t, int64(10), last.QuantityChange)

	closed := f.advance(t, o.ID, entity.OrderStatusClosed)
	assert.NotNil(t, closed.ClosedAt)
	assert.Empty(t, closed.NextStatuses)
}

func TestCompra_DraftARecibidoEsInvalido(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 3, 0, true)
	o, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{
		OrderType: entity.OrderTypePurchase, SupplierID: f.supplier.ID,
		Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 5}},
	}, manager)
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(context.Background(), o.ID, entity.OrderStatusReceived, manager)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, int64(3), f.qty(t, a.ID))

	got, err := f.uc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, got.Status)
}

func TestVenta_DespachoSinStockRevierteTodo(t *testing.T) {
	f := newFixture(t)
	ok := f.seedItem(t, "OK", 50, 0, true)
	short := f.seedItem(t, "CORTO", 2, 0, true)
	o := f.salesOrder(t,
		dto.OrderLineRequest{ItemID: ok.ID, Quantity: 5},
		dto.OrderLineRequest{ItemID: short.ID, Quantity: 3},
	)
	f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed)
	entriesBefore := len(f.store.Entries())

	_, err := f.uc.UpdateStatus(context.Background(), o.ID, entity.OrderStatusShipped, manager)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFulfillmentFailed))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var fe *domain.FulfillmentError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, short.ID, fe.ItemID)
	assert.Equal(t, "CORTO", fe.SKU)

	assert.Equal(t, int64(50), f.qty(t, ok.ID))
	assert.Equal(t, int64(2), f.qty(t, short.ID))
	assert.Len(t, f.store.Entries(), entriesBefore)

	got, _ := f.uc.GetByID(context.Background(), o.ID)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
	assert.Nil(t, got.ShippedAt)
}

func TestVenta_DespachoDescuentaYAlertaBajoStock(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 12, 5, true)
	svc := f.seedItem(t, "SERV", 0, 0, false)
	o := f.salesOrder(t,
		dto.OrderLineRequest{ItemID: a.ID, Quantity: 8},
		dto.OrderLineRequest{ItemID: svc.ID, Quantity: 1},
	)
	f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed, entity.OrderStatusShipped)

	assert.Equal(t, int64(4), f.qty(t, a.ID))
	assert.Equal(t, int64(0), f.qty(t, svc.ID), "los artículos sin control de stock no se tocan")
	assert.Equal(t, 1, f.queue.Count(notification.TaskLowStockAlert))
}

func TestVenta_ErrorTransitorioNoSeConvierteEnFulfillment(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 10, 0, true)
	o := f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 1})
	f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed)

	f.store.FailNext("items.GetForUpdate", &domain.TransientError{Op: "lock item", Err: errors.New("canceling statement due to lock timeout")})
	_, err := f.uc.UpdateStatus(context.Background(), o.ID, entity.OrderStatusShipped, manager)
	assert.True(t, errors.Is(err, domain.ErrTransient))
	assert.False(t, errors.Is(err, domain.ErrFulfillmentFailed))
	assert.Equal(t, int64(10), f.qty(t, a.ID))
}

func TestCancelar_NoMueveStock(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 10, 0, true)
	o := f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 4})
	out := f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed, entity.OrderStatusCancelled)
	assert.NotNil(t, out.CancelledAt)
	assert.Equal(t, int64(10), f.qty(t, a.ID))

	_, err := f.uc.UpdateStatus(context.Background(), o.ID, entity.OrderStatusPending, manager)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestUpdateYDelete_SoloEditables(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 10, 0, true)
	b := f.seedItem(t, "B", 10, 0, true)
	o := f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 1})

	updated, err := f.uc.Update(context.Background(), o.ID, dto.UpdateOrderRequest{
		Items: []dto.OrderLineRequest{{ItemID: b.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, b.ID, updated.Items[0].ItemID)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(100)))

	f.advance(t, o.ID, entity.OrderStatusPending, entity.OrderStatusConfirmed)

	_, err = f.uc.Update(context.Background(), o.ID, dto.UpdateOrderRequest{Items: []dto.OrderLineRequest{{ItemID: a.ID, Quantity: 9}}})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	err = f.uc.Delete(context.Background(), o.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	draft := f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 1})
	require.NoError(t, f.uc.Delete(context.Background(), draft.ID))
	_, err = f.uc.GetByID(context.Background(), draft.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, "A", 10, 0, true)
	f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 2}) // 50
	c := f.salesOrder(t, dto.OrderLineRequest{ItemID: a.ID, Quantity: 4})
	f.advance(t, c.ID, entity.OrderStatusCancelled)

	sum, err := f.uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TotalOrders)
	assert.Equal(t, int64(1), sum.ByStatus[entity.OrderStatusCancelled])
	assert.True(t, sum.SalesAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, sum.AverageOrderValue.Equal(decimal.NewFromInt(50)))
}
