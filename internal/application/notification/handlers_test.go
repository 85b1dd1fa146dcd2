package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: append([]string(nil), to...), subject: subject, body: body})
	return nil
}

func seed(t *testing.T, store *memory.Store, sku string, qty, reorder int64) *entity.InventoryItem {
	t.Helper()
	it := &entity.InventoryItem{
		ID: "id-" + sku, SKU: sku, Name: "Artículo " + sku, Category: entity.CategoryOther,
		Status: entity.ItemStatusActive, IsTracked: true, QuantityInStock: qty, ReorderPoint: reorder,
	}
	require.NoError(t, store.Items().Create(context.Background(), it))
	return it
}

func payload(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestHandleLowStockAlert_EnviaCorreo(t *testing.T) {
	store := memory.NewStore()
	it := seed(t, store, "TOR-01", 2, 5)
	mailer := &fakeMailer{}
	h := notification.NewHandlers(store.Items(), memory.NewQueue(), mailer, "bodega@example.com", logger.Nop())

	err := h.HandleLowStockAlert(context.Background(), payload(t, notification.LowStockAlert{ItemID: it.ID, DetectedAt: time.Now()}))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"bodega@example.com"}, mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "TOR-01")
	assert.Contains(t, mailer.sent[0].body, "2 unidades")
}

func TestHandleLowStockAlert_DescartaSiYaSeRepuso(t *testing.T) {
	store := memory.NewStore()
	it := seed(t, store, "TOR-01", 20, 5)
	mailer := &fakeMailer{}
	h := notification.NewHandlers(store.Items(), memory.NewQueue(), mailer, "bodega@example.com", logger.Nop())

	require.NoError(t, h.HandleLowStockAlert(context.Background(), payload(t, notification.LowStockAlert{ItemID: it.ID})))
	require.NoError(t, h.HandleLowStockAlert(context.Background(), payload(t, notification.LowStockAlert{ItemID: "no-existe"})))
	assert.Empty(t, mailer.sent)
}

func TestHandleLowStockAlert_FalloSMTPSePropaga(t *testing.T) {
	store := memory.NewStore()
	it := seed(t, store, "TOR-01", 0, 5)
	mailer := &fakeMailer{err: errors.New("smtp caído")}
	h := notification.NewHandlers(store.Items(), memory.NewQueue(), mailer, "bodega@example.com", logger.Nop())

	err := h.HandleLowStockAlert(context.Background(), payload(t, notification.LowStockAlert{ItemID: it.ID}))
	assert.Error(t, err, "la cola debe reintentar")
}

func TestHandleLowStockAlert_PayloadInvalido(t *testing.T) {
	h := notification.NewHandlers(memory.NewStore().Items(), memory.NewQueue(), nil, "", logger.Nop())
	assert.Error(t, h.HandleLowStockAlert(context.Background(), []byte("{no es json")))
}

func TestHandleOrderNotification_DespachoAvisaAlCliente(t *testing.T) {
	mailer := &fakeMailer{}
	h := notification.NewHandlers(memory.NewStore().Items(), memory.NewQueue(), mailer, "ventas@example.com", logger.Nop())

	n := notification.OrderNotification{
		OrderNumber: "SO-20261015-ABCD1234", OrderType: entity.OrderTypeSales, Event: notification.EventOrderShipped,
		Status: entity.OrderStatusShipped, TotalAmount: decimal.RequireFromString("46.00"),
		CustomerEmail: "cliente@example.com", OccurredAt: time.Now(),
	}
	require.NoError(t, h.HandleOrderNotification(context.Background(), payload(t, n)))
	require.Len(t, mailer.sent, 1)
	assert.ElementsMatch(t, []string{"ventas@example.com", "cliente@example.com"}, mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "46.00")

	n.Event = notification.EventOrderCreated
	require.NoError(t, h.HandleOrderNotification(context.Background(), payload(t, n)))
	assert.Equal(t, []string{"ventas@example.com"}, mailer.sent[1].to)

	n.Event = "otro"
	require.NoError(t, h.HandleOrderNotification(context.Background(), payload(t, n)))
	assert.Len(t, mailer.sent, 2)
}

func TestHandlers_SinMailerSoloRegistra(t *testing.T) {
	store := memory.NewStore()
	it := seed(t, store, "TOR-01", 1, 5)
	h := notification.NewHandlers(store.Items(), memory.NewQueue(), nil, "", logger.Nop())
	assert.NoError(t, h.HandleLowStockAlert(context.Background(), payload(t, notification.LowStockAlert{ItemID: it.ID})))
}

func TestHandleCheckLowStock_UnaAlertaPorArticulo(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "A", 1, 5)
	seed(t, store, "B", 5, 5)
	seed(t, store, "C", 50, 5)
	queue := memory.NewQueue()
	h := notification.NewHandlers(store.Items(), queue, nil, "", logger.Nop())

	require.NoError(t, h.HandleCheckLowStock(context.Background(), nil))
	assert.Equal(t, 2, queue.Count(notification.TaskLowStockAlert))

	queue.Err = errors.New("redis caído")
	assert.Error(t, h.HandleCheckLowStock(context.Background(), payload(t, notification.CheckLowStock{Limit: 10})))
}

func TestRoutes_CubreTodasLasTareas(t *testing.T) {
	h := notification.NewHandlers(memory.NewStore().Items(), memory.NewQueue(), nil, "", logger.Nop())
	routes := h.Routes()
	for _, task := range []string{notification.TaskLowStockAlert, notification.TaskOrderNotification, notification.TaskCheckLowStock} {
		assert.Contains(t, routes, task)
	}
}
