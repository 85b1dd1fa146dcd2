// Package notification define las tareas en segundo plano (alertas de stock y avisos de pedidos),
// su despacho best-effort desde la API y los manejadores que ejecuta el worker.
package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de tarea en la cola.
const (
	TaskLowStockAlert     = "inventory.low_stock_alert"
	TaskOrderNotification = "orders.notification"
	TaskCheckLowStock     = "inventory.check_low_stock"
)

// Eventos de pedido notificados.
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
	EventOrderReceived  = "order_received"
	EventOrderShipped   = "order_shipped"
	EventOrderCancelled = "order_cancelled"
)

// LowStockAlert payload de inventory.low_stock_alert.
type LowStockAlert struct {
	ItemID          string    `json:"item_id"`
	SKU             string    `json:"sku"`
	Name            string    `json:"name"`
	Quantity        int64     `json:"quantity"`
	ReorderPoint    int64     `json:"reorder_point"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// OrderNotification payload de orders.notification.
type OrderNotification struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	OrderType     string          `json:"order_type"`
	Event         string          `json:"event"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// CheckLowStock payload de inventory.check_low_stock (barrido periódico).
type CheckLowStock struct {
	Limit int `json:"limit"`
}
