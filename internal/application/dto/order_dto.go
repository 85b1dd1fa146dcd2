package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido en la entrada.
type OrderLineRequest struct {
	ItemID    string           `json:"item_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // vacío = precio (venta) o costo (compra) del artículo
	Notes     string           `json:"notes,omitempty"`
}

// CreateOrderRequest entrada para crear un pedido.
type CreateOrderRequest struct {
	OrderType            string             `json:"order_type"`
	Status               string             `json:"status,omitempty"` // draft (defecto) o pending
	SupplierID           string             `json:"supplier_id,omitempty"`
	CustomerName         string             `json:"customer_name,omitempty"`
	CustomerEmail        string             `json:"customer_email,omitempty"`
	TaxAmount            decimal.Decimal    `json:"tax_amount"`
	DiscountAmount       decimal.Decimal    `json:"discount_amount"`
	ShippingCost         decimal.Decimal    `json:"shipping_cost"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date,omitempty"`
	ShippingAddress      string             `json:"shipping_address,omitempty"`
	ShippingCity         string             `json:"shipping_city,omitempty"`
	ShippingState        string             `json:"shipping_state,omitempty"`
	ShippingCountry      string             `json:"shipping_country,omitempty"`
	ShippingPostalCode   string             `json:"shipping_postal_code,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	InternalNotes        string             `json:"internal_notes,omitempty"`
	Items                []OrderLineRequest `json:"items"`
}

// UpdateOrderRequest cambios permitidos mientras el pedido es editable.
type UpdateOrderRequest struct {
	SupplierID           *string            `json:"supplier_id"`
	CustomerName         *string            `json:"customer_name"`
	CustomerEmail        *string            `json:"customer_email"`
	TaxAmount            *decimal.Decimal   `json:"tax_amount"`
	DiscountAmount       *decimal.Decimal   `json:"discount_amount"`
	ShippingCost         *decimal.Decimal   `json:"shipping_cost"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date"`
	ShippingAddress      *string            `json:"shipping_address"`
	ShippingCity         *string            `json:"shipping_city"`
	ShippingState        *string            `json:"shipping_state"`
	ShippingCountry      *string            `json:"shipping_country"`
	ShippingPostalCode   *string            `json:"shipping_postal_code"`
	TrackingNumber       *string            `json:"tracking_number"`
	Notes                *string            `json:"notes"`
	InternalNotes        *string            `json:"internal_notes"`
	Items                []OrderLineRequest `json:"items,omitempty"` // nil = no tocar líneas
}

// UpdateOrderStatusRequest body para PATCH /api/orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse línea de pedido.
type OrderItemResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      string          `json:"notes,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID                   string              `json:"id"`
	OrderNumber          string              `json:"order_number"`
	OrderType            string              `json:"order_type"`
	Status               string              `json:"status"`
	NextStatuses         []string            `json:"next_statuses"`
	SupplierID           string              `json:"supplier_id,omitempty"`
	CustomerName         string              `json:"customer_name,omitempty"`
	CustomerEmail        string              `json:"customer_email,omitempty"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	TaxAmount            decimal.Decimal     `json:"tax_amount"`
	DiscountAmount       decimal.Decimal     `json:"discount_amount"`
	ShippingCost         decimal.Decimal     `json:"shipping_cost"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	ShippingAddress      string              `json:"shipping_address,omitempty"`
	ShippingCity         string              `json:"shipping_city,omitempty"`
	ShippingState        string              `json:"shipping_state,omitempty"`
	ShippingCountry      string              `json:"shipping_country,omitempty"`
	ShippingPostalCode   string              `json:"shipping_postal_code,omitempty"`
	TrackingNumber       string              `json:"tracking_number,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	InternalNotes        string              `json:"internal_notes,omitempty"`
	CreatedBy            string              `json:"created_by"`
	Items                []OrderItemResponse `json:"items,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	ConfirmedAt          *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt            *time.Time          `json:"shipped_at,omitempty"`
	ReceivedAt           *time.Time          `json:"received_at,omitempty"`
	ClosedAt             *time.Time          `json:"closed_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
}

// OrderListResponse lista paginada de pedidos (sin líneas).
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   PageResponse    `json:"page"`
}

// OrderListQuery filtros de GET /api/orders.
type OrderListQuery struct {
	PageRequest
	OrderType  string `query:"order_type"`
	Status     string `query:"status"`
	SupplierID string `query:"supplier_id"`
	Search     string `query:"search"`
}

// OrderSummaryResponse estadísticas de pedidos calculadas al vuelo.
type OrderSummaryResponse struct {
	TotalOrders       int64            `json:"total_orders"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByType            map[string]int64 `json:"by_type"`
	PurchaseAmount    decimal.Decimal  `json:"purchase_amount"`
	SalesAmount       decimal.Decimal  `json:"sales_amount"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
}
