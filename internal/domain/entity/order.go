package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de pedido.
const (
	OrderTypePurchase = "purchase" // entrada de stock (proveedor)
	OrderTypeSales    = "sales"    // salida de stock (cliente)
)

// Estados de pedido.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"  // solo ventas
	OrderStatusReceived  = "received" // solo compras
	OrderStatusClosed    = "closed"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderType indica si t es un tipo de pedido conocido.
func ValidOrderType(t string) bool {
	return t == OrderTypePurchase || t == OrderTypeSales
}

// Order pedido de compra o de venta.
type Order struct {
	ID                   string
	OrderNumber          string // generado, único
	OrderType            string
	Status               string
	SupplierID           string // compras
	CustomerName         string // ventas
	CustomerEmail        string
	Subtotal             decimal.Decimal
	TaxAmount            decimal.Decimal
	DiscountAmount       decimal.Decimal
	ShippingCost         decimal.Decimal
	TotalAmount          decimal.Decimal
	ExpectedDeliveryDate *time.Time
	ShippingAddress      string
	ShippingCity         string
	ShippingState        string
	ShippingCountry      string
	ShippingPostalCode   string
	TrackingNumber       string
	Notes                string
	InternalNotes        string
	CreatedBy            string
	Items                []OrderItem
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ConfirmedAt          *time.Time
	ShippedAt            *time.Time
	ReceivedAt           *time.Time
	ClosedAt             *time.Time
	CancelledAt          *time.Time
}

// OrderItem línea de pedido.
type OrderItem struct {
	ID         string
	OrderID    string
	ItemID     string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Notes      string
}

// Editable true mientras el pedido admite cambios de líneas y eliminación (draft, pending).
func (o *Order) Editable() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusPending
}

// Terminal true si el pedido ya no admite transiciones.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusClosed || o.Status == OrderStatusCancelled
}

// RecalculateTotals recalcula TotalPrice de cada línea, Subtotal y TotalAmount.
func (o *Order) RecalculateTotals() {
	subtotal := decimal.Zero
	for i := range o.Items {
		line := &o.Items[i]
		line.TotalPrice = line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		subtotal = subtotal.Add(line.TotalPrice)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.TaxAmount).Add(o.ShippingCost).Sub(o.DiscountAmount)
}

// StampStatus registra la fecha de la transición al estado actual.
func (o *Order) StampStatus(at time.Time) {
	t := at
	switch o.Status {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &t
	case OrderStatusShipped:
		o.ShippedAt = &t
	case OrderStatusReceived:
		o.ReceivedAt = &t
	case OrderStatusClosed:
		o.ClosedAt = &t
	case OrderStatusCancelled:
		o.CancelledAt = &t
	}
	o.UpdatedAt = at
}
