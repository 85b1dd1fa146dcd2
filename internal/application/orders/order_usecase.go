// Package orders casos de uso de pedidos de compra y venta.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/order"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// OrderUseCase CRUD de pedidos. Los cambios de estado se delegan en StatusMachine.
type OrderUseCase struct {
	tx         ports.TxRunner
	orders     repository.OrderRepository
	machine    *StatusMachine
	dispatcher *notification.Dispatcher
	now        func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(tx ports.TxRunner, orders repository.OrderRepository, machine *StatusMachine, dispatcher *notification.Dispatcher) *OrderUseCase {
	return &OrderUseCase{tx: tx, orders: orders, machine: machine, dispatcher: dispatcher, now: time.Now}
}

// Create valida proveedor/cliente y líneas, calcula totales y persiste el pedido en draft o pending.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest, actor entity.Actor) (*dto.OrderResponse, error) {
	if !entity.ValidOrderType(in.OrderType) {
		return nil, domain.Invalid("order_type", "debe ser purchase o sales")
	}
	status := in.Status
	if status == "" {
		status = entity.OrderStatusDraft
	}
	if status != entity.OrderStatusDraft && status != entity.OrderStatusPending {
		return nil, domain.Invalid("status", "un pedido nuevo solo puede quedar en draft o pending")
	}
	if in.OrderType == entity.OrderTypePurchase && in.SupplierID == "" {
		return nil, domain.Invalid("supplier_id", "requerido en pedidos de compra")
	}
	if in.OrderType == entity.OrderTypeSales && strings.TrimSpace(in.CustomerName) == "" {
		return nil, domain.Invalid("customer_name", "requerido en pedidos de venta")
	}
	if err := validateAmounts(in.TaxAmount, in.DiscountAmount, in.ShippingCost); err != nil {
		return nil, err
	}

	now := uc.now()
	o := &entity.Order{
		ID:                   uuid.New().String(),
		OrderNumber:          newOrderNumber(in.OrderType, now),
		OrderType:            in.OrderType,
		Status:               status,
		SupplierID:           in.SupplierID,
		CustomerName:         strings.TrimSpace(in.CustomerName),
		CustomerEmail:        strings.TrimSpace(in.CustomerEmail),
		TaxAmount:            in.TaxAmount,
		DiscountAmount:       in.DiscountAmount,
		ShippingCost:         in.ShippingCost,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		ShippingAddress:      in.ShippingAddress,
		ShippingCity:         in.ShippingCity,
		ShippingState:        in.ShippingState,
		ShippingCountry:      in.ShippingCountry,
		ShippingPostalCode:   in.ShippingPostalCode,
		Notes:                in.Notes,
		InternalNotes:        in.InternalNotes,
		CreatedBy:            actor.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		if o.OrderType == entity.OrderTypePurchase {
			if err := checkSupplier(ctx, repos, o.SupplierID); err != nil {
				return err
			}
		}
		lines, err := buildLines(ctx, repos, o, in.Items)
		if err != nil {
			return err
		}
		o.Items = lines
		o.RecalculateTotals()
		return repos.Orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if uc.dispatcher != nil {
		uc.dispatcher.Dispatch(ctx, notification.TaskOrderNotification, orderEvent(o, notification.EventOrderCreated, now))
	}
	return ToOrderResponse(o), nil
}

// GetByID pedido con sus líneas.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return ToOrderResponse(o), nil
}

// List pedidos filtrados, más recientes primero.
func (uc *OrderUseCase) List(ctx context.Context, q dto.OrderListQuery) (*dto.OrderListResponse, error) {
	q.DefaultPage()
	if q.OrderType != "" && !entity.ValidOrderType(q.OrderType) {
		return nil, domain.Invalid("order_type", "debe ser purchase o sales")
	}
	if q.Status != "" && !order.ValidStatus(q.Status) {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	list, total, err := uc.orders.List(ctx, repository.OrderFilter{
		OrderType:  q.OrderType,
		Status:     q.Status,
		SupplierID: q.SupplierID,
		Search:     q.Search,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *ToOrderResponse(o))
	}
	return &dto.OrderListResponse{Orders: out, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}}, nil
}

// Update modifica cabecera y, si vienen, reemplaza las líneas. Solo en draft o pending.
func (uc *OrderUseCase) Update(ctx context.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	var updated *entity.Order
	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		o, err := repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.Editable() {
			return notEditable(o)
		}
		if err := applyOrderUpdate(o, in); err != nil {
			return err
		}
		if o.OrderType == entity.OrderTypePurchase && in.SupplierID != nil {
			if err := checkSupplier(ctx, repos, o.SupplierID); err != nil {
				return err
			}
		}
		if in.Items != nil {
			lines, err := buildLines(ctx, repos, o, in.Items)
			if err != nil {
				return err
			}
			if err := repos.Orders.ReplaceItems(ctx, o.ID, lines); err != nil {
				return err
			}
			o.Items = lines
		}
		o.RecalculateTotals()
		o.UpdatedAt = uc.now()
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(updated), nil
}

// Delete elimina el pedido solo si está en draft o pending.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		o, err := repos.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.Editable() {
			return notEditable(o)
		}
		return repos.Orders.Delete(ctx, id)
	})
}

// UpdateStatus transición de estado (ver StatusMachine.Transition).
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, id, target string, actor entity.Actor) (*dto.OrderResponse, error) {
	o, err := uc.machine.Transition(ctx, id, target, actor)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// Summary estadísticas calculadas sobre los pedidos persistidos.
func (uc *OrderUseCase) Summary(ctx context.Context) (*dto.OrderSummaryResponse, error) {
	sum, err := uc.orders.Summary(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.OrderSummaryResponse{
		TotalOrders:       sum.TotalOrders,
		ByStatus:          sum.ByStatus,
		ByType:            sum.ByType,
		PurchaseAmount:    sum.PurchaseAmount,
		SalesAmount:       sum.SalesAmount,
		AverageOrderValue: decimal.Zero,
	}
	if active := sum.TotalOrders - sum.ByStatus[entity.OrderStatusCancelled]; active > 0 {
		out.AverageOrderValue = sum.PurchaseAmount.Add(sum.SalesAmount).Div(decimal.NewFromInt(active)).Round(2)
	}
	return out, nil
}

func newOrderNumber(orderType string, at time.Time) string {
	prefix := "SO"
	if orderType == entity.OrderTypePurchase {
		prefix = "PO"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}

func checkSupplier(ctx context.Context, repos ports.TxRepos, supplierID string) error {
	if supplierID == "" {
		return domain.Invalid("supplier_id", "requerido en pedidos de compra")
	}
	sp, err := repos.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sp == nil {
		return domain.Invalid("supplier_id", "el proveedor no existe")
	}
	if !sp.IsActive {
		return domain.Invalid("supplier_id", "el proveedor está inactivo")
	}
	return nil
}

// buildLines valida las líneas contra los artículos y resuelve el precio por defecto.
func buildLines(ctx context.Context, repos ports.TxRepos, o *entity.Order, in []dto.OrderLineRequest) ([]entity.OrderItem, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("items", "el pedido necesita al menos una línea")
	}
	seen := make(map[string]bool, len(in))
	lines := make([]entity.OrderItem, 0, len(in))
	for i, l := range in {
		field := fmt.Sprintf("items[%d]", i)
		if l.ItemID == "" {
			return nil, domain.Invalid(field+".item_id", "requerido")
		}
		if seen[l.ItemID] {
			return nil, domain.Invalid(field+".item_id", "artículo repetido en el pedido")
		}
		seen[l.ItemID] = true
		if l.Quantity <= 0 {
			return nil, domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		item, err := repos.Items.GetByID(ctx, l.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.Invalid(field+".item_id", "el artículo no existe")
		}
		price := item.UnitPrice
		if o.OrderType == entity.OrderTypePurchase && !item.CostPrice.IsZero() {
			price = item.CostPrice
		}
		if l.UnitPrice != nil {
			if l.UnitPrice.IsNegative() {
				return nil, domain.Invalid(field+".unit_price", "no puede ser negativo")
			}
			price = *l.UnitPrice
		}
		lines = append(lines, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: price,
			Notes:     l.Notes,
		})
	}
	return lines, nil
}

func applyOrderUpdate(o *entity.Order, in dto.UpdateOrderRequest) error {
	if in.SupplierID != nil {
		if o.OrderType != entity.OrderTypePurchase {
			return domain.Invalid("supplier_id", "solo aplica a pedidos de compra")
		}
		o.SupplierID = *in.SupplierID
	}
	if in.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*in.CustomerName)
		if o.OrderType == entity.OrderTypeSales && o.CustomerName == "" {
			return domain.Invalid("customer_name", "requerido en pedidos de venta")
		}
	}
	if in.CustomerEmail != nil {
		o.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
	if in.TaxAmount != nil {
		o.TaxAmount = *in.TaxAmount
	}
	if in.DiscountAmount != nil {
		o.DiscountAmount = *in.DiscountAmount
	}
	if in.ShippingCost != nil {
		o.ShippingCost = *in.ShippingCost
	}
	if err := validateAmounts(o.TaxAmount, o.DiscountAmount, o.ShippingCost); err != nil {
		return err
	}
	if in.ExpectedDeliveryDate != nil {
		o.ExpectedDeliveryDate = in.ExpectedDeliveryDate
	}
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&o.ShippingAddress, in.ShippingAddress)
	setStr(&o.ShippingCity, in.ShippingCity)
	setStr(&o.ShippingState, in.ShippingState)
	setStr(&o.ShippingCountry, in.ShippingCountry)
	setStr(&o.ShippingPostalCode, in.ShippingPostalCode)
	setStr(&o.TrackingNumber, in.TrackingNumber)
	setStr(&o.Notes, in.Notes)
	setStr(&o.InternalNotes, in.InternalNotes)
	return nil
}

func validateAmounts(tax, discount, shipping decimal.Decimal) error {
	switch {
	case tax.IsNegative():
		return domain.Invalid("tax_amount", "no puede ser negativo")
	case discount.IsNegative():
		return domain.Invalid("discount_amount", "no puede ser negativo")
	case shipping.IsNegative():
		return domain.Invalid("shipping_cost", "no puede ser negativo")
	}
	return nil
}

func notEditable(o *entity.Order) error {
	return &domain.ConflictError{
		Resource: "pedido",
		ID:       o.ID,
		Message:  fmt.Sprintf("el pedido %s está en estado %s y ya no admite cambios", o.OrderNumber, o.Status),
	}
}

// ToOrderResponse mapea la entidad a DTO.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	next := order.NextStatuses(o.OrderType, o.Status)
	if next == nil {
		next = []string{}
	}
	out := &dto.OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		OrderType:            o.OrderType,
		Status:               o.Status,
		NextStatuses:         next,
		SupplierID:           o.SupplierID,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		Subtotal:             o.Subtotal,
		TaxAmount:            o.TaxAmount,
		DiscountAmount:       o.DiscountAmount,
		ShippingCost:         o.ShippingCost,
		TotalAmount:          o.TotalAmount,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ShippingAddress:      o.ShippingAddress,
		ShippingCity:         o.ShippingCity,
		ShippingState:        o.ShippingState,
		ShippingCountry:      o.ShippingCountry,
		ShippingPostalCode:   o.ShippingPostalCode,
		TrackingNumber:       o.TrackingNumber,
		Notes:                o.Notes,
		InternalNotes:        o.InternalNotes,
		CreatedBy:            o.CreatedBy,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		ConfirmedAt:          o.ConfirmedAt,
		ShippedAt:            o.ShippedAt,
		ReceivedAt:           o.ReceivedAt,
		ClosedAt:             o.ClosedAt,
		CancelledAt:          o.CancelledAt,
	}
	for _, l := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:         l.ID,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			Notes:      l.Notes,
		})
	}
	return out
}
