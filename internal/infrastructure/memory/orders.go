package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos en memoria.
type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.orders {
		if cur.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	for _, line := range o.Items {
		if _, ok := r.s.items[line.ItemID]; !ok {
			return &domain.ConflictError{Resource: "pedido", ID: o.ID, Message: "la línea referencia un artículo inexistente"}
		}
	}
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneOrder(r.s.orders[id]), nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cloneOrder(o)
	next.Status = cur.Status
	next.Items = cur.Items
	r.s.orders[o.ID] = next
	return nil
}

func (r *OrderRepo) ReplaceItems(_ context.Context, orderID string, items []entity.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Items = append([]entity.OrderItem(nil), items...)
	return nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("orders.UpdateStatus"); err != nil {
		return err
	}
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = o.Status
	cur.ConfirmedAt, cur.ShippedAt, cur.ReceivedAt = o.ConfirmedAt, o.ShippedAt, o.ReceivedAt
	cur.ClosedAt, cur.CancelledAt, cur.UpdatedAt = o.ClosedAt, o.CancelledAt, o.UpdatedAt
	return nil
}

func (r *OrderRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []*entity.Order
	for _, o := range r.s.orders {
		if f.OrderType != "" && o.OrderType != f.OrderType {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.SupplierID != "" && o.SupplierID != f.SupplierID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !o.CreatedAt.Before(*f.To) {
			continue
		}
		c := cloneOrder(o)
		c.Items = nil
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *OrderRepo) Summary(_ context.Context) (*repository.OrderSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := &repository.OrderSummary{
		ByStatus:       map[string]int64{},
		ByType:         map[string]int64{},
		PurchaseAmount: decimal.Zero,
		SalesAmount:    decimal.Zero,
	}
	for _, o := range r.s.orders {
		sum.TotalOrders++
		sum.ByStatus[o.Status]++
		sum.ByType[o.OrderType]++
		if o.Status == entity.OrderStatusCancelled {
			continue
		}
		if o.OrderType == entity.OrderTypePurchase {
			sum.PurchaseAmount = sum.PurchaseAmount.Add(o.TotalAmount)
		} else {
			sum.SalesAmount = sum.SalesAmount.Add(o.TotalAmount)
		}
	}
	return sum, nil
}

func (r *OrderRepo) CountNonCancelledBySupplier(_ context.Context, supplierID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, o := range r.s.orders {
		if o.SupplierID == supplierID && o.Status != entity.OrderStatusCancelled {
			n++
		}
	}
	return n, nil
}

func (r *OrderRepo) CountItemReferences(_ context.Context, itemID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, o := range r.s.orders {
		for _, line := range o.Items {
			if line.ItemID == itemID {
				n++
			}
		}
	}
	return n, nil
}
