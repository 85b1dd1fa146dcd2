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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo artículos en memoria.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("items.Create"); err != nil {
		return err
	}
	for _, it := range r.s.items {
		if it.SKU == item.SKU || (item.Barcode != "" && it.Barcode == item.Barcode) {
			return domain.ErrDuplicate
		}
	}
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneItem(r.s.items[id]), nil
}

// GetForUpdate en memoria equivale a GetByID: el TxRunner ya serializa las transacciones.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.Lock()
	err := r.s.fault("items.GetForUpdate")
	r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if it.SKU == sku {
			return cloneItem(it), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) GetByBarcode(_ context.Context, barcode string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if barcode != "" && it.Barcode == barcode {
			return cloneItem(it), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, it := range r.s.items {
		if it.ID != item.ID && (it.SKU == item.SKU || (item.Barcode != "" && it.Barcode == item.Barcode)) {
			return domain.ErrDuplicate
		}
	}
	next := cloneItem(item)
	next.QuantityInStock = cur.QuantityInStock
	next.CostPrice = cur.CostPrice
	next.CreatedAt = cur.CreatedAt
	r.s.items[item.ID] = next
	return nil
}

func (r *ItemRepo) UpdateQuantity(_ context.Context, id string, quantity int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("items.UpdateQuantity"); err != nil {
		return err
	}
	it, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 0 {
		return domain.Invalid("quantity_in_stock", "no puede ser negativa")
	}
	it.QuantityInStock = quantity
	return nil
}

func (r *ItemRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.CostPrice = cost
	return nil
}

func (r *ItemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []*entity.InventoryItem
	for _, it := range r.s.items {
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) &&
			!strings.Contains(strings.ToLower(it.SKU), search) &&
			!strings.Contains(strings.ToLower(it.Barcode), search) &&
			!strings.Contains(strings.ToLower(it.Brand), search) {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Status != "" && it.Status != f.Status {
			continue
		}
		if f.SupplierID != "" && it.SupplierID != f.SupplierID {
			continue
		}
		if f.LowStock && !(it.IsTracked && it.IsLowStock()) {
			continue
		}
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *ItemRepo) ListLowStock(_ context.Context, limit int) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.InventoryItem
	for _, it := range r.s.items {
		if it.IsTracked && it.Status == entity.ItemStatusActive && it.IsLowStock() {
			out = append(out, cloneItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuantityInStock < out[j].QuantityInStock })
	return page(out, limit, 0), nil
}

func (r *ItemRepo) CountBySupplier(_ context.Context, supplierID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, it := range r.s.items {
		if it.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}

func (r *ItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.items, id)
	return nil
}

func (r *ItemRepo) Summary(_ context.Context) (*repository.ItemSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := &repository.ItemSummary{TotalValue: decimal.Zero}
	for _, it := range r.s.items {
		sum.TotalItems++
		if it.Status == entity.ItemStatusActive {
			sum.ActiveItems++
		}
		if !it.IsTracked {
			continue
		}
		if it.IsLowStock() {
			sum.LowStockItems++
		}
		if it.IsOutOfStock() {
			sum.OutOfStockItems++
		}
		sum.TotalUnits += it.QuantityInStock
		sum.TotalValue = sum.TotalValue.Add(it.StockValue())
	}
	return sum, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
