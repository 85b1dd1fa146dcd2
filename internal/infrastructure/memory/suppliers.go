package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.suppliers {
		if strings.EqualFold(cur.Name, sp.Name) {
			return domain.ErrDuplicate
		}
	}
	c := *sp
	r.s.suppliers[sp.ID] = &c
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cur, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	c := *cur
	return &c, nil
}

func (r *SupplierRepo) GetForUpdate(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.GetByID(ctx, id)
}

func (r *SupplierRepo) GetByName(_ context.Context, name string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, cur := range r.s.suppliers {
		if strings.EqualFold(cur.Name, name) {
			c := *cur
			return &c, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sp.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, cur := range r.s.suppliers {
		if cur.ID != sp.ID && strings.EqualFold(cur.Name, sp.Name) {
			return domain.ErrDuplicate
		}
	}
	c := *sp
	r.s.suppliers[sp.ID] = &c
	return nil
}

func (r *SupplierRepo) List(_ context.Context, f repository.SupplierFilter) ([]*entity.Supplier, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []*entity.Supplier
	for _, cur := range r.s.suppliers {
		if search != "" && !strings.Contains(strings.ToLower(cur.Name), search) &&
			!strings.Contains(strings.ToLower(cur.ContactPerson), search) &&
			!strings.Contains(strings.ToLower(cur.Email), search) {
			continue
		}
		if f.IsActive != nil && cur.IsActive != *f.IsActive {
			continue
		}
		c := *cur
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.suppliers, id)
	return nil
}
