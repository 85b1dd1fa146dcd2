package memory

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger en memoria (solo inserción, orden de llegada).
type LedgerRepo struct{ s *Store }

func (r *LedgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("ledger.Create"); err != nil {
		return err
	}
	c := *e
	r.s.ledger = append(r.s.ledger, &c)
	return nil
}

func (r *LedgerRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	all, _ := r.ListAllByItem(ctx, itemID)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return page(all, limit, offset), nil
}

func (r *LedgerRepo) ListAllByItem(_ context.Context, itemID string) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ItemID == itemID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *LedgerRepo) CountByItem(ctx context.Context, itemID string) (int64, error) {
	all, _ := r.ListAllByItem(ctx, itemID)
	return int64(len(all)), nil
}

func (r *LedgerRepo) ListByPeriod(_ context.Context, from, to time.Time, limit int) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		c := *e
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Entries copia de todos los asientos (aserciones en tests).
func (s *Store) Entries() []entity.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.LedgerEntry, len(s.ledger))
	for i, e := range s.ledger {
		out[i] = *e
	}
	return out
}
