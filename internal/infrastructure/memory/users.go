package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.users {
		if strings.EqualFold(cur.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if cur.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) get(match func(*entity.User) bool) *entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, cur := range r.s.users {
		if match(cur) {
			c := *cur
			return &c
		}
	}
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.get(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, cur := range r.s.users {
		if cur.ID == u.ID {
			continue
		}
		if strings.EqualFold(cur.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if cur.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := at
	cur.LastLogin = &t
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]*entity.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []*entity.User
	for _, cur := range r.s.users {
		if search != "" && !strings.Contains(strings.ToLower(cur.Email), search) &&
			!strings.Contains(strings.ToLower(cur.Username), search) &&
			!strings.Contains(strings.ToLower(cur.FullName), search) {
			continue
		}
		if f.Role != "" && cur.Role != f.Role {
			continue
		}
		if f.IsActive != nil && cur.IsActive != *f.IsActive {
			continue
		}
		c := *cur
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	total := int64(len(out))
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) CountReferences(_ context.Context, id string) (int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ledger, orders int64
	for _, e := range r.s.ledger {
		if e.UserID == id {
			ledger++
		}
	}
	for _, o := range r.s.orders {
		if o.CreatedBy == id {
			orders++
		}
	}
	return ledger, orders, nil
}
