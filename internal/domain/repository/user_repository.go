package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// UserFilter criterios de búsqueda de usuarios.
type UserFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Limit    int
	Offset   int
}

// UserRepository define el puerto de persistencia para User (DIP). Los Get* devuelven (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f UserFilter) ([]*entity.User, int64, error)
	Delete(ctx context.Context, id string) error
	// CountReferences asientos de stock y pedidos registrados por el usuario.
	CountReferences(ctx context.Context, id string) (ledger, orders int64, err error)
}
