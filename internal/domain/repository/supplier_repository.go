package repository

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// SupplierFilter criterios de búsqueda de proveedores.
type SupplierFilter struct {
	Search   string
	IsActive *bool
	Limit    int
	Offset   int
}

// SupplierRepository puerto de persistencia para Supplier. Los Get* devuelven (nil, nil) si no existe.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Supplier, error)
	GetByName(ctx context.Context, name string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	List(ctx context.Context, f SupplierFilter) ([]*entity.Supplier, int64, error)
	Delete(ctx context.Context, id string) error
}
