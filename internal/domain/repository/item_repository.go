package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// ItemFilter criterios de búsqueda de artículos.
type ItemFilter struct {
	Search     string // coincidencia parcial en nombre, SKU o código de barras
	Category   string
	Status     string
	SupplierID string
	LowStock   bool
	Limit      int
	Offset     int
}

// ItemSummary agregados del inventario.
type ItemSummary struct {
	TotalItems      int64
	ActiveItems     int64
	LowStockItems   int64
	OutOfStockItems int64
	TotalUnits      int64
	TotalValue      decimal.Decimal
}

// ItemRepository puerto de persistencia para InventoryItem.
// Los Get* devuelven (nil, nil) si no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.InventoryItem, error)
	// Update no modifica QuantityInStock ni CostPrice.
	Update(ctx context.Context, item *entity.InventoryItem) error
	UpdateQuantity(ctx context.Context, id string, quantity int64) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	List(ctx context.Context, f ItemFilter) ([]*entity.InventoryItem, int64, error)
	ListLowStock(ctx context.Context, limit int) ([]*entity.InventoryItem, error)
	CountBySupplier(ctx context.Context, supplierID string) (int64, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*ItemSummary, error)
}
