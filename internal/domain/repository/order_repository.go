package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// OrderFilter criterios de búsqueda de pedidos.
type OrderFilter struct {
	OrderType  string
	Status     string
	SupplierID string
	Search     string // número de pedido o cliente
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// OrderSummary agregados de pedidos por tipo y estado.
type OrderSummary struct {
	TotalOrders    int64
	ByStatus       map[string]int64
	ByType         map[string]int64
	PurchaseAmount decimal.Decimal // compras no canceladas
	SalesAmount    decimal.Decimal // ventas no canceladas
}

// OrderRepository puerto de persistencia para pedidos y sus líneas.
// Los Get* devuelven (nil, nil) si no existe.
type OrderRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la cabecera y carga las líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update cabecera (totales, envío, notas). No cambia el estado.
	Update(ctx context.Context, o *entity.Order) error
	ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error
	// UpdateStatus persiste Status y las fechas de transición.
	UpdateStatus(ctx context.Context, o *entity.Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, int64, error)
	Summary(ctx context.Context) (*OrderSummary, error)
	CountNonCancelledBySupplier(ctx context.Context, supplierID string) (int64, error)
	// CountItemReferences líneas de pedido que referencian el artículo.
	CountItemReferences(ctx context.Context, itemID string) (int64, error)
}
