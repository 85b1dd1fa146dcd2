package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/domain"
	domaininv "github.com/jhoicas/inventory-manager/internal/domain/inventory"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// Evaluation resultado de evaluar un artículo.
type Evaluation struct {
	ItemID       string `json:"item_id"`
	Quantity     int64  `json:"quantity"`
	ReorderPoint int64  `json:"reorder_point"`
	IsLow        bool   `json:"is_low"`
}

// LowStockEvaluator decide si un artículo está bajo y, solo en el cruce del umbral, pide la alerta.
type LowStockEvaluator struct {
	items      repository.ItemRepository
	dispatcher *notification.Dispatcher
	now        func() time.Time
}

// NewLowStockEvaluator construye el evaluador. dispatcher nil = sin alertas.
func NewLowStockEvaluator(items repository.ItemRepository, dispatcher *notification.Dispatcher) *LowStockEvaluator {
	return &LowStockEvaluator{items: items, dispatcher: dispatcher, now: time.Now}
}

// Evaluate lectura pura: no encola nada.
func (e *LowStockEvaluator) Evaluate(ctx context.Context, itemID string) (*Evaluation, error) {
	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return &Evaluation{
		ItemID:       item.ID,
		Quantity:     item.QuantityInStock,
		ReorderPoint: item.ReorderPoint,
		IsLow:        domaininv.IsLow(item.QuantityInStock, item.ReorderPoint),
	}, nil
}

// AfterMutation se llama después del commit. Encola inventory.low_stock_alert solo si m cruzó el umbral.
// Devuelve true si se pidió la alerta (aunque el encolado haya fallado).
func (e *LowStockEvaluator) AfterMutation(ctx context.Context, m Mutation) bool {
	if !m.CrossedIntoLow() {
		return false
	}
	if e.dispatcher != nil {
		e.dispatcher.Dispatch(ctx, notification.TaskLowStockAlert, notification.LowStockAlert{
			ItemID:          m.ItemID,
			SKU:             m.SKU,
			Name:            m.Name,
			Quantity:        m.NewQuantity,
			ReorderPoint:    m.ReorderPoint,
			ReferenceNumber: m.ReferenceNumber,
			DetectedAt:      e.now(),
		})
	}
	return true
}
