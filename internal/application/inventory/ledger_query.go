package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// Verification resultado de comprobar la cadena del ledger de un artículo.
type Verification struct {
	ItemID     string   `json:"item_id"`
	Quantity   int64    `json:"quantity"`
	Entries    int      `json:"entries"`
	Consistent bool     `json:"consistent"`
	Problems   []string `json:"problems,omitempty"`
}

// LedgerQuery consultas de historial sobre el ledger (única fuente del historial de stock).
type LedgerQuery struct {
	items  repository.ItemRepository
	ledger repository.LedgerRepository
}

// NewLedgerQuery construye el servicio de consulta.
func NewLedgerQuery(items repository.ItemRepository, ledger repository.LedgerRepository) *LedgerQuery {
	return &LedgerQuery{items: items, ledger: ledger}
}

// History asientos del artículo, más recientes primero.
func (q *LedgerQuery) History(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, int64, error) {
	item, err := q.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	if item == nil {
		return nil, 0, domain.ErrNotFound
	}
	list, err := q.ledger.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := q.ledger.CountByItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Verify comprueba que cada asiento encadena con el anterior y que el último coincide con la cantidad actual.
// Un artículo sin asientos es consistente solo si su cantidad es 0.
func (q *LedgerQuery) Verify(ctx context.Context, itemID string) (*Verification, error) {
	item, err := q.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := q.ledger.ListAllByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	v := &Verification{ItemID: item.ID, Quantity: item.QuantityInStock, Entries: len(entries)}

	var running int64
	for i, e := range entries {
		if e.PreviousQuantity != running {
			v.Problems = append(v.Problems, fmt.Sprintf("asiento %d (%s): cantidad previa %d, esperada %d", i+1, e.ID, e.PreviousQuantity, running))
		}
		if e.PreviousQuantity+e.QuantityChange != e.NewQuantity {
			v.Problems = append(v.Problems, fmt.Sprintf("asiento %d (%s): %d %+d != %d", i+1, e.ID, e.PreviousQuantity, e.QuantityChange, e.NewQuantity))
		}
		running = e.NewQuantity
	}
	if running != item.QuantityInStock {
		v.Problems = append(v.Problems, fmt.Sprintf("cantidad actual %d, ledger %d", item.QuantityInStock, running))
	}
	v.Consistent = len(v.Problems) == 0
	return v, nil
}
