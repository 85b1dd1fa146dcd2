package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-manager/internal/domain/inventory"
)

// AdjustInput un cambio de stock con signo sobre un artículo.
type AdjustInput struct {
	ItemID          string
	Delta           int64
	ChangeType      string // vacío = adjustment
	Reason          string
	ReferenceNumber string
	Notes           string
	// UnitCost costo de la entrada; si viene y Delta > 0 se recalcula el costo promedio ponderado.
	UnitCost *decimal.Decimal
	Actor    entity.Actor
	// SkipUntracked omite (sin error) artículos sin control de stock. Lo usa el cumplimiento de pedidos.
	SkipUntracked bool
}

// Mutation resultado de aplicar un cambio de stock.
type Mutation struct {
	ItemID           string
	SKU              string
	Name             string
	PreviousQuantity int64
	NewQuantity      int64
	ReorderPoint     int64
	EntryID          string
	ReferenceNumber  string
	Skipped          bool // artículo sin control de stock, no se tocó
}

// CrossedIntoLow true si este cambio llevó el artículo de encima del umbral a en o por debajo.
func (m Mutation) CrossedIntoLow() bool {
	if m.Skipped {
		return false
	}
	return domaininv.CrossedIntoLow(m.PreviousQuantity, m.NewQuantity, m.ReorderPoint)
}

// StockMutator única vía para cambiar QuantityInStock. Bloquea la fila del artículo,
// valida no negatividad, actualiza cantidad (y costo si aplica) y escribe el asiento, todo en la misma transacción.
type StockMutator struct {
	tx        ports.TxRunner
	ledger    *LedgerWriter
	evaluator *LowStockEvaluator
	now       func() time.Time
}

// NewStockMutator construye el mutador. evaluator puede ser nil (sin alertas).
func NewStockMutator(tx ports.TxRunner, ledger *LedgerWriter, evaluator *LowStockEvaluator) *StockMutator {
	if ledger == nil {
		ledger = NewLedgerWriter()
	}
	return &StockMutator{tx: tx, ledger: ledger, evaluator: evaluator, now: time.Now}
}

// Adjust aplica in.Delta en su propia transacción y, tras el commit, evalúa bajo stock.
func (m *StockMutator) Adjust(ctx context.Context, in AdjustInput) (*Mutation, error) {
	if err := validateAdjust(in); err != nil {
		return nil, err
	}
	in.SkipUntracked = false
	now := m.now()

	var mut *Mutation
	err := m.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		res, err := m.ApplyInTx(ctx, repos, in, now)
		if err != nil {
			return err
		}
		mut = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.evaluator != nil {
		m.evaluator.AfterMutation(ctx, *mut)
	}
	return mut, nil
}

// ApplyInTx aplica el cambio usando repos de una transacción abierta por el llamador.
// No evalúa bajo stock: el llamador lo hace después del commit con el Mutation devuelto.
func (m *StockMutator) ApplyInTx(ctx context.Context, repos ports.TxRepos, in AdjustInput, now time.Time) (*Mutation, error) {
	item, err := repos.Items.GetForUpdate(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsTracked {
		if in.SkipUntracked {
			return &Mutation{ItemID: item.ID, SKU: item.SKU, Name: item.Name, Skipped: true,
				PreviousQuantity: item.QuantityInStock, NewQuantity: item.QuantityInStock, ReorderPoint: item.ReorderPoint}, nil
		}
		return nil, domain.Invalid("item_id", "el artículo no controla stock")
	}

	prev := item.QuantityInStock
	if !domaininv.DeltaInRange(in.Delta) || domaininv.AddOverflows(prev, in.Delta) {
		return nil, domain.Invalid("quantity_change", "la cantidad resultante queda fuera de rango")
	}
	next, ok := domaininv.ApplyDelta(prev, in.Delta)
	if !ok {
		return nil, &domain.InsufficientStockError{ItemID: item.ID, SKU: item.SKU, Available: prev, Requested: -in.Delta}
	}

	if in.UnitCost != nil && in.Delta > 0 {
		cost := domaininv.WeightedAverageCost(prev, item.CostPrice, in.Delta, *in.UnitCost)
		if err := repos.Items.UpdateCost(ctx, item.ID, cost); err != nil {
			return nil, err
		}
	}
	if err := repos.Items.UpdateQuantity(ctx, item.ID, next); err != nil {
		return nil, err
	}

	entry := &entity.LedgerEntry{
		ItemID:           item.ID,
		UserID:           in.Actor.UserID,
		ChangeType:       in.ChangeType,
		QuantityChange:   in.Delta,
		PreviousQuantity: prev,
		NewQuantity:      next,
		Reason:           in.Reason,
		ReferenceNumber:  in.ReferenceNumber,
		Notes:            in.Notes,
		CreatedAt:        now,
	}
	entryID, err := m.ledger.Record(ctx, repos.Ledger, entry)
	if err != nil {
		return nil, err
	}
	return &Mutation{
		ItemID:           item.ID,
		SKU:              item.SKU,
		Name:             item.Name,
		PreviousQuantity: prev,
		NewQuantity:      next,
		ReorderPoint:     item.ReorderPoint,
		EntryID:          entryID,
		ReferenceNumber:  in.ReferenceNumber,
	}, nil
}

func validateAdjust(in AdjustInput) error {
	if in.ItemID == "" {
		return domain.Invalid("item_id", "requerido")
	}
	if in.Delta == 0 {
		return domain.Invalid("quantity_change", "debe ser distinto de cero")
	}
	if !domaininv.DeltaInRange(in.Delta) {
		return domain.Invalid("quantity_change", fmt.Sprintf("el valor absoluto no puede superar %d", domaininv.MaxQuantityChange))
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || len(reason) > 255 {
		return domain.Invalid("reason", "requerido (máximo 255 caracteres)")
	}
	if in.Actor.UserID == "" {
		return domain.Invalid("actor", "requerido")
	}
	if in.ChangeType != "" && !entity.ValidChangeType(in.ChangeType) {
		return domain.Invalid("change_type", "tipo de cambio desconocido")
	}
	switch sign := entity.ChangeTypeSign(in.ChangeType); {
	case sign > 0 && in.Delta < 0:
		return domain.Invalid("quantity_change", fmt.Sprintf("debe ser positivo para %s", in.ChangeType))
	case sign < 0 && in.Delta > 0:
		return domain.Invalid("quantity_change", fmt.Sprintf("debe ser negativo para %s", in.ChangeType))
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	return nil
}
