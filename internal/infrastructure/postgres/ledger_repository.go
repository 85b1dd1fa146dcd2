package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, item_id, user_id, change_type, quantity_change, previous_quantity, new_quantity,
	reason, reference_number, notes, created_at`

// LedgerRepo asientos de stock (inventory_transactions). Solo inserción.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create inserta un asiento.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO inventory_transactions (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ItemID, nullIfEmpty(e.UserID), e.ChangeType, e.QuantityChange, e.PreviousQuantity, e.NewQuantity,
		e.Reason, e.ReferenceNumber, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return wrap("insert ledger entry", err)
	}
	return nil
}

// ListByItem asientos del artículo, más recientes primero.
func (r *LedgerRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if !validID(itemID) {
		return nil, nil
	}
	query := `SELECT ` + ledgerColumns + ` FROM inventory_transactions
		WHERE item_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2 OFFSET $3`
	return r.query(ctx, "list ledger", query, itemID, limit, offset)
}

// ListAllByItem todos los asientos en orden de inserción.
func (r *LedgerRepo) ListAllByItem(ctx context.Context, itemID string) ([]*entity.LedgerEntry, error) {
	if !validID(itemID) {
		return nil, nil
	}
	query := `SELECT ` + ledgerColumns + ` FROM inventory_transactions WHERE item_id = $1 ORDER BY seq`
	return r.query(ctx, "list ledger chain", query, itemID)
}

// CountByItem asientos del artículo.
func (r *LedgerRepo) CountByItem(ctx context.Context, itemID string) (int64, error) {
	if !validID(itemID) {
		return 0, nil
	}
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_transactions WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, wrap("count ledger", err)
	}
	return n, nil
}

// ListByPeriod asientos de todos los artículos creados en [from, to).
func (r *LedgerRepo) ListByPeriod(ctx context.Context, from, to time.Time, limit int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM inventory_transactions
		WHERE created_at >= $1 AND created_at < $2 ORDER BY seq LIMIT $3`
	return r.query(ctx, "list ledger by period", query, from, to, limit)
}

func (r *LedgerRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var userID *string
		if err := rows.Scan(&e.ID, &e.ItemID, &userID, &e.ChangeType, &e.QuantityChange, &e.PreviousQuantity,
			&e.NewQuantity, &e.Reason, &e.ReferenceNumber, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.UserID = derefString(userID)
		list = append(list, &e)
	}
	return list, rows.Err()
}
