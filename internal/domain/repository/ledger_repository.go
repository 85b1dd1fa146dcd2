package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// LedgerRepository puerto de persistencia del ledger de stock (solo inserción).
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByItem más recientes primero.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error)
	// ListAllByItem en orden cronológico (verificación de la cadena).
	ListAllByItem(ctx context.Context, itemID string) ([]*entity.LedgerEntry, error)
	CountByItem(ctx context.Context, itemID string) (int64, error)
	// ListByPeriod asientos con created_at en [from, to), en orden de inserción.
	ListByPeriod(ctx context.Context, from, to time.Time, limit int) ([]*entity.LedgerEntry, error)
}
