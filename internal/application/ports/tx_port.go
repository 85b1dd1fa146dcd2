package ports

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Items     repository.ItemRepository
	Ledger    repository.LedgerRepository
	Orders    repository.OrderRepository
	Suppliers repository.SupplierRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn devuelve nil, Rollback en otro caso.
// Los fallos de bloqueo (lock timeout, deadlock, serialización) se devuelven como *domain.TransientError.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
