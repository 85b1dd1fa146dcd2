// Package memory implementa los puertos de persistencia y de cola en memoria.
// Lo usan los tests de aplicación y HTTP; las transacciones se serializan y se revierten restaurando una copia.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// Store datos en memoria compartidos por todos los repositorios.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	items     map[string]*entity.InventoryItem
	ledger    []*entity.LedgerEntry
	orders    map[string]*entity.Order
	suppliers map[string]*entity.Supplier
	users     map[string]*entity.User

	faults map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:     map[string]*entity.InventoryItem{},
		orders:    map[string]*entity.Order{},
		suppliers: map[string]*entity.Supplier{},
		users:     map[string]*entity.User{},
		faults:    map[string]error{},
	}
}

// FailNext hace que la próxima llamada a op (p. ej. "items.UpdateQuantity") devuelva err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault consume el error inyectado para op. Llamar con s.mu tomado.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Items repositorio de artículos sobre este almacén.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Ledger repositorio del ledger sobre este almacén.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Orders repositorio de pedidos sobre este almacén.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Suppliers repositorio de proveedores sobre este almacén.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Users repositorio de usuarios sobre este almacén.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Repos los repositorios transaccionales agrupados.
func (s *Store) Repos() ports.TxRepos {
	return ports.TxRepos{Items: s.Items(), Ledger: s.Ledger(), Orders: s.Orders(), Suppliers: s.Suppliers()}
}

type snapshot struct {
	items     map[string]*entity.InventoryItem
	ledger    []*entity.LedgerEntry
	orders    map[string]*entity.Order
	suppliers map[string]*entity.Supplier
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		items:     make(map[string]*entity.InventoryItem, len(s.items)),
		ledger:    make([]*entity.LedgerEntry, len(s.ledger)),
		orders:    make(map[string]*entity.Order, len(s.orders)),
		suppliers: make(map[string]*entity.Supplier, len(s.suppliers)),
	}
	for k, v := range s.items {
		snap.items[k] = cloneItem(v)
	}
	copy(snap.ledger, s.ledger)
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.suppliers {
		c := *v
		snap.suppliers[k] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.ledger = snap.ledger
	s.orders = snap.orders
	s.suppliers = snap.suppliers
}

// TxRunner serializa las transacciones y restaura el estado si fn falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre s.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

// Run ejecuta fn con todos los repos; si fn devuelve error el almacén vuelve al estado previo.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.s.snapshot()
	if err := fn(ctx, r.s.Repos()); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

func cloneItem(i *entity.InventoryItem) *entity.InventoryItem {
	if i == nil {
		return nil
	}
	c := *i
	if i.MaximumStockLevel != nil {
		v := *i.MaximumStockLevel
		c.MaximumStockLevel = &v
	}
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}
