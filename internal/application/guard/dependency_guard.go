// Package guard impide eliminar proveedores y artículos que siguen referenciados.
package guard

import (
	"context"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

// Tipos de entidad protegidos.
const (
	KindSupplier = "supplier"
	KindItem     = "item"
)

// Nombres de las referencias en el reporte.
const (
	RefItems       = "artículos"
	RefOrders      = "pedidos"
	RefOrderItems  = "líneas de pedido"
	RefLedgerItems = "asientos de stock"
)

// EntityRef entidad a eliminar.
type EntityRef struct {
	Kind string
	ID   string
}

// DependencyReport conteo de referencias; CanDelete si todas son cero.
type DependencyReport struct {
	Kind       string
	ID         string
	References map[string]int64
	CanDelete  bool
}

// DependencyGuard comprueba y ejecuta eliminaciones protegidas.
type DependencyGuard struct {
	tx    ports.TxRunner
	repos ports.TxRepos // lecturas fuera de transacción
}

// NewDependencyGuard construye el guard. repos se usa para CanDelete (solo lectura).
func NewDependencyGuard(tx ports.TxRunner, repos ports.TxRepos) *DependencyGuard {
	return &DependencyGuard{tx: tx, repos: repos}
}

// CanDelete reporta las referencias actuales de ref.
func (g *DependencyGuard) CanDelete(ctx context.Context, ref EntityRef) (*DependencyReport, error) {
	if err := g.exists(ctx, g.repos, ref, false); err != nil {
		return nil, err
	}
	return g.count(ctx, g.repos, ref)
}

// Delete bloquea la entidad, cuenta referencias y la elimina solo si no hay ninguna.
// Con referencias devuelve *domain.ConflictError con los conteos.
func (g *DependencyGuard) Delete(ctx context.Context, ref EntityRef) error {
	return g.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		if err := g.exists(ctx, repos, ref, true); err != nil {
			return err
		}
		report, err := g.count(ctx, repos, ref)
		if err != nil {
			return err
		}
		if !report.CanDelete {
			return &domain.ConflictError{Resource: resourceName(ref.Kind), ID: ref.ID, References: report.References}
		}
		switch ref.Kind {
		case KindSupplier:
			return repos.Suppliers.Delete(ctx, ref.ID)
		default:
			return repos.Items.Delete(ctx, ref.ID)
		}
	})
}

func (g *DependencyGuard) exists(ctx context.Context, repos ports.TxRepos, ref EntityRef, lock bool) error {
	switch ref.Kind {
	case KindSupplier:
		get := repos.Suppliers.GetByID
		if lock {
			get = repos.Suppliers.GetForUpdate
		}
		sp, err := get(ctx, ref.ID)
		if err != nil {
			return err
		}
		if sp == nil {
			return domain.ErrNotFound
		}
	case KindItem:
		get := repos.Items.GetByID
		if lock {
			get = repos.Items.GetForUpdate
		}
		it, err := get(ctx, ref.ID)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}
	default:
		return domain.Invalid("kind", "entidad no protegida")
	}
	return nil
}

func (g *DependencyGuard) count(ctx context.Context, repos ports.TxRepos, ref EntityRef) (*DependencyReport, error) {
	refs := map[string]int64{}
	switch ref.Kind {
	case KindSupplier:
		n, err := repos.Items.CountBySupplier(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		refs[RefItems] = n
		if n, err = repos.Orders.CountNonCancelledBySupplier(ctx, ref.ID); err != nil {
			return nil, err
		}
		refs[RefOrders] = n
	case KindItem:
		n, err := repos.Orders.CountItemReferences(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		refs[RefOrderItems] = n
		if n, err = repos.Ledger.CountByItem(ctx, ref.ID); err != nil {
			return nil, err
		}
		refs[RefLedgerItems] = n
	}
	report := &DependencyReport{Kind: ref.Kind, ID: ref.ID, References: refs, CanDelete: true}
	for _, n := range refs {
		if n > 0 {
			report.CanDelete = false
		}
	}
	return report, nil
}

func resourceName(kind string) string {
	if kind == KindSupplier {
		return "proveedor"
	}
	return "artículo"
}
