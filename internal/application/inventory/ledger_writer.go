package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// LedgerWriter agrega asientos inmutables al ledger de stock.
// Solo rechaza entradas mal formadas; escribe con el repo recibido para compartir la transacción del llamador.
type LedgerWriter struct {
	now func() time.Time
}

// NewLedgerWriter construye el escritor.
func NewLedgerWriter() *LedgerWriter {
	return &LedgerWriter{now: time.Now}
}

// Record valida y persiste entry. Completa ID y CreatedAt si vienen vacíos y devuelve el ID del asiento.
func (w *LedgerWriter) Record(ctx context.Context, repo repository.LedgerRepository, entry *entity.LedgerEntry) (string, error) {
	if err := validateEntry(entry); err != nil {
		return "", err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = w.now()
	}
	if err := repo.Create(ctx, entry); err != nil {
		return "", fmt.Errorf("registrar asiento: %w", err)
	}
	return entry.ID, nil
}

func validateEntry(e *entity.LedgerEntry) error {
	switch {
	case e == nil:
		return domain.Invalid("entry", "asiento vacío")
	case e.ItemID == "":
		return domain.Invalid("item_id", "requerido")
	case e.UserID == "":
		return domain.Invalid("user_id", "se requiere el actor")
	case e.QuantityChange == 0:
		return domain.Invalid("quantity_change", "debe ser distinto de cero")
	case e.PreviousQuantity+e.QuantityChange != e.NewQuantity:
		return domain.Invalid("new_quantity", "no coincide con cantidad previa más el cambio")
	case e.NewQuantity < 0:
		return domain.Invalid("new_quantity", "no puede ser negativa")
	}
	if e.ChangeType == "" {
		e.ChangeType = entity.ChangeTypeAdjustment
	}
	if !entity.ValidChangeType(e.ChangeType) {
		return domain.Invalid("change_type", "tipo de cambio desconocido")
	}
	if sign := entity.ChangeTypeSign(e.ChangeType); sign != 0 && (e.QuantityChange > 0) != (sign > 0) {
		return domain.Invalid("quantity_change", "el signo no corresponde al tipo de cambio")
	}
	return nil
}
