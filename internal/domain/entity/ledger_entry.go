package entity

import "time"

// Tipos de cambio registrados en el ledger.
const (
	ChangeTypeAdjustment = "adjustment"
	ChangeTypeIn         = "in"
	ChangeTypeOut        = "out"
	ChangeTypeReturn     = "return"
	ChangeTypePurchase   = "purchase" // recepción de pedido de compra
	ChangeTypeSale       = "sale"     // despacho de pedido de venta
)

// ChangeTypeSign signo que exige el tipo de cambio: 1 entradas, -1 salidas, 0 cualquiera (ajuste).
func ChangeTypeSign(t string) int {
	switch t {
	case ChangeTypeIn, ChangeTypePurchase, ChangeTypeReturn:
		return 1
	case ChangeTypeOut, ChangeTypeSale:
		return -1
	}
	return 0
}

// ValidChangeType indica si t es un tipo de cambio conocido.
func ValidChangeType(t string) bool {
	switch t {
	case ChangeTypeAdjustment, ChangeTypeIn, ChangeTypeOut, ChangeTypeReturn, ChangeTypePurchase, ChangeTypeSale:
		return true
	}
	return false
}

// LedgerEntry asiento inmutable de un cambio de stock.
// Invariante: PreviousQuantity + QuantityChange == NewQuantity.
type LedgerEntry struct {
	ID               string
	ItemID           string
	UserID           string // actor
	ChangeType       string
	QuantityChange   int64
	PreviousQuantity int64
	NewQuantity      int64
	Reason           string
	ReferenceNumber  string // número de pedido, OC, etc.
	Notes            string
	CreatedAt        time.Time
}
