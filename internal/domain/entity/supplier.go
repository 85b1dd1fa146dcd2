package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier representa un proveedor.
type Supplier struct {
	ID            string
	Name          string // único
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	City          string
	State         string
	Country       string
	PostalCode    string
	TaxID         string
	PaymentTerms  string // "Net 30", "COD", ...
	CreditLimit   *decimal.Decimal
	IsActive      bool
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
