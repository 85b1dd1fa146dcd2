package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	ContactPerson string           `json:"contact_person"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	Country       string           `json:"country"`
	PostalCode    string           `json:"postal_code"`
	TaxID         string           `json:"tax_id"`
	PaymentTerms  string           `json:"payment_terms"`
	CreditLimit   *decimal.Decimal `json:"credit_limit,omitempty"`
	Notes         string           `json:"notes"`
}

// UpdateSupplierRequest campos opcionales.
type UpdateSupplierRequest struct {
	Name          *string          `json:"name"`
	ContactPerson *string          `json:"contact_person"`
	Email         *string          `json:"email"`
	Phone         *string          `json:"phone"`
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	State         *string          `json:"state"`
	Country       *string          `json:"country"`
	PostalCode    *string          `json:"postal_code"`
	TaxID         *string          `json:"tax_id"`
	PaymentTerms  *string          `json:"payment_terms"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
	IsActive      *bool            `json:"is_active"`
	Notes         *string          `json:"notes"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	ContactPerson string           `json:"contact_person,omitempty"`
	Email         string           `json:"email,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Address       string           `json:"address,omitempty"`
	City          string           `json:"city,omitempty"`
	State         string           `json:"state,omitempty"`
	Country       string           `json:"country,omitempty"`
	PostalCode    string           `json:"postal_code,omitempty"`
	TaxID         string           `json:"tax_id,omitempty"`
	PaymentTerms  string           `json:"payment_terms,omitempty"`
	CreditLimit   *decimal.Decimal `json:"credit_limit,omitempty"`
	IsActive      bool             `json:"is_active"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Suppliers []SupplierResponse `json:"suppliers"`
	Page      PageResponse       `json:"page"`
}

// SupplierListQuery filtros de GET /api/suppliers.
type SupplierListQuery struct {
	PageRequest
	Search     string `query:"search"`
	ActiveOnly bool   `query:"active_only"`
}

// DependencyReportResponse referencias que bloquean la eliminación.
type DependencyReportResponse struct {
	Kind       string           `json:"kind"`
	ID         string           `json:"id"`
	CanDelete  bool             `json:"can_delete"`
	References map[string]int64 `json:"references"`
}
