package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/guard"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// SupplierUseCase CRUD de proveedores; la eliminación pasa por el DependencyGuard.
type SupplierUseCase struct {
	repo  repository.SupplierRepository
	guard *guard.DependencyGuard
	now   func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, g *guard.DependencyGuard) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, guard: g, now: time.Now}
}

// Create crea un proveedor activo. El nombre es único.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	now := uc.now()
	sp := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		Email:         strings.TrimSpace(in.Email),
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Country:       in.Country,
		PostalCode:    in.PostalCode,
		TaxID:         in.TaxID,
		PaymentTerms:  in.PaymentTerms,
		CreditLimit:   in.CreditLimit,
		IsActive:      true,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateSupplier(sp); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByName(ctx, sp.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.repo.Create(ctx, sp); err != nil {
		return nil, err
	}
	return ToSupplierResponse(sp), nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	sp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, domain.ErrNotFound
	}
	return ToSupplierResponse(sp), nil
}

// List proveedores filtrados.
func (uc *SupplierUseCase) List(ctx context.Context, q dto.SupplierListQuery) (*dto.SupplierListResponse, error) {
	q.DefaultPage()
	f := repository.SupplierFilter{Search: strings.TrimSpace(q.Search), Limit: q.Limit, Offset: q.Offset}
	if q.ActiveOnly {
		active := true
		f.IsActive = &active
	}
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, sp := range list {
		out = append(out, *ToSupplierResponse(sp))
	}
	return &dto.SupplierListResponse{Suppliers: out, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}}, nil
}

// Update actualiza los campos enviados.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, domain.ErrNotFound
	}
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	str(&sp.Name, in.Name)
	str(&sp.ContactPerson, in.ContactPerson)
	str(&sp.Email, in.Email)
	str(&sp.Phone, in.Phone)
	str(&sp.Address, in.Address)
	str(&sp.City, in.City)
	str(&sp.State, in.State)
	str(&sp.Country, in.Country)
	str(&sp.PostalCode, in.PostalCode)
	str(&sp.TaxID, in.TaxID)
	str(&sp.PaymentTerms, in.PaymentTerms)
	str(&sp.Notes, in.Notes)
	if in.CreditLimit != nil {
		v := *in.CreditLimit
		sp.CreditLimit = &v
	}
	if in.IsActive != nil {
		sp.IsActive = *in.IsActive
	}
	if err := validateSupplier(sp); err != nil {
		return nil, err
	}
	if in.Name != nil {
		existing, err := uc.repo.GetByName(ctx, sp.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != sp.ID {
			return nil, domain.ErrDuplicate
		}
	}
	sp.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return ToSupplierResponse(sp), nil
}

// ToggleStatus activa o desactiva el proveedor.
func (uc *SupplierUseCase) ToggleStatus(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	sp, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, domain.ErrNotFound
	}
	sp.IsActive = !sp.IsActive
	sp.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return ToSupplierResponse(sp), nil
}

// Delete elimina el proveedor si nada lo referencia.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.guard.Delete(ctx, guard.EntityRef{Kind: guard.KindSupplier, ID: id})
}

// Dependencies referencias actuales del proveedor.
func (uc *SupplierUseCase) Dependencies(ctx context.Context, id string) (*dto.DependencyReportResponse, error) {
	r, err := uc.guard.CanDelete(ctx, guard.EntityRef{Kind: guard.KindSupplier, ID: id})
	if err != nil {
		return nil, err
	}
	return &dto.DependencyReportResponse{Kind: r.Kind, ID: r.ID, CanDelete: r.CanDelete, References: r.References}, nil
}

func validateSupplier(sp *entity.Supplier) error {
	if sp.Name == "" || len(sp.Name) > 200 {
		return domain.Invalid("name", "requerido (máximo 200 caracteres)")
	}
	if sp.Email != "" && !strings.Contains(sp.Email, "@") {
		return domain.Invalid("email", "formato inválido")
	}
	if sp.CreditLimit != nil && sp.CreditLimit.IsNegative() {
		return domain.Invalid("credit_limit", "no puede ser negativo")
	}
	return nil
}

// ToSupplierResponse mapea la entidad a DTO.
func ToSupplierResponse(sp *entity.Supplier) *dto.SupplierResponse {
	if sp == nil {
		return nil
	}
	return &dto.SupplierResponse{
		ID:            sp.ID,
		Name:          sp.Name,
		ContactPerson: sp.ContactPerson,
		Email:         sp.Email,
		Phone:         sp.Phone,
		Address:       sp.Address,
		City:          sp.City,
		State:         sp.State,
		Country:       sp.Country,
		PostalCode:    sp.PostalCode,
		TaxID:         sp.TaxID,
		PaymentTerms:  sp.PaymentTerms,
		CreditLimit:   sp.CreditLimit,
		IsActive:      sp.IsActive,
		Notes:         sp.Notes,
		CreatedAt:     sp.CreatedAt,
		UpdatedAt:     sp.UpdatedAt,
	}
}
