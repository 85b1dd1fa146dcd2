package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
	cost int
	now  func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithBcryptCost cambia el costo de bcrypt (los tests usan bcrypt.MinCost).
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.cost = cost
	return uc
}

// Create crea un usuario: hashea password con bcrypt. Rol por defecto staff.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	role := in.Role
	if role == "" {
		role = entity.RoleStaff
	}
	switch {
	case !strings.Contains(email, "@"):
		return nil, domain.Invalid("email", "formato inválido")
	case len(username) < 3 || len(username) > 50:
		return nil, domain.Invalid("username", "entre 3 y 50 caracteres")
	case len(in.Password) < 8:
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	case !entity.ValidRole(role):
		return nil, domain.Invalid("role", "debe ser admin, manager o staff")
	}
	if existing, err := uc.repo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if existing, err := uc.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// List usuarios filtrados.
func (uc *UserUseCase) List(ctx context.Context, q dto.UserListQuery) (*dto.UserListResponse, error) {
	q.DefaultPage()
	if q.Role != "" && !entity.ValidRole(q.Role) {
		return nil, domain.Invalid("role", "debe ser admin, manager o staff")
	}
	f := repository.UserFilter{Search: strings.TrimSpace(q.Search), Role: q.Role, Limit: q.Limit, Offset: q.Offset}
	if q.ActiveOnly {
		active := true
		f.IsActive = &active
	}
	list, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *ToUserResponse(u))
	}
	return &dto.UserListResponse{Users: out, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}}, nil
}

// Update modifica datos y rol. Un administrador no puede quitarse su propio rol ni desactivarse.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			return nil, domain.Invalid("email", "formato inválido")
		}
		user.Email = email
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if len(username) < 3 || len(username) > 50 {
			return nil, domain.Invalid("username", "entre 3 y 50 caracteres")
		}
		user.Username = username
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.Invalid("role", "debe ser admin, manager o staff")
		}
		if id == actor.UserID && *in.Role != user.Role {
			return nil, domain.Invalid("role", "no puede cambiar su propio rol")
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		if id == actor.UserID && !*in.IsActive {
			return nil, domain.Invalid("is_active", "no puede desactivar su propia cuenta")
		}
		user.IsActive = *in.IsActive
	}
	if in.IsVerified != nil {
		user.IsVerified = *in.IsVerified
	}
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Nombres de las referencias que impiden eliminar un usuario.
const (
	UserRefLedger = "asientos de stock"
	UserRefOrders = "pedidos"
)

// Delete elimina un usuario distinto del actor. Si registró asientos de stock o pedidos
// devuelve *domain.ConflictError; esos usuarios solo se desactivan.
func (uc *UserUseCase) Delete(ctx context.Context, id string, actor entity.Actor) error {
	if id == actor.UserID {
		return domain.Invalid("id", "no puede eliminar su propia cuenta")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	ledger, orders, err := uc.repo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if ledger > 0 || orders > 0 {
		return &domain.ConflictError{
			Resource:   "usuario",
			ID:         id,
			References: map[string]int64{UserRefLedger: ledger, UserRefOrders: orders},
		}
	}
	return uc.repo.Delete(ctx, id)
}

// ToggleStatus activa o desactiva a otro usuario.
func (uc *UserUseCase) ToggleStatus(ctx context.Context, id string, actor entity.Actor) (*dto.UserResponse, error) {
	if id == actor.UserID {
		return nil, domain.Invalid("id", "no puede cambiar el estado de su propia cuenta")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	user.IsActive = !user.IsActive
	user.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ChangePassword el propio usuario debe confirmar su contraseña actual; un admin puede cambiar la de otro sin ella.
func (uc *UserUseCase) ChangePassword(ctx context.Context, id string, in dto.ChangePasswordRequest, actor entity.Actor) error {
	self := id == actor.UserID
	if !self && actor.Role != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	if len(in.NewPassword) < 8 {
		return domain.Invalid("new_password", "mínimo 8 caracteres")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if self {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return domain.Invalid("current_password", "incorrecta")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), uc.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = uc.now()
	return uc.repo.Update(ctx, user)
}

// ToUserResponse mapea la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
