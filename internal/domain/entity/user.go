package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// RoleLevel ordinal del rol (admin 3 > manager 2 > staff 1). 0 si es desconocido.
func RoleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleStaff:
		return 1
	}
	return 0
}

// ValidRole indica si role es un rol conocido.
func ValidRole(role string) bool { return RoleLevel(role) > 0 }

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         string // admin, manager, staff
	IsActive     bool
	IsVerified   bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identidad verificada que ejecuta una operación del núcleo.
// La autorización se resuelve antes (middleware); el núcleo solo la registra.
type Actor struct {
	UserID string
	Role   string
}
