package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleGerente    = "gerente"
	RoleVendedor   = "vendedor"
	RoleFinanceiro = "financeiro"
	RoleEstoquista = "estoquista"
)

// IsValidRole informa si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleGerente, RoleVendedor, RoleFinanceiro, RoleEstoquista:
		return true
	}
	return false
}

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Phone        string
	AvatarURL    string
	Role         string
	Status       string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
