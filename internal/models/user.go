package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// ValidRoles список ролей, которые принимает ядро.
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
	RoleAdmin:      {},
}

// Principal описывает аутентифицированного участника запроса.
// Провайдер идентичности всегда возвращает эту структуру целиком.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// IsAdmin сообщает, является ли участник администратором.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User описывает учётную запись в части, нужной ядру: роль и доступность.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	Role        string    `db:"role" json:"role"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
