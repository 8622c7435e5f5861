// Package user содержит минимальную модель пользователей ProjectHub.
// Движку аналитики нужны только идентификатор, имя и роль; управление
// учётными записями делает остальная платформа.
package user

import (
	"strings"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя.
type Role string

const (
	// RoleStudent - студент, владелец вех.
	RoleStudent Role = "student"
	// RoleSupervisor - супервайзер, наблюдающий за студентами.
	RoleSupervisor Role = "supervisor"
)

// IsValid проверяет, что роль корректна.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleSupervisor
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// User представляет пользователя платформы.
type User struct {
	// ID - идентификатор пользователя (opaque).
	ID string

	// DisplayName - отображаемое имя.
	DisplayName string

	// Role - роль пользователя.
	Role Role
}

// IsSupervisor возвращает true для супервайзеров.
func (u *User) IsSupervisor() bool {
	return u.Role == RoleSupervisor
}

// Validate проверяет корректность пользователя.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return shared.NewDomainError("user", "Validate", shared.ErrInvalidID, "user ID is empty")
	}
	if !u.Role.IsValid() {
		return shared.NewDomainError("user", "Validate", shared.ErrInvalidInput, "invalid role")
	}
	return nil
}
