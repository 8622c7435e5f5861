package user

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения пользователей.
type Repository interface {
	// GetByID возвращает пользователя по идентификатору.
	// Возвращает shared.ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetStudentsBySupervisor возвращает студентов, закреплённых за
	// супервайзером. Закрепление выводится из владения вехами: прямой
	// таблицы supervision в хранилище нет.
	GetStudentsBySupervisor(ctx context.Context, supervisorID string) ([]*User, error)

	// ListSupervisors возвращает всех супервайзеров. Используется
	// фоновыми задачами прогрева кеша и обновления метрик.
	ListSupervisors(ctx context.Context) ([]*User, error)
}
