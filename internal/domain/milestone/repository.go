package milestone

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем вех.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Filter ограничивает выборку вех.
// Нулевые значения означают "без ограничения".
type Filter struct {
	// Statuses - оставить только вехи с этими статусами.
	Statuses []Status

	// Priorities - оставить только вехи с этими приоритетами.
	Priorities []Priority

	// DueAfter / DueBefore - ограничение по дедлайну.
	DueAfter  time.Time
	DueBefore time.Time
}

// Matches проверяет, проходит ли веха фильтр.
func (f Filter) Matches(m *Milestone) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, m.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, m.Priority) {
		return false
	}
	if !f.DueAfter.IsZero() && m.DueDate.Before(f.DueAfter) {
		return false
	}
	if !f.DueBefore.IsZero() && m.DueDate.After(f.DueBefore) {
		return false
	}
	return true
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(list []Priority, p Priority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

// Repository определяет операции чтения вех.
// Движок аналитики только читает вехи; запись делает остальная платформа.
type Repository interface {
	// FindByStudent возвращает все вехи студента, проходящие фильтр.
	FindByStudent(ctx context.Context, studentID string, f Filter) ([]*Milestone, error)

	// FindBySupervisor возвращает вехи всех студентов, закреплённых за
	// супервайзером (через владение вехами).
	FindBySupervisor(ctx context.Context, supervisorID string, f Filter) ([]*Milestone, error)
}

// TemplateRepository определяет операции чтения шаблонов.
type TemplateRepository interface {
	// FindByID возвращает шаблон по идентификатору.
	// Возвращает shared.ErrTemplateNotFound, если шаблон не найден.
	FindByID(ctx context.Context, id string) (*Template, error)

	// FindMostUsedActive возвращает самый используемый активный шаблон.
	// Возвращает shared.ErrTemplateNotFound, если активных шаблонов нет.
	FindMostUsedActive(ctx context.Context) (*Template, error)
}
