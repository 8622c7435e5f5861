// Package milestone содержит доменную модель вех (milestones) ProjectHub.
// Веха - это единица обязательной работы студента с дедлайном и приоритетом.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package milestone

import (
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус вехи.
type Status string

const (
	// StatusNotStarted - работа ещё не начата.
	StatusNotStarted Status = "NOT_STARTED"
	// StatusInProgress - работа в процессе.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted - веха выполнена.
	StatusCompleted Status = "COMPLETED"
	// StatusBlocked - работа заблокирована внешней причиной.
	StatusBlocked Status = "BLOCKED"
	// StatusCancelled - веха отменена и не учитывается в прогрессе.
	StatusCancelled Status = "CANCELLED"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true, если веха больше не требует работы.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority определяет приоритет вехи.
type Priority string

const (
	// PriorityLow - низкий приоритет.
	PriorityLow Priority = "LOW"
	// PriorityMedium - средний приоритет.
	PriorityMedium Priority = "MEDIUM"
	// PriorityHigh - высокий приоритет.
	PriorityHigh Priority = "HIGH"
	// PriorityCritical - критический приоритет.
	PriorityCritical Priority = "CRITICAL"
)

// IsValid проверяет, что приоритет корректен.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// IsElevated возвращает true для HIGH и CRITICAL приоритетов.
func (p Priority) IsElevated() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// AllPriorities возвращает приоритеты в порядке возрастания.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Note представляет заметку к вехе.
// Движок аналитики использует заметки только как прокси документированности.
type Note struct {
	// ID - идентификатор заметки.
	ID string

	// Content - текст заметки.
	Content string

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// Milestone представляет одну веху студента.
// Движок аналитики читает вехи как снимок на момент запроса и никогда
// не изменяет их.
type Milestone struct {
	// ID - идентификатор вехи (opaque).
	ID string

	// StudentID - идентификатор студента-владельца.
	StudentID string

	// ProjectID - идентификатор проекта (опционально).
	ProjectID string

	// Title - название вехи.
	Title string

	// Description - описание.
	Description string

	// Status - текущий статус.
	Status Status

	// Priority - приоритет.
	Priority Priority

	// DueDate - дедлайн (календарная дата).
	DueDate time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time

	// CompletedAt - время выполнения. Не nil тогда и только тогда,
	// когда Status = COMPLETED.
	CompletedAt *time.Time

	// EstimatedHours - оценка трудозатрат в часах.
	EstimatedHours float64

	// ActualHours - фактические трудозатраты в часах.
	ActualHours float64

	// BlockingReason - причина блокировки (заполнена при Status = BLOCKED).
	BlockingReason string

	// Notes - заметки к вехе.
	Notes []Note
}

// IsOverdue возвращает true, если дедлайн вехи прошёл, а работа не закрыта.
// Для COMPLETED и CANCELLED вех всегда false независимо от дедлайна.
func (m *Milestone) IsOverdue(now time.Time) bool {
	if m.Status.IsTerminal() {
		return false
	}
	return m.DueDate.Before(now)
}

// IsCompleted возвращает true для выполненных вех.
func (m *Milestone) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// IsBlocked возвращает true для заблокированных вех.
func (m *Milestone) IsBlocked() bool {
	return m.Status == StatusBlocked
}

// CompletedWithin возвращает true, если веха выполнена внутри окна [from, to].
func (m *Milestone) CompletedWithin(from, to time.Time) bool {
	if m.Status != StatusCompleted || m.CompletedAt == nil {
		return false
	}
	return !m.CompletedAt.Before(from) && !m.CompletedAt.After(to)
}

// DaysToComplete возвращает длительность выполнения в днях (дробную).
// Возвращает 0 для невыполненных вех.
func (m *Milestone) DaysToComplete() float64 {
	if m.Status != StatusCompleted || m.CompletedAt == nil {
		return 0
	}
	return m.CompletedAt.Sub(m.CreatedAt).Hours() / 24
}

// Validate проверяет инварианты вехи.
func (m *Milestone) Validate() error {
	if m.ID == "" {
		return shared.NewDomainError("milestone", "Validate", shared.ErrInvalidID, "milestone ID is empty")
	}
	if m.StudentID == "" {
		return shared.NewDomainError("milestone", "Validate", shared.ErrInvalidID, "student ID is empty")
	}
	if !m.Status.IsValid() {
		return shared.NewDomainError("milestone", "Validate", shared.ErrInvalidInput, "invalid status")
	}
	if !m.Priority.IsValid() {
		return shared.NewDomainError("milestone", "Validate", shared.ErrInvalidInput, "invalid priority")
	}
	if m.EstimatedHours < 0 || m.ActualHours < 0 {
		return shared.NewDomainError("milestone", "Validate", shared.ErrNegativeValue, "hours cannot be negative")
	}
	// CompletedAt заполнен тогда и только тогда, когда веха выполнена.
	if (m.Status == StatusCompleted) != (m.CompletedAt != nil) {
		return shared.NewDomainError("milestone", "Validate", shared.ErrInvalidState, "completedAt must be set iff status is COMPLETED")
	}
	return nil
}
