package query

import (
	"context"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPARE PROGRESS QUERY
// Сравнивает фактический прогресс студента с ожидаемой кривой шаблона.
// При прямом вызове отсутствие шаблона - ошибка ErrNoActiveTemplate;
// агрегатор аналитики глотает её и отдаёт сводку без сравнения.
// ══════════════════════════════════════════════════════════════════════════════

// CompareProgressQuery содержит параметры сравнения.
type CompareProgressQuery struct {
	// StudentID - студент, чей прогресс сравнивается.
	StudentID string

	// TemplateID - явный шаблон. Пустое значение означает fallback на
	// самый используемый активный шаблон.
	TemplateID string
}

// Validate проверяет корректность параметров.
func (q *CompareProgressQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("analytics", "CompareProgress", shared.ErrInvalidInput, "student ID is required")
	}
	return nil
}

// CompareProgressHandler обрабатывает запросы сравнения с шаблоном.
type CompareProgressHandler struct {
	milestones milestone.Repository
	templates  milestone.TemplateRepository
	comparator *analytics.TemplateComparator
	now        func() time.Time
}

// NewCompareProgressHandler создаёт новый обработчик.
func NewCompareProgressHandler(
	milestones milestone.Repository,
	templates milestone.TemplateRepository,
	cfg analytics.Config,
) *CompareProgressHandler {
	return &CompareProgressHandler{
		milestones: milestones,
		templates:  templates,
		comparator: analytics.NewTemplateComparator(cfg),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *CompareProgressHandler) WithClock(now func() time.Time) *CompareProgressHandler {
	h.now = now
	return h
}

// Handle выполняет сравнение.
func (h *CompareProgressHandler) Handle(ctx context.Context, q CompareProgressQuery) (*analytics.ProgressComparison, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := h.resolveTemplate(ctx, q.TemplateID)
	if err != nil {
		return nil, err
	}

	ms, err := h.milestones.FindByStudent(ctx, q.StudentID, milestone.Filter{})
	if err != nil {
		return nil, err
	}

	comparison := h.comparator.Compare(h.now(), ms, tmpl)
	return &comparison, nil
}

// resolveTemplate выбирает шаблон: явный ID либо самый используемый
// активный. Отсутствие fallback-шаблона - ErrNoActiveTemplate.
func (h *CompareProgressHandler) resolveTemplate(ctx context.Context, templateID string) (*milestone.Template, error) {
	if templateID != "" {
		return h.templates.FindByID(ctx, templateID)
	}

	tmpl, err := h.templates.FindMostUsedActive(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrNoActiveTemplate
		}
		return nil, err
	}
	return tmpl, nil
}
