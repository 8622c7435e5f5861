package query

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT MILESTONE OVERVIEW QUERY
// Сводка вех одного студента для супервайзера. Запрос студента вне
// закреплённого набора - ошибка доступа, а не "не найдено": супервайзер
// не должен по ответу отличать чужого студента от несуществующего.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentOverviewQuery содержит параметры запроса сводки.
type GetStudentOverviewQuery struct {
	// SupervisorID - супервайзер, выполняющий запрос.
	SupervisorID string

	// StudentID - студент, чья сводка запрашивается.
	StudentID string
}

// Validate проверяет корректность параметров.
func (q *GetStudentOverviewQuery) Validate() error {
	if q.SupervisorID == "" || q.StudentID == "" {
		return shared.NewDomainError("analytics", "GetStudentOverview", shared.ErrInvalidInput, "supervisor ID and student ID are required")
	}
	return nil
}

// StudentMilestoneOverview - сводка вех студента.
type StudentMilestoneOverview struct {
	// Summary - свёрнутая сводка прогресса.
	Summary analytics.StudentProgressSummary `json:"summary"`

	// Milestones - снимок вех студента в порядке дедлайнов.
	Milestones []*milestone.Milestone `json:"milestones"`
}

// GetStudentOverviewHandler обрабатывает запросы сводки по студенту.
type GetStudentOverviewHandler struct {
	users      user.Repository
	milestones milestone.Repository
	cache      Cache
	log        *zap.Logger
	cfg        analytics.Config
	now        func() time.Time
}

// NewGetStudentOverviewHandler создаёт новый обработчик.
func NewGetStudentOverviewHandler(
	users user.Repository,
	milestones milestone.Repository,
	cache Cache,
	log *zap.Logger,
	cfg analytics.Config,
) *GetStudentOverviewHandler {
	return &GetStudentOverviewHandler{
		users:      users,
		milestones: milestones,
		cache:      cache,
		log:        log,
		cfg:        cfg.Normalize(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *GetStudentOverviewHandler) WithClock(now func() time.Time) *GetStudentOverviewHandler {
	h.now = now
	return h
}

// Handle возвращает сводку вех студента.
func (h *GetStudentOverviewHandler) Handle(ctx context.Context, q GetStudentOverviewQuery) (*StudentMilestoneOverview, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := resolveSupervisor(ctx, h.users, q.SupervisorID); err != nil {
		return nil, err
	}

	students, err := h.users.GetStudentsBySupervisor(ctx, q.SupervisorID)
	if err != nil {
		return nil, err
	}

	var target *user.User
	for _, st := range students {
		if st.ID == q.StudentID {
			target = st
			break
		}
	}
	if target == nil {
		return nil, shared.ErrStudentNotOwned
	}

	cacheKey := CacheKeyStudentOverview(q.StudentID)
	var cached StudentMilestoneOverview
	if cacheGet(ctx, h.cache, h.log, cacheKey, &cached) {
		return &cached, nil
	}

	ms, err := h.milestones.FindByStudent(ctx, q.StudentID, milestone.Filter{})
	if err != nil {
		return nil, err
	}

	overview := StudentMilestoneOverview{
		Summary:    analytics.SummarizeStudent(h.now(), target.ID, target.DisplayName, ms, h.cfg),
		Milestones: sortByDueDate(ms),
	}

	cacheSet(ctx, h.cache, h.log, cacheKey, overview, TTLStudentOverview)
	return &overview, nil
}

// sortByDueDate возвращает копию снимка в порядке дедлайнов.
func sortByDueDate(ms []*milestone.Milestone) []*milestone.Milestone {
	sorted := make([]*milestone.Milestone, len(ms))
	copy(sorted, ms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})
	return sorted
}
