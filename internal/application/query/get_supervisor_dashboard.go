package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUPERVISOR DASHBOARD QUERY
// Дашборд супервайзера: агрегаты по всем закреплённым студентам,
// ранжирование рисков, лента активности и ближайшие дедлайны.
// Пайплайны по студентам выполняются конкурентно; свёртка результатов
// не зависит от порядка их завершения.
// ══════════════════════════════════════════════════════════════════════════════

// GetSupervisorDashboardQuery содержит параметры запроса дашборда.
type GetSupervisorDashboardQuery struct {
	// SupervisorID - супервайзер, чей дашборд запрашивается.
	SupervisorID string

	// SkipCache - игнорировать кеш и пересчитать.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetSupervisorDashboardQuery) Validate() error {
	if q.SupervisorID == "" {
		return shared.NewDomainError("report", "GetSupervisorDashboard", shared.ErrInvalidInput, "supervisor ID is required")
	}
	return nil
}

// GetSupervisorDashboardHandler обрабатывает запросы дашборда.
type GetSupervisorDashboardHandler struct {
	users       user.Repository
	milestones  milestone.Repository
	cache       Cache
	log         *zap.Logger
	cfg         analytics.Config
	concurrency int
	now         func() time.Time
}

// NewGetSupervisorDashboardHandler создаёт новый обработчик.
func NewGetSupervisorDashboardHandler(
	users user.Repository,
	milestones milestone.Repository,
	cache Cache,
	log *zap.Logger,
	cfg analytics.Config,
) *GetSupervisorDashboardHandler {
	return &GetSupervisorDashboardHandler{
		users:       users,
		milestones:  milestones,
		cache:       cache,
		log:         log,
		cfg:         cfg.Normalize(),
		concurrency: defaultSnapshotConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *GetSupervisorDashboardHandler) WithClock(now func() time.Time) *GetSupervisorDashboardHandler {
	h.now = now
	return h
}

// WithConcurrency ограничивает число одновременных загрузок студентов.
func (h *GetSupervisorDashboardHandler) WithConcurrency(n int) *GetSupervisorDashboardHandler {
	h.concurrency = n
	if n <= 0 {
		h.concurrency = defaultSnapshotConcurrency
	}
	return h
}

// Handle собирает дашборд супервайзера.
func (h *GetSupervisorDashboardHandler) Handle(ctx context.Context, q GetSupervisorDashboardQuery) (*analytics.SupervisorDashboard, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := resolveSupervisor(ctx, h.users, q.SupervisorID); err != nil {
		return nil, err
	}

	cacheKey := CacheKeySupervisorDashboard(q.SupervisorID)
	if !q.SkipCache {
		var cached analytics.SupervisorDashboard
		if cacheGet(ctx, h.cache, h.log, cacheKey, &cached) {
			return &cached, nil
		}
	}

	students, err := h.users.GetStudentsBySupervisor(ctx, q.SupervisorID)
	if err != nil {
		return nil, err
	}

	// Пустой набор студентов - валидное состояние: нулевые метрики без
	// обращения к хранилищу вех.
	if len(students) == 0 {
		dashboard := analytics.ComposeDashboard(h.now(), q.SupervisorID, nil, h.cfg)
		return &dashboard, nil
	}

	snapshots, err := fetchSnapshots(ctx, h.milestones, students, milestone.Filter{}, h.concurrency)
	if err != nil {
		return nil, err
	}

	dashboard := analytics.ComposeDashboard(h.now(), q.SupervisorID, snapshots, h.cfg)

	cacheSet(ctx, h.cache, h.log, cacheKey, dashboard, TTLSupervisorDashboard)
	return &dashboard, nil
}
