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
// GET PROGRESS SUMMARIES QUERY
// Сводки прогресса всех студентов супервайзера в порядке убывания
// riskScore. Кешируется отдельно от дашборда: сводки запрашиваются
// чаще и переживают его инвалидацию.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressSummariesQuery содержит параметры запроса сводок.
type GetProgressSummariesQuery struct {
	// SupervisorID - супервайзер, чьи студенты сворачиваются.
	SupervisorID string

	// SkipCache - игнорировать кеш и пересчитать.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetProgressSummariesQuery) Validate() error {
	if q.SupervisorID == "" {
		return shared.NewDomainError("report", "GetProgressSummaries", shared.ErrInvalidInput, "supervisor ID is required")
	}
	return nil
}

// GetProgressSummariesHandler обрабатывает запросы сводок.
type GetProgressSummariesHandler struct {
	users       user.Repository
	milestones  milestone.Repository
	cache       Cache
	log         *zap.Logger
	cfg         analytics.Config
	concurrency int
	now         func() time.Time
}

// NewGetProgressSummariesHandler создаёт новый обработчик.
func NewGetProgressSummariesHandler(
	users user.Repository,
	milestones milestone.Repository,
	cache Cache,
	log *zap.Logger,
	cfg analytics.Config,
) *GetProgressSummariesHandler {
	return &GetProgressSummariesHandler{
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
func (h *GetProgressSummariesHandler) WithClock(now func() time.Time) *GetProgressSummariesHandler {
	h.now = now
	return h
}

// WithConcurrency ограничивает число одновременных загрузок студентов.
func (h *GetProgressSummariesHandler) WithConcurrency(n int) *GetProgressSummariesHandler {
	if n > 0 {
		h.concurrency = n
	}
	return h
}

// Handle возвращает сводки студентов супервайзера.
func (h *GetProgressSummariesHandler) Handle(ctx context.Context, q GetProgressSummariesQuery) ([]analytics.StudentProgressSummary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := resolveSupervisor(ctx, h.users, q.SupervisorID); err != nil {
		return nil, err
	}

	cacheKey := CacheKeySupervisorSummaries(q.SupervisorID)
	if !q.SkipCache {
		var cached []analytics.StudentProgressSummary
		if cacheGet(ctx, h.cache, h.log, cacheKey, &cached) {
			return cached, nil
		}
	}

	students, err := h.users.GetStudentsBySupervisor(ctx, q.SupervisorID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return []analytics.StudentProgressSummary{}, nil
	}

	snapshots, err := fetchSnapshots(ctx, h.milestones, students, milestone.Filter{}, h.concurrency)
	if err != nil {
		return nil, err
	}

	now := h.now()
	summaries := make([]analytics.StudentProgressSummary, 0, len(snapshots))
	for _, snap := range snapshots {
		summaries = append(summaries, analytics.SummarizeStudent(now, snap.StudentID, snap.StudentName, snap.Milestones, h.cfg))
	}
	analytics.SortSummaries(summaries)

	cacheSet(ctx, h.cache, h.log, cacheKey, summaries, TTLSupervisorSummaries)
	return summaries, nil
}
