package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT ANALYTICS QUERY
// Агрегатор аналитики: собирает скорость, тренды, критический путь и
// сравнение с шаблоном в одну сводку по студенту. Четыре подсчёта
// независимы и выполняются конкурентно над одним снимком вех.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentAnalyticsQuery содержит параметры запроса аналитики.
type GetStudentAnalyticsQuery struct {
	// StudentID - студент, по которому собирается сводка.
	StudentID string

	// TemplateID - явный шаблон для сравнения (опционально).
	TemplateID string

	// SkipCache - игнорировать кеш и пересчитать.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetStudentAnalyticsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("analytics", "GetStudentAnalytics", shared.ErrInvalidInput, "student ID is required")
	}
	return nil
}

// GetStudentAnalyticsHandler обрабатывает запросы аналитики студента.
type GetStudentAnalyticsHandler struct {
	milestones   milestone.Repository
	comparator   *CompareProgressHandler
	cache        Cache
	log          *zap.Logger
	cfg          analytics.Config
	velocity     *analytics.VelocityCalculator
	trends       *analytics.TrendAnalyzer
	criticalPath *analytics.CriticalPathAnalyzer
	now          func() time.Time
}

// NewGetStudentAnalyticsHandler создаёт новый обработчик.
// cache может быть nil: сводка тогда всегда считается напрямую.
func NewGetStudentAnalyticsHandler(
	milestones milestone.Repository,
	templates milestone.TemplateRepository,
	cache Cache,
	log *zap.Logger,
	cfg analytics.Config,
) *GetStudentAnalyticsHandler {
	cfg = cfg.Normalize()
	return &GetStudentAnalyticsHandler{
		milestones:   milestones,
		comparator:   NewCompareProgressHandler(milestones, templates, cfg),
		cache:        cache,
		log:          log,
		cfg:          cfg,
		velocity:     analytics.NewVelocityCalculator(cfg),
		trends:       analytics.NewTrendAnalyzer(cfg),
		criticalPath: analytics.NewCriticalPathAnalyzer(cfg),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *GetStudentAnalyticsHandler) WithClock(now func() time.Time) *GetStudentAnalyticsHandler {
	h.now = now
	h.comparator.WithClock(now)
	return h
}

// Handle собирает сводку аналитики.
func (h *GetStudentAnalyticsHandler) Handle(ctx context.Context, q GetStudentAnalyticsQuery) (*analytics.AnalyticsMetrics, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	cacheKey := CacheKeyStudentAnalytics(q.StudentID)
	if !q.SkipCache {
		var cached analytics.AnalyticsMetrics
		if cacheGet(ctx, h.cache, h.log, cacheKey, &cached) {
			return &cached, nil
		}
	}

	ms, err := h.milestones.FindByStudent(ctx, q.StudentID, milestone.Filter{})
	if err != nil {
		return nil, err
	}

	now := h.now()

	var (
		wg           sync.WaitGroup
		velocity     analytics.CompletionVelocityMetrics
		trends       analytics.TrendAnalysis
		criticalPath analytics.CriticalPathAnalysis
		comparison   *analytics.ProgressComparison
	)

	// Подсчёты не изменяют снимок и не зависят друг от друга.
	wg.Add(4)
	go func() {
		defer wg.Done()
		velocity = h.velocity.Calculate(now, ms)
	}()
	go func() {
		defer wg.Done()
		trends = h.trends.Analyze(now, ms)
	}()
	go func() {
		defer wg.Done()
		criticalPath = h.criticalPath.Analyze(now, ms, nil)
	}()
	go func() {
		defer wg.Done()
		comparison = h.compareOptional(ctx, q)
	}()
	wg.Wait()

	metrics := analytics.ComposeMetrics(q.StudentID, now, ms, velocity, trends, criticalPath, comparison, h.cfg)

	cacheSet(ctx, h.cache, h.log, cacheKey, metrics, TTLStudentAnalytics)
	return &metrics, nil
}

// compareOptional выполняет сравнение с шаблоном как необязательный
// контекст: любая ошибка понижается до отсутствия сравнения.
func (h *GetStudentAnalyticsHandler) compareOptional(ctx context.Context, q GetStudentAnalyticsQuery) *analytics.ProgressComparison {
	comparison, err := h.comparator.Handle(ctx, CompareProgressQuery{
		StudentID:  q.StudentID,
		TemplateID: q.TemplateID,
	})
	if err != nil {
		if !shared.IsNoSuitableTemplate(err) {
			h.log.Warn("template comparison unavailable",
				zap.String("student_id", q.StudentID),
				zap.Error(err),
			)
		}
		return nil
	}
	return comparison
}
