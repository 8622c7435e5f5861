package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

func TestGetStudentAnalytics_Validation(t *testing.T) {
	h := NewGetStudentAnalyticsHandler(newFakeMilestoneRepo(), newFakeTemplateRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetStudentAnalyticsQuery{})
	assert.True(t, shared.IsValidation(err))
}

func TestGetStudentAnalytics_ComposesAllSections(t *testing.T) {
	now := testDay(2026, 6, 1)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		doneMilestone("m1", "s1", testDay(2026, 5, 20)),
		pendingMilestone("m2", "s1", milestone.StatusBlocked, testDay(2026, 5, 1)),
		pendingMilestone("m3", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	templates := newFakeTemplateRepo()
	templates.mostUsed = capstoneTemplate("tpl-1", 4)

	h := NewGetStudentAnalyticsHandler(milestones, templates, nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	m, err := h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1"})
	assert.NoError(t, err)

	assert.Equal(t, "s1", m.StudentID)
	assert.Equal(t, now, m.GeneratedAt)
	assert.Equal(t, 3, m.Trends.Completion.Total)
	assert.Equal(t, 1, m.CriticalPath.RiskFactors.BlockedCount)
	assert.Equal(t, 1, m.CriticalPath.RiskFactors.OverdueCount)
	if assert.NotNil(t, m.Comparison) {
		assert.Equal(t, "tpl-1", m.Comparison.TemplateID)
	}
	assert.Greater(t, m.PerformanceScore, 0.0)
}

func TestGetStudentAnalytics_MissingTemplateDowngradesComparison(t *testing.T) {
	now := testDay(2026, 6, 1)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	// Ни явного, ни активного шаблона: сводка отдаётся без сравнения.
	h := NewGetStudentAnalyticsHandler(milestones, newFakeTemplateRepo(), nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	m, err := h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1"})
	assert.NoError(t, err)
	assert.Nil(t, m.Comparison)
	assert.Equal(t, 1, m.Trends.Completion.Total)
}

func TestGetStudentAnalytics_RepositoryErrorPropagates(t *testing.T) {
	milestones := newFakeMilestoneRepo()
	milestones.err = assert.AnError

	h := NewGetStudentAnalyticsHandler(milestones, newFakeTemplateRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetStudentAnalytics_SkipCacheRecomputes(t *testing.T) {
	now := testDay(2026, 6, 1)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	cache := newFakeCache()
	h := NewGetStudentAnalyticsHandler(milestones, newFakeTemplateRepo(), cache, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	_, err := h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1"})
	assert.NoError(t, err)
	computeCalls := milestones.callCount()
	assert.Equal(t, 1, cache.sets)

	// Обычный повтор обслуживается из кеша.
	_, err = h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1"})
	assert.NoError(t, err)
	assert.Equal(t, computeCalls, milestones.callCount())

	// SkipCache пересчитывает и обновляет запись.
	_, err = h.Handle(context.Background(), GetStudentAnalyticsQuery{StudentID: "s1", SkipCache: true})
	assert.NoError(t, err)
	assert.Greater(t, milestones.callCount(), computeCalls)
	assert.Equal(t, 2, cache.sets)
}
