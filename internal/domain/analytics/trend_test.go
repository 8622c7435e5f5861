package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

func TestTrend_EmptyInput(t *testing.T) {
	analyzer := NewTrendAnalyzer(Config{})
	now := day(2026, 6, 1)

	trends := analyzer.Analyze(now, nil)

	assert.Equal(t, 0, trends.Completion.Total)
	assert.Equal(t, TrendStable, trends.Completion.Trend)
	// Распределение засеяно всеми приоритетами даже без вех.
	assert.Len(t, trends.Priority.Distribution, 4)
	assert.Equal(t, 0, trends.Priority.Distribution[milestone.PriorityCritical])
	assert.Equal(t, TrendNeutral, trends.Indicators.CompletionTrend)
	assert.Equal(t, TrendStable, trends.Indicators.RiskTrend)
	assert.Equal(t, []string{
		"No milestones completed yet; an early win would build momentum.",
	}, trends.Insights)
}

func TestTrend_CompletionAndWorkload(t *testing.T) {
	analyzer := NewTrendAnalyzer(Config{})
	now := day(2026, 6, 1)

	done := completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 15))
	done.EstimatedHours = 40
	done.ActualHours = 50
	open := openMilestone("m2", milestone.StatusInProgress, day(2026, 7, 1))
	open.EstimatedHours = 10
	open.ActualHours = 5

	trends := analyzer.Analyze(now, []*milestone.Milestone{done, open})

	assert.Equal(t, 2, trends.Completion.Total)
	assert.Equal(t, 1, trends.Completion.Completed)
	assert.InDelta(t, 50.0, trends.Completion.Rate, 0.001)

	assert.InDelta(t, 50.0, trends.Workload.TotalEstimatedHours, 0.001)
	assert.InDelta(t, 55.0, trends.Workload.TotalActualHours, 0.001)
	assert.InDelta(t, 1.1, trends.Workload.EfficiencyRatio, 0.001)

	assert.Equal(t, TrendPositive, trends.Indicators.CompletionTrend)
	assert.Equal(t, TrendStable, trends.Indicators.RiskTrend)
}

func TestTrend_DocumentationScoreClamped(t *testing.T) {
	analyzer := NewTrendAnalyzer(Config{})
	now := day(2026, 6, 1)

	lightlyDocumented := openMilestone("m1", milestone.StatusInProgress, day(2026, 7, 1))
	lightlyDocumented.Notes = []milestone.Note{{ID: "n1"}, {ID: "n2"}}

	trends := analyzer.Analyze(now, []*milestone.Milestone{lightlyDocumented})
	// 2 заметки на веху × 20 = 40.
	assert.InDelta(t, 40.0, trends.Quality.DocumentationScore, 0.001)

	heavilyDocumented := openMilestone("m2", milestone.StatusInProgress, day(2026, 7, 1))
	for i := 0; i < 9; i++ {
		heavilyDocumented.Notes = append(heavilyDocumented.Notes, milestone.Note{})
	}

	trends = analyzer.Analyze(now, []*milestone.Milestone{heavilyDocumented})
	// 9 × 20 = 180, но шкала ограничена сотней.
	assert.InDelta(t, 100.0, trends.Quality.DocumentationScore, 0.001)
}

func TestTrend_PriorityDistributionAndRisk(t *testing.T) {
	analyzer := NewTrendAnalyzer(Config{})
	now := day(2026, 6, 1)

	critical := openMilestone("m1", milestone.StatusInProgress, day(2026, 5, 1))
	critical.Priority = milestone.PriorityCritical
	high := openMilestone("m2", milestone.StatusInProgress, day(2026, 7, 1))
	high.Priority = milestone.PriorityHigh
	low := openMilestone("m3", milestone.StatusNotStarted, day(2026, 8, 1))
	low.Priority = milestone.PriorityLow
	plain := openMilestone("m4", milestone.StatusNotStarted, day(2026, 8, 1))

	trends := analyzer.Analyze(now, []*milestone.Milestone{critical, high, low, plain})

	assert.Equal(t, 1, trends.Priority.Distribution[milestone.PriorityCritical])
	assert.Equal(t, 1, trends.Priority.Distribution[milestone.PriorityHigh])
	assert.Equal(t, 1, trends.Priority.Distribution[milestone.PriorityLow])
	assert.Equal(t, 1, trends.Priority.Distribution[milestone.PriorityMedium])
	assert.InDelta(t, 0.5, trends.Priority.HighPriorityRatio, 0.001)

	// Просроченная веха переключает индикатор риска.
	assert.Equal(t, TrendIncreasing, trends.Indicators.RiskTrend)
	assert.Contains(t, trends.Insights, "Risk is increasing: 1 overdue milestone(s) need attention.")
}
