package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func completedMilestone(id string, created, completed time.Time) *milestone.Milestone {
	return &milestone.Milestone{
		ID:          id,
		StudentID:   "s1",
		Status:      milestone.StatusCompleted,
		Priority:    milestone.PriorityMedium,
		CreatedAt:   created,
		CompletedAt: &completed,
	}
}

func openMilestone(id string, status milestone.Status, due time.Time) *milestone.Milestone {
	return &milestone.Milestone{
		ID:        id,
		StudentID: "s1",
		Status:    status,
		Priority:  milestone.PriorityMedium,
		DueDate:   due,
	}
}

func TestVelocity_EmptyInput(t *testing.T) {
	calc := NewVelocityCalculator(Config{})
	now := day(2026, 6, 1)

	m := calc.Calculate(now, nil)

	assert.Equal(t, 0.0, m.CompletionRate)
	assert.Equal(t, 0.0, m.WeeklyVelocity)
	assert.Equal(t, 0.0, m.AverageCompletionDays)
	assert.Equal(t, ConfidenceLow, m.Prediction.Confidence)
	assert.Nil(t, m.Prediction.EstimatedCompletionDate)
	// Окно по умолчанию 90 дней даёт 13 корзин.
	assert.Len(t, m.Trend, 13)
}

func TestVelocity_BucketCountRoundsUp(t *testing.T) {
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 15})
	m := calc.Calculate(day(2026, 6, 1), nil)
	assert.Len(t, m.Trend, 3)

	calc = NewVelocityCalculator(Config{VelocityWindowDays: 14})
	m = calc.Calculate(day(2026, 6, 1), nil)
	assert.Len(t, m.Trend, 2)
}

func TestVelocity_CompletionRateAndWeekly(t *testing.T) {
	now := day(2026, 6, 1)
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 28})

	ms := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 5, 1), day(2026, 5, 11)),
		completedMilestone("m2", day(2026, 5, 5), day(2026, 5, 25)),
		// Выполнена задолго до окна - в rate окна не входит.
		completedMilestone("m3", day(2026, 1, 1), day(2026, 1, 15)),
		openMilestone("m4", milestone.StatusInProgress, day(2026, 7, 1)),
	}

	m := calc.Calculate(now, ms)

	// 2 из 4 вех выполнены внутри окна.
	assert.InDelta(t, 50.0, m.CompletionRate, 0.001)
	// 2 вехи за 4 недели.
	assert.InDelta(t, 0.5, m.WeeklyVelocity, 0.001)
	// (10 + 20) / 2 дней.
	assert.InDelta(t, 15.0, m.AverageCompletionDays, 0.001)
}

func TestVelocity_TrendBucketsHalfOpen(t *testing.T) {
	now := day(2026, 6, 1)
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 14})
	windowStart := now.AddDate(0, 0, -14)

	// Ровно на границе второй корзины: попадает только в неё.
	boundary := windowStart.AddDate(0, 0, 7)
	ms := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 5, 1), boundary),
		completedMilestone("m2", day(2026, 5, 1), windowStart.AddDate(0, 0, 2)),
	}

	m := calc.Calculate(now, ms)

	assert.Len(t, m.Trend, 2)
	assert.Equal(t, 1, m.Trend[0].Completed)
	assert.Equal(t, 1, m.Trend[1].Completed)
	assert.Equal(t, DateOnly(windowStart), m.Trend[0].WeekStart)
	assert.Equal(t, DateOnly(boundary), m.Trend[1].WeekStart)
}

func TestVelocity_PredictionConfidenceTiers(t *testing.T) {
	now := day(2026, 6, 1)
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 28})

	build := func(completed int) []*milestone.Milestone {
		ms := make([]*milestone.Milestone, 0, completed+1)
		for i := 0; i < completed; i++ {
			done := now.AddDate(0, 0, -(i%20 + 1))
			ms = append(ms, completedMilestone("m", done.AddDate(0, 0, -5), done))
		}
		ms = append(ms, openMilestone("open", milestone.StatusInProgress, now.AddDate(0, 0, 30)))
		return ms
	}

	assert.Equal(t, ConfidenceLow, calc.Calculate(now, build(2)).Prediction.Confidence)
	assert.Equal(t, ConfidenceMedium, calc.Calculate(now, build(5)).Prediction.Confidence)
	assert.Equal(t, ConfidenceHigh, calc.Calculate(now, build(10)).Prediction.Confidence)
}

func TestVelocity_PredictionDate(t *testing.T) {
	now := day(2026, 6, 1)
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 28})

	// 4 выполненных за 4 недели = 1/нед; 2 оставшихся = 2 недели.
	ms := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 5, 1), day(2026, 5, 8)),
		completedMilestone("m2", day(2026, 5, 1), day(2026, 5, 12)),
		completedMilestone("m3", day(2026, 5, 1), day(2026, 5, 18)),
		completedMilestone("m4", day(2026, 5, 1), day(2026, 5, 25)),
		openMilestone("m5", milestone.StatusInProgress, day(2026, 7, 1)),
		openMilestone("m6", milestone.StatusNotStarted, day(2026, 8, 1)),
	}

	m := calc.Calculate(now, ms)

	assert.InDelta(t, 2.0, m.Prediction.EstimatedWeeks, 0.001)
	if assert.NotNil(t, m.Prediction.EstimatedCompletionDate) {
		assert.Equal(t, day(2026, 6, 15), *m.Prediction.EstimatedCompletionDate)
	}
}

func TestVelocity_CancelledExcludedFromRemaining(t *testing.T) {
	now := day(2026, 6, 1)
	calc := NewVelocityCalculator(Config{VelocityWindowDays: 28})

	ms := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 5, 1), day(2026, 5, 10)),
		{ID: "m2", Status: milestone.StatusCancelled, Priority: milestone.PriorityLow},
	}

	m := calc.Calculate(now, ms)

	// Отменённая веха не считается оставшейся работой: прогноз нулевой.
	assert.InDelta(t, 0.0, m.Prediction.EstimatedWeeks, 0.001)
}
