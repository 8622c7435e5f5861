package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

func researchTemplate(items int) *milestone.Template {
	tmpl := &milestone.Template{
		ID:                     "tpl-1",
		Name:                   "Research Project",
		EstimatedDurationWeeks: 24,
		IsActive:               true,
	}
	for i := 0; i < items; i++ {
		tmpl.Items = append(tmpl.Items, milestone.TemplateItem{
			Title:         "Phase",
			DaysFromStart: (i + 1) * 14,
			Priority:      milestone.PriorityMedium,
		})
	}
	return tmpl
}

func TestComparison_CurrentVsExpected(t *testing.T) {
	comparator := NewTemplateComparator(Config{})
	now := day(2026, 6, 1)

	ms := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 11)),
		completedMilestone("m2", day(2026, 3, 1), day(2026, 3, 21)),
		openMilestone("m3", milestone.StatusInProgress, day(2026, 7, 1)),
		openMilestone("m4", milestone.StatusNotStarted, day(2026, 8, 1)),
	}

	cmp := comparator.Compare(now, ms, researchTemplate(6))

	assert.Equal(t, "tpl-1", cmp.TemplateID)
	assert.Equal(t, "Research Project", cmp.TemplateName)
	assert.Equal(t, 2, cmp.Current.CompletedCount)
	assert.Equal(t, 4, cmp.Current.TotalCount)
	assert.InDelta(t, 50.0, cmp.Current.CompletionRate, 0.001)
	assert.InDelta(t, 15.0, cmp.Current.AverageCompletionDays, 0.001)

	assert.Equal(t, 6, cmp.Expected.MilestoneCount)
	assert.InDelta(t, 75.0, cmp.Expected.CompletionRate, 0.001)
	assert.InDelta(t, 24.0, cmp.Expected.EstimatedDurationWeeks, 0.001)

	assert.InDelta(t, -25.0, cmp.CompletionRateDifference, 0.001)
	assert.Equal(t, -2, cmp.MilestoneDifference)
	assert.InDelta(t, 0.67, cmp.PerformanceRatio, 0.001)
}

func TestComparison_DeviationSeverity(t *testing.T) {
	comparator := NewTemplateComparator(Config{})
	now := day(2026, 6, 1)
	tmpl := researchTemplate(4)

	// 4 из 4 выполнено: rate 100, отклонение +25 > порога high.
	allDone := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m2", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m3", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m4", day(2026, 3, 1), day(2026, 3, 8)),
	}
	high := comparator.Compare(now, allDone, tmpl)
	if assert.Len(t, high.Deviations, 1) {
		assert.Equal(t, "completion_rate", high.Deviations[0].Metric)
		assert.Equal(t, RiskHigh, high.Deviations[0].Severity)
	}

	// 3 из 5: rate 60, отклонение -15 - medium.
	partial := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m2", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m3", day(2026, 3, 1), day(2026, 3, 8)),
		openMilestone("m4", milestone.StatusInProgress, day(2026, 7, 1)),
		openMilestone("m5", milestone.StatusNotStarted, day(2026, 8, 1)),
	}
	medium := comparator.Compare(now, partial, tmpl)
	if assert.Len(t, medium.Deviations, 1) {
		assert.Equal(t, RiskMedium, medium.Deviations[0].Severity)
	}

	// 4 из 5: rate 80, отклонение +5 - в пределах нормы.
	onTrack := []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m2", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m3", day(2026, 3, 1), day(2026, 3, 8)),
		completedMilestone("m4", day(2026, 3, 1), day(2026, 3, 8)),
		openMilestone("m5", milestone.StatusInProgress, day(2026, 7, 1)),
	}
	none := comparator.Compare(now, onTrack, tmpl)
	assert.Empty(t, none.Deviations)
}

func TestComparison_Recommendations(t *testing.T) {
	comparator := NewTemplateComparator(Config{})
	now := day(2026, 6, 1)
	tmpl := researchTemplate(4)

	// Rate 0: отставание и низкий ratio выключает вторую рекомендацию
	// (ratio = 0 не считается), остаётся только отставание.
	behind := comparator.Compare(now, []*milestone.Milestone{
		openMilestone("m1", milestone.StatusNotStarted, day(2026, 7, 1)),
	}, tmpl)
	assert.Equal(t, []string{
		"Progress is behind the template baseline; increase completion velocity.",
	}, behind.Recommendations)

	// Rate 50: ratio 0.67 < 0.8 - обе рекомендации.
	lagging := comparator.Compare(now, []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 8)),
		openMilestone("m2", milestone.StatusInProgress, day(2026, 7, 1)),
	}, tmpl)
	assert.Len(t, lagging.Recommendations, 2)

	// Rate 100: никаких рекомендаций.
	ahead := comparator.Compare(now, []*milestone.Milestone{
		completedMilestone("m1", day(2026, 3, 1), day(2026, 3, 8)),
	}, tmpl)
	assert.Empty(t, ahead.Recommendations)
}
