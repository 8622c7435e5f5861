package milestone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusNotStarted.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusBlocked.IsTerminal())
}

func TestPriority_IsElevated(t *testing.T) {
	assert.True(t, PriorityHigh.IsElevated())
	assert.True(t, PriorityCritical.IsElevated())
	assert.False(t, PriorityLow.IsElevated())
	assert.False(t, PriorityMedium.IsElevated())
}

func TestMilestone_IsOverdue(t *testing.T) {
	now := date(2026, 3, 15)

	m := &Milestone{Status: StatusInProgress, DueDate: date(2026, 3, 10)}
	assert.True(t, m.IsOverdue(now))

	m.DueDate = date(2026, 3, 20)
	assert.False(t, m.IsOverdue(now))

	// Дедлайн в прошлом, но работа закрыта - не просрочено.
	done := date(2026, 3, 9)
	completed := &Milestone{Status: StatusCompleted, DueDate: date(2026, 3, 10), CompletedAt: &done}
	assert.False(t, completed.IsOverdue(now))

	cancelled := &Milestone{Status: StatusCancelled, DueDate: date(2026, 3, 10)}
	assert.False(t, cancelled.IsOverdue(now))
}

func TestMilestone_CompletedWithin(t *testing.T) {
	from := date(2026, 3, 1)
	to := date(2026, 3, 31)

	at := date(2026, 3, 15)
	m := &Milestone{Status: StatusCompleted, CompletedAt: &at}
	assert.True(t, m.CompletedWithin(from, to))

	// Границы окна включительные.
	atFrom := from
	m.CompletedAt = &atFrom
	assert.True(t, m.CompletedWithin(from, to))
	atTo := to
	m.CompletedAt = &atTo
	assert.True(t, m.CompletedWithin(from, to))

	before := date(2026, 2, 28)
	m.CompletedAt = &before
	assert.False(t, m.CompletedWithin(from, to))

	// Невыполненные вехи никогда не попадают в окно.
	inProgress := &Milestone{Status: StatusInProgress}
	assert.False(t, inProgress.CompletedWithin(from, to))
}

func TestMilestone_DaysToComplete(t *testing.T) {
	created := date(2026, 3, 1)
	completed := date(2026, 3, 11)

	m := &Milestone{Status: StatusCompleted, CreatedAt: created, CompletedAt: &completed}
	assert.InDelta(t, 10.0, m.DaysToComplete(), 0.001)

	open := &Milestone{Status: StatusInProgress, CreatedAt: created}
	assert.Equal(t, 0.0, open.DaysToComplete())
}

func TestMilestone_Validate(t *testing.T) {
	at := date(2026, 3, 15)
	valid := &Milestone{
		ID:          "m1",
		StudentID:   "s1",
		Status:      StatusCompleted,
		Priority:    PriorityMedium,
		CompletedAt: &at,
	}
	assert.NoError(t, valid.Validate())

	missingID := &Milestone{StudentID: "s1", Status: StatusNotStarted, Priority: PriorityLow}
	assert.Error(t, missingID.Validate())

	badStatus := &Milestone{ID: "m1", StudentID: "s1", Status: "DONE", Priority: PriorityLow}
	assert.Error(t, badStatus.Validate())

	negative := &Milestone{ID: "m1", StudentID: "s1", Status: StatusNotStarted, Priority: PriorityLow, EstimatedHours: -1}
	assert.Error(t, negative.Validate())

	// CompletedAt обязан быть согласован со статусом в обе стороны.
	completedNoTime := &Milestone{ID: "m1", StudentID: "s1", Status: StatusCompleted, Priority: PriorityLow}
	assert.Error(t, completedNoTime.Validate())

	openWithTime := &Milestone{ID: "m1", StudentID: "s1", Status: StatusInProgress, Priority: PriorityLow, CompletedAt: &at}
	assert.Error(t, openWithTime.Validate())
}

func TestFilter_Matches(t *testing.T) {
	m := &Milestone{
		Status:   StatusInProgress,
		Priority: PriorityHigh,
		DueDate:  date(2026, 3, 15),
	}

	assert.True(t, Filter{}.Matches(m))

	assert.True(t, Filter{Statuses: []Status{StatusInProgress, StatusBlocked}}.Matches(m))
	assert.False(t, Filter{Statuses: []Status{StatusCompleted}}.Matches(m))

	assert.True(t, Filter{Priorities: []Priority{PriorityHigh}}.Matches(m))
	assert.False(t, Filter{Priorities: []Priority{PriorityLow}}.Matches(m))

	assert.True(t, Filter{DueAfter: date(2026, 3, 1), DueBefore: date(2026, 3, 31)}.Matches(m))
	assert.False(t, Filter{DueAfter: date(2026, 3, 16)}.Matches(m))
	assert.False(t, Filter{DueBefore: date(2026, 3, 14)}.Matches(m))

	// Границы дат включительные.
	assert.True(t, Filter{DueAfter: date(2026, 3, 15)}.Matches(m))
	assert.True(t, Filter{DueBefore: date(2026, 3, 15)}.Matches(m))
}

func TestTemplate_Aggregates(t *testing.T) {
	tmpl := &Template{
		Items: []TemplateItem{
			{Title: "Proposal", DaysFromStart: 14, EstimatedHours: 20},
			{Title: "Literature review", DaysFromStart: 42, EstimatedHours: 40},
			{Title: "Final report", DaysFromStart: 120, EstimatedHours: 60},
		},
	}

	assert.Equal(t, 3, tmpl.MilestoneCount())
	assert.InDelta(t, 120.0, tmpl.TotalEstimatedHours(), 0.001)
}
