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

func TestGetSupervisorDashboard_Validation(t *testing.T) {
	h := NewGetSupervisorDashboardHandler(newFakeUserRepo(), newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{})
	assert.True(t, shared.IsValidation(err))
}

func TestGetSupervisorDashboard_SupervisorNotFound(t *testing.T) {
	h := NewGetSupervisorDashboardHandler(newFakeUserRepo(), newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrSupervisorNotFound)
}

func TestGetSupervisorDashboard_EmptyStudentSet(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey")

	milestones := newFakeMilestoneRepo()
	h := NewGetSupervisorDashboardHandler(users, milestones, nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	d, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.Equal(t, 0, d.TotalStudents)
	assert.Equal(t, 0, d.TotalMilestones)
	// Хранилище вех не трогается.
	assert.Equal(t, 0, milestones.callCount())
}

func TestGetSupervisorDashboard_AggregatesStudents(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey",
		student("s-alice", "Alice"),
		student("s-bob", "Bob"),
	)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s-alice"] = []*milestone.Milestone{
		doneMilestone("a1", "s-alice", now.AddDate(0, 0, -3)),
		pendingMilestone("a2", "s-alice", milestone.StatusInProgress, now.AddDate(0, 0, 5)),
	}
	milestones.byStudent["s-bob"] = []*milestone.Milestone{
		pendingMilestone("b1", "s-bob", milestone.StatusBlocked, now.AddDate(0, 0, -2)),
	}

	h := NewGetSupervisorDashboardHandler(users, milestones, nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now)).
		WithConcurrency(2)

	d, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)

	assert.Equal(t, 2, d.TotalStudents)
	assert.Equal(t, 3, d.TotalMilestones)
	assert.Equal(t, 1, d.CompletedMilestones)
	assert.Equal(t, 1, d.OverdueMilestones)
	assert.Equal(t, 1, d.BlockedMilestones)

	if assert.Len(t, d.AtRiskStudents, 1) {
		assert.Equal(t, "s-bob", d.AtRiskStudents[0].StudentID)
	}
	if assert.Len(t, d.UpcomingDeadlines, 1) {
		assert.Equal(t, "a2", d.UpcomingDeadlines[0].MilestoneID)
	}
}

func TestGetSupervisorDashboard_SnapshotErrorAborts(t *testing.T) {
	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.err = assert.AnError

	h := NewGetSupervisorDashboardHandler(users, milestones, nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetSupervisorDashboard_CacheRoundTrip(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, now.AddDate(0, 0, 3)),
	}

	cache := newFakeCache()
	h := NewGetSupervisorDashboardHandler(users, milestones, cache, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	_, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, milestones.callCount())
	assert.Contains(t, cache.store, CacheKeySupervisorDashboard("sup-1"))

	cached, err := h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, milestones.callCount())
	assert.Equal(t, 1, cached.TotalStudents)

	// SkipCache пересчитывает поверх живой записи.
	_, err = h.Handle(context.Background(), GetSupervisorDashboardQuery{SupervisorID: "sup-1", SkipCache: true})
	assert.NoError(t, err)
	assert.Equal(t, 2, milestones.callCount())
	assert.Equal(t, 2, cache.sets)
}
