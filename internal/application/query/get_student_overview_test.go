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

func TestGetStudentOverview_Validation(t *testing.T) {
	h := NewGetStudentOverviewHandler(newFakeUserRepo(), newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetStudentOverviewQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1"})
	assert.True(t, shared.IsValidation(err))
}

func TestGetStudentOverview_SupervisorNotFound(t *testing.T) {
	users := newFakeUserRepo()
	h := NewGetStudentOverviewHandler(users, newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "ghost", StudentID: "s1"})
	assert.ErrorIs(t, err, shared.ErrSupervisorNotFound)

	// Студент в роли супервайзера тоже не проходит проверку.
	users.users["st"] = student("st", "Not A Supervisor")
	_, err = h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "st", StudentID: "s1"})
	assert.ErrorIs(t, err, shared.ErrSupervisorNotFound)
}

func TestGetStudentOverview_StudentNotOwned(t *testing.T) {
	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	h := NewGetStudentOverviewHandler(users, newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1", StudentID: "stranger"})
	assert.ErrorIs(t, err, shared.ErrStudentNotOwned)
	assert.True(t, shared.IsAccessDenied(err))
}

func TestGetStudentOverview_SortsMilestonesByDueDate(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("late", "s1", milestone.StatusNotStarted, testDay(2026, 8, 1)),
		pendingMilestone("early", "s1", milestone.StatusInProgress, testDay(2026, 6, 10)),
	}

	h := NewGetStudentOverviewHandler(users, milestones, nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	overview, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1", StudentID: "s1"})
	assert.NoError(t, err)
	assert.Equal(t, "Alice", overview.Summary.StudentName)
	assert.Equal(t, 2, overview.Summary.TotalMilestones)
	if assert.Len(t, overview.Milestones, 2) {
		assert.Equal(t, "early", overview.Milestones[0].ID)
		assert.Equal(t, "late", overview.Milestones[1].ID)
	}
}

func TestGetStudentOverview_CacheHitSkipsRepository(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	cache := newFakeCache()
	h := NewGetStudentOverviewHandler(users, milestones, cache, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	first, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1", StudentID: "s1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, milestones.callCount())
	assert.Equal(t, 1, cache.sets)

	second, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1", StudentID: "s1"})
	assert.NoError(t, err)
	// Повторный запрос обслужен из кеша без обращения к хранилищу.
	assert.Equal(t, 1, milestones.callCount())
	assert.Equal(t, first.Summary.StudentID, second.Summary.StudentID)
	assert.Equal(t, first.Summary.TotalMilestones, second.Summary.TotalMilestones)
	assert.InDelta(t, first.Summary.RiskScore, second.Summary.RiskScore, 0.001)
}

func TestGetStudentOverview_CacheErrorsFailOpen(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	cache := newFakeCache()
	cache.getErr = assert.AnError
	cache.setErr = assert.AnError

	h := NewGetStudentOverviewHandler(users, milestones, cache, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	overview, err := h.Handle(context.Background(), GetStudentOverviewQuery{SupervisorID: "sup-1", StudentID: "s1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, overview.Summary.TotalMilestones)
	assert.Equal(t, 0, cache.sets)
}
