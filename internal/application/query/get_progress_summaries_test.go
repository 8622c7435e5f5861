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

func TestGetProgressSummaries_Validation(t *testing.T) {
	h := NewGetProgressSummariesHandler(newFakeUserRepo(), newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), GetProgressSummariesQuery{})
	assert.True(t, shared.IsValidation(err))
}

func TestGetProgressSummaries_EmptyStudentSet(t *testing.T) {
	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey")

	h := NewGetProgressSummariesHandler(users, newFakeMilestoneRepo(), nil, zap.NewNop(), analytics.Config{})

	summaries, err := h.Handle(context.Background(), GetProgressSummariesQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestGetProgressSummaries_SortedByRiskDescending(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey",
		student("s-alice", "Alice"),
		student("s-bob", "Bob"),
	)

	milestones := newFakeMilestoneRepo()
	// У Alice всё выполнено, у Bob всё просрочено и заблокировано.
	milestones.byStudent["s-alice"] = []*milestone.Milestone{
		doneMilestone("a1", "s-alice", now.AddDate(0, 0, -5)),
	}
	milestones.byStudent["s-bob"] = []*milestone.Milestone{
		pendingMilestone("b1", "s-bob", milestone.StatusBlocked, now.AddDate(0, 0, -10)),
	}

	h := NewGetProgressSummariesHandler(users, milestones, nil, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	summaries, err := h.Handle(context.Background(), GetProgressSummariesQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	if assert.Len(t, summaries, 2) {
		assert.Equal(t, "s-bob", summaries[0].StudentID)
		assert.Greater(t, summaries[0].RiskScore, summaries[1].RiskScore)
	}
}

func TestGetProgressSummaries_CachedBetweenCalls(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		pendingMilestone("m1", "s1", milestone.StatusInProgress, now.AddDate(0, 0, 3)),
	}

	cache := newFakeCache()
	h := NewGetProgressSummariesHandler(users, milestones, cache, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	first, err := h.Handle(context.Background(), GetProgressSummariesQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, milestones.callCount())

	second, err := h.Handle(context.Background(), GetProgressSummariesQuery{SupervisorID: "sup-1"})
	assert.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, milestones.callCount())
}
