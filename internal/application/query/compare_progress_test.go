package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

func capstoneTemplate(id string, items int) *milestone.Template {
	tmpl := &milestone.Template{
		ID:                     id,
		Name:                   "Capstone Plan",
		EstimatedDurationWeeks: 16,
		IsActive:               true,
	}
	for i := 0; i < items; i++ {
		tmpl.Items = append(tmpl.Items, milestone.TemplateItem{
			Title:         "Stage",
			DaysFromStart: (i + 1) * 7,
			Priority:      milestone.PriorityMedium,
		})
	}
	return tmpl
}

func TestCompareProgress_Validation(t *testing.T) {
	h := NewCompareProgressHandler(newFakeMilestoneRepo(), newFakeTemplateRepo(), analytics.Config{})

	_, err := h.Handle(context.Background(), CompareProgressQuery{})
	assert.True(t, shared.IsValidation(err))
}

func TestCompareProgress_ExplicitTemplate(t *testing.T) {
	now := testDay(2026, 6, 1)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		doneMilestone("m1", "s1", testDay(2026, 5, 1)),
		pendingMilestone("m2", "s1", milestone.StatusInProgress, testDay(2026, 7, 1)),
	}

	templates := newFakeTemplateRepo()
	templates.byID["tpl-1"] = capstoneTemplate("tpl-1", 4)

	h := NewCompareProgressHandler(milestones, templates, analytics.Config{}).
		WithClock(fixedClock(now))

	cmp, err := h.Handle(context.Background(), CompareProgressQuery{StudentID: "s1", TemplateID: "tpl-1"})
	assert.NoError(t, err)
	assert.Equal(t, "tpl-1", cmp.TemplateID)
	assert.Equal(t, 2, cmp.Current.TotalCount)
	assert.Equal(t, 4, cmp.Expected.MilestoneCount)
	assert.InDelta(t, 50.0, cmp.Current.CompletionRate, 0.001)
}

func TestCompareProgress_UnknownExplicitTemplate(t *testing.T) {
	h := NewCompareProgressHandler(newFakeMilestoneRepo(), newFakeTemplateRepo(), analytics.Config{})

	_, err := h.Handle(context.Background(), CompareProgressQuery{StudentID: "s1", TemplateID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrTemplateNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestCompareProgress_FallbackToMostUsedActive(t *testing.T) {
	now := testDay(2026, 6, 1)

	milestones := newFakeMilestoneRepo()
	templates := newFakeTemplateRepo()
	templates.mostUsed = capstoneTemplate("tpl-popular", 3)

	h := NewCompareProgressHandler(milestones, templates, analytics.Config{}).
		WithClock(fixedClock(now))

	cmp, err := h.Handle(context.Background(), CompareProgressQuery{StudentID: "s1"})
	assert.NoError(t, err)
	assert.Equal(t, "tpl-popular", cmp.TemplateID)
}

func TestCompareProgress_NoActiveTemplate(t *testing.T) {
	h := NewCompareProgressHandler(newFakeMilestoneRepo(), newFakeTemplateRepo(), analytics.Config{})

	_, err := h.Handle(context.Background(), CompareProgressQuery{StudentID: "s1"})
	assert.ErrorIs(t, err, shared.ErrNoActiveTemplate)
	assert.True(t, shared.IsNoSuitableTemplate(err))
}
