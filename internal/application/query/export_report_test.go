package query

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
)

func TestExportReport_Validation(t *testing.T) {
	h := NewExportProgressReportHandler(newFakeUserRepo(), newFakeMilestoneRepo(), zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), ExportProgressReportQuery{Format: FormatCSV})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), ExportProgressReportQuery{SupervisorID: "sup-1", Format: "xlsx"})
	assert.True(t, shared.IsValidation(err))
}

func TestExportReport_FilterRejectsForeignStudent(t *testing.T) {
	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	h := NewExportProgressReportHandler(users, newFakeMilestoneRepo(), zap.NewNop(), analytics.Config{})

	_, err := h.Handle(context.Background(), ExportProgressReportQuery{
		SupervisorID: "sup-1",
		Format:       FormatCSV,
		Filter:       analytics.ReportFilter{StudentIDs: []string{"s1", "stranger"}},
	})
	assert.ErrorIs(t, err, shared.ErrStudentNotOwned)
}

func TestExportReport_CSVContent(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey",
		student("s-alice", `Alice "Ace", MSc`),
		student("s-bob", "Bob"),
	)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s-alice"] = []*milestone.Milestone{
		doneMilestone("a1", "s-alice", now.AddDate(0, 0, -5)),
		pendingMilestone("a2", "s-alice", milestone.StatusInProgress, now.AddDate(0, 0, 10)),
	}
	milestones.byStudent["s-bob"] = []*milestone.Milestone{
		pendingMilestone("b1", "s-bob", milestone.StatusBlocked, now.AddDate(0, 0, -3)),
	}

	h := NewExportProgressReportHandler(users, milestones, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	exported, err := h.Handle(context.Background(), ExportProgressReportQuery{
		SupervisorID: "sup-1",
		Format:       FormatCSV,
	})
	assert.NoError(t, err)
	assert.Equal(t, FormatCSV, exported.Format)
	assert.Equal(t, "text/csv", exported.MimeType)
	assert.Equal(t, len(exported.Content), exported.Size)
	assert.Regexp(t, regexp.MustCompile(`^progress-report-2026-06-01-[0-9a-f]{8}\.csv$`), exported.Filename)

	lines := strings.Split(strings.TrimRight(string(exported.Content), "\n"), "\n")
	if assert.Len(t, lines, 3) {
		assert.Equal(t,
			"student_id,student_name,total_milestones,completed,in_progress,not_started,blocked,overdue,completion_rate,risk_score,risk_level,project_count",
			lines[0],
		)
		// Bob рискованнее и идёт первым; имя Alice экранировано.
		assert.True(t, strings.HasPrefix(lines[1], "s-bob,Bob,1,0,0,0,1,1,"))
		assert.True(t, strings.HasPrefix(lines[2], `s-alice,"Alice ""Ace"", MSc",2,1,1,0,0,0,`))
	}
}

func TestExportReport_PDFContent(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		doneMilestone("m1", "s1", now.AddDate(0, 0, -5)),
	}

	h := NewExportProgressReportHandler(users, milestones, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	exported, err := h.Handle(context.Background(), ExportProgressReportQuery{
		SupervisorID: "sup-1",
		Format:       FormatPDF,
	})
	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", exported.MimeType)
	assert.Regexp(t, regexp.MustCompile(`^progress-report-2026-06-01-[0-9a-f]{8}\.pdf$`), exported.Filename)

	text := string(exported.Content)
	assert.Contains(t, text, "Progress Report - Dr. Grey")
	assert.Contains(t, text, "Generated: 2026-06-01")
	assert.Contains(t, text, "Students: 1")
	assert.Contains(t, text, "- Alice: 100.00% complete")
}

func TestExportReport_FilterScopesStudents(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey",
		student("s-alice", "Alice"),
		student("s-bob", "Bob"),
	)

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s-alice"] = []*milestone.Milestone{
		doneMilestone("a1", "s-alice", now.AddDate(0, 0, -5)),
	}
	milestones.byStudent["s-bob"] = []*milestone.Milestone{
		pendingMilestone("b1", "s-bob", milestone.StatusBlocked, now.AddDate(0, 0, -3)),
	}

	h := NewExportProgressReportHandler(users, milestones, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	report, err := h.BuildReport(context.Background(), "sup-1", analytics.ReportFilter{
		StudentIDs: []string{"s-alice"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, report.TotalStudents)
	if assert.Len(t, report.StudentSummaries, 1) {
		assert.Equal(t, "s-alice", report.StudentSummaries[0].StudentID)
	}
}

func TestExportReport_StatusFilterNarrowsMilestones(t *testing.T) {
	now := testDay(2026, 6, 1)

	users := newFakeUserRepo()
	users.addSupervisor("sup-1", "Dr. Grey", student("s1", "Alice"))

	milestones := newFakeMilestoneRepo()
	milestones.byStudent["s1"] = []*milestone.Milestone{
		doneMilestone("m1", "s1", now.AddDate(0, 0, -5)),
		pendingMilestone("m2", "s1", milestone.StatusBlocked, now.AddDate(0, 0, -3)),
	}

	h := NewExportProgressReportHandler(users, milestones, zap.NewNop(), analytics.Config{}).
		WithClock(fixedClock(now))

	report, err := h.BuildReport(context.Background(), "sup-1", analytics.ReportFilter{
		Statuses: []milestone.Status{milestone.StatusBlocked},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, report.TotalMilestones)
	assert.Equal(t, 1, report.BlockedMilestones)
	assert.Equal(t, 0, report.CompletedMilestones)
}
