package analytics

import (
	"sort"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUPERVISOR REPORTING
// Сводки по студентам, ранжирование рисков и агрегаты дашборда.
// Всё ниже - чистые свёртки: конкурентный сбор данных по студентам
// делает слой application, порядок поступления результатов не влияет
// на итог.
// ══════════════════════════════════════════════════════════════════════════════

// UpcomingMilestone - ближайшая веха студента.
type UpcomingMilestone struct {
	MilestoneID string             `json:"milestone_id"`
	Title       string             `json:"title"`
	DueDate     time.Time          `json:"due_date"`
	Priority    milestone.Priority `json:"priority"`
}

// StudentProgressSummary - сводка прогресса одного студента.
type StudentProgressSummary struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`

	TotalMilestones int `json:"total_milestones"`
	Completed       int `json:"completed"`
	InProgress      int `json:"in_progress"`
	NotStarted      int `json:"not_started"`
	Blocked         int `json:"blocked"`
	Cancelled       int `json:"cancelled"`
	Overdue         int `json:"overdue"`

	CompletionRate float64 `json:"completion_rate"`

	// RiskScore - взвешенная сумма долей: просроченные, заблокированные
	// и просроченные вехи повышенного приоритета. Ограничен 1.0.
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`

	// NextMilestone - ближайшая будущая веха (nil, если таких нет).
	NextMilestone *UpcomingMilestone `json:"next_milestone,omitempty"`

	// LastActivityAt - время последнего изменения любой вехи студента.
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`

	// ProjectCount - количество различных проектов студента.
	ProjectCount int `json:"project_count"`
}

// AtRiskStudent - студент с риском срыва сроков.
type AtRiskStudent struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`

	RiskScore      float64   `json:"risk_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Overdue        int       `json:"overdue"`
	Blocked        int       `json:"blocked"`
	CompletionRate float64   `json:"completion_rate"`

	// UrgencyScore - приоритет внимания супервайзера [0, 100].
	UrgencyScore float64 `json:"urgency_score"`
}

// ActivityEntry - запись ленты активности за последние 7 дней.
type ActivityEntry struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	MilestoneID string    `json:"milestone_id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"` // "completed" или "updated"
	OccurredAt  time.Time `json:"occurred_at"`
}

// DeadlineEntry - дедлайн ближайших 7 дней.
type DeadlineEntry struct {
	StudentID   string             `json:"student_id"`
	StudentName string             `json:"student_name"`
	MilestoneID string             `json:"milestone_id"`
	Title       string             `json:"title"`
	DueDate     time.Time          `json:"due_date"`
	Priority    milestone.Priority `json:"priority"`
	Status      milestone.Status   `json:"status"`
}

// SupervisorDashboard - агрегированный дашборд супервайзера.
type SupervisorDashboard struct {
	SupervisorID string    `json:"supervisor_id"`
	GeneratedAt  time.Time `json:"generated_at"`

	TotalStudents       int     `json:"total_students"`
	TotalMilestones     int     `json:"total_milestones"`
	CompletedMilestones int     `json:"completed_milestones"`
	OverdueMilestones   int     `json:"overdue_milestones"`
	BlockedMilestones   int     `json:"blocked_milestones"`
	OverallCompletion   float64 `json:"overall_completion_rate"`

	// AverageVelocity - средняя скорость на студента за последние 30
	// дней, вех в неделю (30 дней ≈ 4.3 недели).
	AverageVelocity float64 `json:"average_velocity"`

	// StudentSummaries - сводки в порядке убывания riskScore.
	StudentSummaries []StudentProgressSummary `json:"student_summaries"`

	// AtRiskStudents - в порядке убывания urgencyScore.
	AtRiskStudents []AtRiskStudent `json:"at_risk_students"`

	// RecentActivity - события последних 7 дней, новые первыми.
	RecentActivity []ActivityEntry `json:"recent_activity"`

	// UpcomingDeadlines - дедлайны ближайших 7 дней, ранние первыми.
	UpcomingDeadlines []DeadlineEntry `json:"upcoming_deadlines"`
}

// ReportFilter ограничивает область отчёта супервайзера.
type ReportFilter struct {
	// StudentIDs - оставить только этих студентов (пусто = все).
	StudentIDs []string `json:"student_ids,omitempty"`

	// From / To - ограничение дедлайнов по датам.
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`

	// Statuses / Priorities - ограничение по статусу и приоритету вех.
	Statuses   []milestone.Status   `json:"statuses,omitempty"`
	Priorities []milestone.Priority `json:"priorities,omitempty"`
}

// MilestoneFilter переводит фильтр отчёта в фильтр хранилища вех.
func (f ReportFilter) MilestoneFilter() milestone.Filter {
	return milestone.Filter{
		Statuses:   f.Statuses,
		Priorities: f.Priorities,
		DueAfter:   f.From,
		DueBefore:  f.To,
	}
}

// IncludesStudent проверяет, входит ли студент в область отчёта.
func (f ReportFilter) IncludesStudent(id string) bool {
	if len(f.StudentIDs) == 0 {
		return true
	}
	for _, s := range f.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}

// SupervisorReport - отчёт супервайзера для экспорта.
type SupervisorReport struct {
	SupervisorID   string       `json:"supervisor_id"`
	SupervisorName string       `json:"supervisor_name"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Filter         ReportFilter `json:"filter"`

	TotalStudents       int     `json:"total_students"`
	TotalMilestones     int     `json:"total_milestones"`
	CompletedMilestones int     `json:"completed_milestones"`
	OverdueMilestones   int     `json:"overdue_milestones"`
	BlockedMilestones   int     `json:"blocked_milestones"`
	OverallCompletion   float64 `json:"overall_completion_rate"`

	StudentSummaries []StudentProgressSummary `json:"student_summaries"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY FOLDS
// ══════════════════════════════════════════════════════════════════════════════

// SummarizeStudent сворачивает снимок вех студента в сводку.
func SummarizeStudent(now time.Time, studentID, studentName string, milestones []*milestone.Milestone, cfg Config) StudentProgressSummary {
	cfg = cfg.Normalize()

	summary := StudentProgressSummary{
		StudentID:       studentID,
		StudentName:     studentName,
		TotalMilestones: len(milestones),
	}

	highPriorityOverdue := 0
	projects := make(map[string]struct{})
	var lastActivity time.Time
	var next *UpcomingMilestone

	for _, m := range milestones {
		switch m.Status {
		case milestone.StatusCompleted:
			summary.Completed++
		case milestone.StatusInProgress:
			summary.InProgress++
		case milestone.StatusNotStarted:
			summary.NotStarted++
		case milestone.StatusBlocked:
			summary.Blocked++
		case milestone.StatusCancelled:
			summary.Cancelled++
		}

		if m.IsOverdue(now) {
			summary.Overdue++
			if m.Priority.IsElevated() {
				highPriorityOverdue++
			}
		}

		if m.ProjectID != "" {
			projects[m.ProjectID] = struct{}{}
		}

		if m.UpdatedAt.After(lastActivity) {
			lastActivity = m.UpdatedAt
		}

		if !m.Status.IsTerminal() && m.DueDate.After(now) {
			if next == nil || m.DueDate.Before(next.DueDate) {
				next = &UpcomingMilestone{
					MilestoneID: m.ID,
					Title:       m.Title,
					DueDate:     m.DueDate,
					Priority:    m.Priority,
				}
			}
		}
	}

	summary.ProjectCount = len(projects)
	summary.NextMilestone = next
	if !lastActivity.IsZero() {
		summary.LastActivityAt = &lastActivity
	}

	if summary.TotalMilestones > 0 {
		total := float64(summary.TotalMilestones)
		summary.CompletionRate = Round2(float64(summary.Completed) / total * 100)
		score := cfg.SummaryOverdueWeight*(float64(summary.Overdue)/total) +
			cfg.SummaryBlockedWeight*(float64(summary.Blocked)/total) +
			cfg.SummaryHighPriorityWeight*(float64(highPriorityOverdue)/total)
		summary.RiskScore = Round2(Clamp(score, 0, 1))
	}
	summary.RiskLevel = riskLevelFromScore(summary.RiskScore)

	return summary
}

// riskLevelFromScore переводит riskScore в качественный уровень.
func riskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= 0.7:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AtRiskFromSummary выделяет студента с риском срыва сроков.
// Возвращает false, если студент не относится к группе риска.
func AtRiskFromSummary(s StudentProgressSummary) (AtRiskStudent, bool) {
	atRisk := s.RiskScore > 0.3 || s.Overdue > 0 || s.Blocked > 0 ||
		(s.TotalMilestones > 0 && s.CompletionRate < 50)
	if !atRisk {
		return AtRiskStudent{}, false
	}

	urgency := s.RiskScore*50 + float64(s.Overdue)*20 + float64(s.Blocked)*15
	if s.CompletionRate < 30 {
		urgency += 25
	}

	return AtRiskStudent{
		StudentID:      s.StudentID,
		StudentName:    s.StudentName,
		RiskScore:      s.RiskScore,
		RiskLevel:      s.RiskLevel,
		Overdue:        s.Overdue,
		Blocked:        s.Blocked,
		CompletionRate: s.CompletionRate,
		UrgencyScore:   Round2(Clamp(urgency, 0, 100)),
	}, true
}

// SortSummaries сортирует сводки по убыванию riskScore.
// Сортировка стабильная: одинаковые оценки сохраняют исходный порядок.
func SortSummaries(summaries []StudentProgressSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].RiskScore > summaries[j].RiskScore
	})
}

// SortAtRisk сортирует студентов группы риска по убыванию urgencyScore.
func SortAtRisk(students []AtRiskStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].UrgencyScore > students[j].UrgencyScore
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD COMPOSITION
// ══════════════════════════════════════════════════════════════════════════════

// StudentMilestones - снимок вех одного студента для свёртки дашборда.
type StudentMilestones struct {
	StudentID   string
	StudentName string
	Milestones  []*milestone.Milestone
}

// ComposeDashboard сворачивает снимки всех студентов супервайзера в
// дашборд. Порядок элементов snapshot не влияет на результат.
func ComposeDashboard(now time.Time, supervisorID string, snapshots []StudentMilestones, cfg Config) SupervisorDashboard {
	cfg = cfg.Normalize()

	dashboard := SupervisorDashboard{
		SupervisorID:      supervisorID,
		GeneratedAt:       now,
		TotalStudents:     len(snapshots),
		StudentSummaries:  make([]StudentProgressSummary, 0, len(snapshots)),
		AtRiskStudents:    []AtRiskStudent{},
		RecentActivity:    []ActivityEntry{},
		UpcomingDeadlines: []DeadlineEntry{},
	}

	// Детерминированный порядок свёртки независимо от порядка поступления.
	ordered := make([]StudentMilestones, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StudentID < ordered[j].StudentID
	})

	weekAgo := now.AddDate(0, 0, -7)
	weekAhead := now.AddDate(0, 0, 7)
	recentCompletions := 0

	for _, snap := range ordered {
		summary := SummarizeStudent(now, snap.StudentID, snap.StudentName, snap.Milestones, cfg)
		dashboard.StudentSummaries = append(dashboard.StudentSummaries, summary)

		if atRisk, ok := AtRiskFromSummary(summary); ok {
			dashboard.AtRiskStudents = append(dashboard.AtRiskStudents, atRisk)
		}

		dashboard.TotalMilestones += summary.TotalMilestones
		dashboard.CompletedMilestones += summary.Completed
		dashboard.OverdueMilestones += summary.Overdue
		dashboard.BlockedMilestones += summary.Blocked

		for _, m := range snap.Milestones {
			if m.CompletedWithin(now.AddDate(0, 0, -30), now) {
				recentCompletions++
			}

			if m.IsCompleted() && m.CompletedAt != nil && m.CompletedAt.After(weekAgo) {
				dashboard.RecentActivity = append(dashboard.RecentActivity, ActivityEntry{
					StudentID:   snap.StudentID,
					StudentName: snap.StudentName,
					MilestoneID: m.ID,
					Title:       m.Title,
					Kind:        "completed",
					OccurredAt:  *m.CompletedAt,
				})
			} else if !m.IsCompleted() && m.UpdatedAt.After(weekAgo) && !m.UpdatedAt.After(now) {
				dashboard.RecentActivity = append(dashboard.RecentActivity, ActivityEntry{
					StudentID:   snap.StudentID,
					StudentName: snap.StudentName,
					MilestoneID: m.ID,
					Title:       m.Title,
					Kind:        "updated",
					OccurredAt:  m.UpdatedAt,
				})
			}

			if !m.Status.IsTerminal() && !m.DueDate.Before(now) && !m.DueDate.After(weekAhead) {
				dashboard.UpcomingDeadlines = append(dashboard.UpcomingDeadlines, DeadlineEntry{
					StudentID:   snap.StudentID,
					StudentName: snap.StudentName,
					MilestoneID: m.ID,
					Title:       m.Title,
					DueDate:     m.DueDate,
					Priority:    m.Priority,
					Status:      m.Status,
				})
			}
		}
	}

	if dashboard.TotalMilestones > 0 {
		dashboard.OverallCompletion = Round2(float64(dashboard.CompletedMilestones) / float64(dashboard.TotalMilestones) * 100)
	}
	if dashboard.TotalStudents > 0 {
		// 30 дней ≈ 4.3 недели.
		dashboard.AverageVelocity = Round2(float64(recentCompletions) / 4.3 / float64(dashboard.TotalStudents))
	}

	SortSummaries(dashboard.StudentSummaries)
	SortAtRisk(dashboard.AtRiskStudents)
	sort.SliceStable(dashboard.RecentActivity, func(i, j int) bool {
		return dashboard.RecentActivity[i].OccurredAt.After(dashboard.RecentActivity[j].OccurredAt)
	})
	sort.SliceStable(dashboard.UpcomingDeadlines, func(i, j int) bool {
		return dashboard.UpcomingDeadlines[i].DueDate.Before(dashboard.UpcomingDeadlines[j].DueDate)
	})

	return dashboard
}

// ComposeReport сворачивает отфильтрованные снимки в отчёт супервайзера.
func ComposeReport(now time.Time, supervisorID, supervisorName string, filter ReportFilter, snapshots []StudentMilestones, cfg Config) SupervisorReport {
	dashboard := ComposeDashboard(now, supervisorID, snapshots, cfg)

	return SupervisorReport{
		SupervisorID:        supervisorID,
		SupervisorName:      supervisorName,
		GeneratedAt:         now,
		Filter:              filter,
		TotalStudents:       dashboard.TotalStudents,
		TotalMilestones:     dashboard.TotalMilestones,
		CompletedMilestones: dashboard.CompletedMilestones,
		OverdueMilestones:   dashboard.OverdueMilestones,
		BlockedMilestones:   dashboard.BlockedMilestones,
		OverallCompletion:   dashboard.OverallCompletion,
		StudentSummaries:    dashboard.StudentSummaries,
	}
}
