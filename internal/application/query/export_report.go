package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT PROGRESS REPORT QUERY
// Отчёт супервайзера с фильтрами и экспорт в CSV или текстовый
// PDF-заменитель. Настоящий PDF-рендер - внешняя забота платформы;
// здесь формируется только плоская выгрузка.
// ══════════════════════════════════════════════════════════════════════════════

// ExportFormat - формат экспорта отчёта.
type ExportFormat string

const (
	// FormatCSV - плоская таблица сводок по студентам.
	FormatCSV ExportFormat = "csv"
	// FormatPDF - минимальный текстовый заменитель PDF.
	FormatPDF ExportFormat = "pdf"
)

// IsValid проверяет, что формат поддерживается.
func (f ExportFormat) IsValid() bool {
	return f == FormatCSV || f == FormatPDF
}

// ExportProgressReportQuery содержит параметры экспорта.
type ExportProgressReportQuery struct {
	// SupervisorID - супервайзер, чей отчёт экспортируется.
	SupervisorID string

	// Format - формат экспорта.
	Format ExportFormat

	// Filter - ограничение области отчёта.
	Filter analytics.ReportFilter
}

// Validate проверяет корректность параметров.
func (q *ExportProgressReportQuery) Validate() error {
	if q.SupervisorID == "" {
		return shared.NewDomainError("report", "Export", shared.ErrInvalidInput, "supervisor ID is required")
	}
	if !q.Format.IsValid() {
		return shared.NewDomainError("report", "Export", shared.ErrInvalidInput, "format must be csv or pdf")
	}
	return nil
}

// ExportedReport - результат экспорта.
type ExportedReport struct {
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`
	MimeType string       `json:"mime_type"`
	Content  []byte       `json:"content"`
	Size     int          `json:"size"`
}

// ExportProgressReportHandler обрабатывает экспорт отчётов.
type ExportProgressReportHandler struct {
	users       user.Repository
	milestones  milestone.Repository
	log         *zap.Logger
	cfg         analytics.Config
	concurrency int
	now         func() time.Time
}

// NewExportProgressReportHandler создаёт новый обработчик.
func NewExportProgressReportHandler(
	users user.Repository,
	milestones milestone.Repository,
	log *zap.Logger,
	cfg analytics.Config,
) *ExportProgressReportHandler {
	return &ExportProgressReportHandler{
		users:       users,
		milestones:  milestones,
		log:         log,
		cfg:         cfg.Normalize(),
		concurrency: defaultSnapshotConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *ExportProgressReportHandler) WithClock(now func() time.Time) *ExportProgressReportHandler {
	h.now = now
	return h
}

// WithConcurrency ограничивает число одновременных загрузок студентов.
func (h *ExportProgressReportHandler) WithConcurrency(n int) *ExportProgressReportHandler {
	if n > 0 {
		h.concurrency = n
	}
	return h
}

// BuildReport строит отчёт супервайзера без экспорта.
func (h *ExportProgressReportHandler) BuildReport(ctx context.Context, supervisorID string, filter analytics.ReportFilter) (*analytics.SupervisorReport, error) {
	supervisor, err := resolveSupervisor(ctx, h.users, supervisorID)
	if err != nil {
		return nil, err
	}

	students, err := h.users.GetStudentsBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, err
	}

	// Явно запрошенный студент вне закреплённого набора - ошибка
	// доступа, а не молчаливая фильтрация.
	supervised := make(map[string]struct{}, len(students))
	for _, st := range students {
		supervised[st.ID] = struct{}{}
	}
	for _, id := range filter.StudentIDs {
		if _, ok := supervised[id]; !ok {
			return nil, shared.ErrStudentNotOwned
		}
	}

	scoped := make([]*user.User, 0, len(students))
	for _, st := range students {
		if filter.IncludesStudent(st.ID) {
			scoped = append(scoped, st)
		}
	}

	snapshots, err := fetchSnapshots(ctx, h.milestones, scoped, filter.MilestoneFilter(), h.concurrency)
	if err != nil {
		return nil, err
	}

	report := analytics.ComposeReport(h.now(), supervisor.ID, supervisor.DisplayName, filter, snapshots, h.cfg)
	return &report, nil
}

// Handle строит отчёт и сериализует его в запрошенный формат.
func (h *ExportProgressReportHandler) Handle(ctx context.Context, q ExportProgressReportQuery) (*ExportedReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	report, err := h.BuildReport(ctx, q.SupervisorID, q.Filter)
	if err != nil {
		return nil, err
	}

	var (
		content  []byte
		mimeType string
		ext      string
	)
	switch q.Format {
	case FormatCSV:
		content = renderCSV(report)
		mimeType = "text/csv"
		ext = "csv"
	case FormatPDF:
		content = renderTextSummary(report)
		mimeType = "application/pdf"
		ext = "pdf"
	}

	filename := fmt.Sprintf("progress-report-%s-%s.%s",
		report.GeneratedAt.Format("2006-01-02"),
		uuid.NewString()[:8],
		ext,
	)

	h.log.Info("progress report exported",
		zap.String("supervisor_id", q.SupervisorID),
		zap.String("format", string(q.Format)),
		zap.Int("students", report.TotalStudents),
		zap.Int("size", len(content)),
	)

	return &ExportedReport{
		Format:   q.Format,
		Filename: filename,
		MimeType: mimeType,
		Content:  content,
		Size:     len(content),
	}, nil
}

// csvHeader - фиксированный заголовок плоской выгрузки.
var csvHeader = []string{
	"student_id", "student_name", "total_milestones", "completed",
	"in_progress", "not_started", "blocked", "overdue",
	"completion_rate", "risk_score", "risk_level", "project_count",
}

// renderCSV сериализует сводки в CSV-таблицу.
func renderCSV(report *analytics.SupervisorReport) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteByte('\n')

	for _, s := range report.StudentSummaries {
		row := []string{
			s.StudentID,
			csvEscape(s.StudentName),
			fmt.Sprintf("%d", s.TotalMilestones),
			fmt.Sprintf("%d", s.Completed),
			fmt.Sprintf("%d", s.InProgress),
			fmt.Sprintf("%d", s.NotStarted),
			fmt.Sprintf("%d", s.Blocked),
			fmt.Sprintf("%d", s.Overdue),
			fmt.Sprintf("%.2f", s.CompletionRate),
			fmt.Sprintf("%.2f", s.RiskScore),
			string(s.RiskLevel),
			fmt.Sprintf("%d", s.ProjectCount),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// csvEscape экранирует значение с запятыми или кавычками.
func csvEscape(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// renderTextSummary сериализует отчёт в текстовый PDF-заменитель.
func renderTextSummary(report *analytics.SupervisorReport) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Progress Report - %s\n", report.SupervisorName)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Students: %d\n", report.TotalStudents)
	fmt.Fprintf(&b, "Milestones: %d total, %d completed, %d overdue, %d blocked\n",
		report.TotalMilestones, report.CompletedMilestones, report.OverdueMilestones, report.BlockedMilestones)
	fmt.Fprintf(&b, "Overall completion: %.2f%%\n\n", report.OverallCompletion)

	for _, s := range report.StudentSummaries {
		fmt.Fprintf(&b, "- %s: %.2f%% complete, risk %s (%.2f), %d overdue, %d blocked\n",
			s.StudentName, s.CompletionRate, s.RiskLevel, s.RiskScore, s.Overdue, s.Blocked)
	}

	return []byte(b.String())
}
