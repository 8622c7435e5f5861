package analytics

import (
	"fmt"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATE COMPARISON
// Сравнение фактического прогресса студента с ожидаемой кривой,
// выведенной из шаблона вех. Подбор шаблона (явный ID или самый
// используемый активный) делает слой application.
// ══════════════════════════════════════════════════════════════════════════════

// CurrentProgress - фактический прогресс студента.
type CurrentProgress struct {
	CompletedCount        int     `json:"completed_count"`
	TotalCount            int     `json:"total_count"`
	CompletionRate        float64 `json:"completion_rate"`
	AverageCompletionDays float64 `json:"average_completion_days"`
}

// ExpectedProgress - ожидаемый прогресс по шаблону.
type ExpectedProgress struct {
	MilestoneCount         int     `json:"milestone_count"`
	CompletionRate         float64 `json:"completion_rate"`
	EstimatedDurationWeeks float64 `json:"estimated_duration_weeks"`
}

// Deviation - зафиксированное отклонение от ожидаемого прогресса.
type Deviation struct {
	Metric      string    `json:"metric"`
	Severity    RiskLevel `json:"severity"`
	Description string    `json:"description"`
}

// ProgressComparison - результат сравнения с шаблоном.
type ProgressComparison struct {
	TemplateID   string `json:"template_id"`
	TemplateName string `json:"template_name"`

	Current  CurrentProgress  `json:"current"`
	Expected ExpectedProgress `json:"expected"`

	// CompletionRateDifference - фактический rate минус ожидаемый.
	CompletionRateDifference float64 `json:"completion_rate_difference"`

	// MilestoneDifference - фактическое число вех минус ожидаемое.
	MilestoneDifference int `json:"milestone_difference"`

	// PerformanceRatio - фактический rate / ожидаемый (0 при нулевом
	// ожидаемом).
	PerformanceRatio float64 `json:"performance_ratio"`

	Deviations      []Deviation `json:"deviations"`
	Recommendations []string    `json:"recommendations"`
}

// TemplateComparator сравнивает прогресс с шаблоном.
type TemplateComparator struct {
	cfg Config
}

// NewTemplateComparator создаёт компаратор.
func NewTemplateComparator(cfg Config) *TemplateComparator {
	return &TemplateComparator{cfg: cfg.Normalize()}
}

// Compare сравнивает снимок вех студента с шаблоном.
func (c *TemplateComparator) Compare(now time.Time, milestones []*milestone.Milestone, tmpl *milestone.Template) ProgressComparison {
	current := c.currentProgress(milestones)
	expected := ExpectedProgress{
		MilestoneCount:         tmpl.MilestoneCount(),
		CompletionRate:         c.cfg.ExpectedCompletionRate,
		EstimatedDurationWeeks: tmpl.EstimatedDurationWeeks,
	}

	comparison := ProgressComparison{
		TemplateID:               tmpl.ID,
		TemplateName:             tmpl.Name,
		Current:                  current,
		Expected:                 expected,
		CompletionRateDifference: Round2(current.CompletionRate - expected.CompletionRate),
		MilestoneDifference:      current.TotalCount - expected.MilestoneCount,
	}
	if expected.CompletionRate > 0 {
		comparison.PerformanceRatio = Round2(current.CompletionRate / expected.CompletionRate)
	}

	comparison.Deviations = c.findDeviations(comparison)
	comparison.Recommendations = c.buildRecommendations(comparison)
	return comparison
}

// currentProgress сворачивает вехи в фактический прогресс.
func (c *TemplateComparator) currentProgress(milestones []*milestone.Milestone) CurrentProgress {
	progress := CurrentProgress{TotalCount: len(milestones)}

	var totalDays float64
	for _, m := range milestones {
		if m.IsCompleted() {
			progress.CompletedCount++
			totalDays += m.DaysToComplete()
		}
	}
	if progress.TotalCount > 0 {
		progress.CompletionRate = Round2(float64(progress.CompletedCount) / float64(progress.TotalCount) * 100)
	}
	if progress.CompletedCount > 0 {
		progress.AverageCompletionDays = Round2(totalDays / float64(progress.CompletedCount))
	}
	return progress
}

// findDeviations отмечает отклонение completionRate от ожидаемого.
func (c *TemplateComparator) findDeviations(comparison ProgressComparison) []Deviation {
	var deviations []Deviation

	diff := comparison.CompletionRateDifference
	abs := diff
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs > c.cfg.DeviationHighThreshold:
		deviations = append(deviations, Deviation{
			Metric:      "completion_rate",
			Severity:    RiskHigh,
			Description: fmt.Sprintf("Completion rate deviates from the template baseline by %.1f points.", diff),
		})
	case abs > c.cfg.DeviationMediumThreshold:
		deviations = append(deviations, Deviation{
			Metric:      "completion_rate",
			Severity:    RiskMedium,
			Description: fmt.Sprintf("Completion rate deviates from the template baseline by %.1f points.", diff),
		})
	}

	return deviations
}

// buildRecommendations строит рекомендации по сравнению.
func (c *TemplateComparator) buildRecommendations(comparison ProgressComparison) []string {
	var recs []string
	if comparison.CompletionRateDifference < -c.cfg.DeviationMediumThreshold {
		recs = append(recs, "Progress is behind the template baseline; increase completion velocity.")
	}
	if comparison.PerformanceRatio > 0 && comparison.PerformanceRatio < c.cfg.UnderperformanceRatio {
		recs = append(recs, "Performance ratio is low; review the project scope with the supervisor.")
	}
	return recs
}
