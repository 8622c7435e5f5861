package analytics

import (
	"fmt"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS BUNDLE
// Композиция четырёх анализов в одну сводку по студенту с общей оценкой
// эффективности. Оркестрацию (конкурентный запуск, кеш) делает слой
// application; здесь только чистая свёртка результатов.
//
// Метки трендов отражают состав текущего периода: продольные тренды
// потребовали бы хранилища периодических снимков метрик, которого
// в платформе нет.
// ══════════════════════════════════════════════════════════════════════════════

// ProductivityMetrics - производные метрики продуктивности.
type ProductivityMetrics struct {
	// EfficiencyRatio - фактические часы / оценочные часы.
	EfficiencyRatio float64 `json:"efficiency_ratio"`

	// ProductivityScore - доля выполненных вех × 100.
	ProductivityScore float64 `json:"productivity_score"`

	// TimeAccuracy - |1 − actual/estimated| × 100; 0 при нулевой оценке.
	TimeAccuracy float64 `json:"time_accuracy"`
}

// AnalyticsMetrics - полная сводка аналитики одного студента.
type AnalyticsMetrics struct {
	StudentID string `json:"student_id"`

	// GeneratedAt - момент вычисления сводки.
	GeneratedAt time.Time `json:"generated_at"`

	Velocity     CompletionVelocityMetrics `json:"velocity"`
	Trends       TrendAnalysis             `json:"trends"`
	CriticalPath CriticalPathAnalysis      `json:"critical_path"`

	// Comparison - сравнение с шаблоном; nil, если подходящего шаблона нет.
	Comparison *ProgressComparison `json:"comparison,omitempty"`

	// PerformanceScore - общая оценка эффективности [0, 100].
	PerformanceScore float64 `json:"performance_score"`

	// KeyInsights - ключевые выводы по правилам.
	KeyInsights []string `json:"key_insights"`

	Productivity ProductivityMetrics `json:"productivity"`
}

// ComposeMetrics собирает сводку из результатов четырёх анализов.
func ComposeMetrics(
	studentID string,
	now time.Time,
	milestones []*milestone.Milestone,
	velocity CompletionVelocityMetrics,
	trends TrendAnalysis,
	criticalPath CriticalPathAnalysis,
	comparison *ProgressComparison,
	cfg Config,
) AnalyticsMetrics {
	cfg = cfg.Normalize()

	return AnalyticsMetrics{
		StudentID:        studentID,
		GeneratedAt:      now,
		Velocity:         velocity,
		Trends:           trends,
		CriticalPath:     criticalPath,
		Comparison:       comparison,
		PerformanceScore: performanceScore(velocity.CompletionRate, criticalPath.RiskFactors.RiskScore),
		KeyInsights:      keyInsights(velocity, criticalPath, cfg),
		Productivity:     productivityMetrics(milestones, trends),
	}
}

// performanceScore вычисляет общую оценку эффективности.
// База 50, бонус за completionRate до +30, штраф за риск до −20.
func performanceScore(completionRate, riskScore float64) float64 {
	bonus := completionRate * 0.3
	if bonus > 30 {
		bonus = 30
	}
	penalty := riskScore * 20
	if penalty > 20 {
		penalty = 20
	}
	return Round2(Clamp(50+bonus-penalty, 0, 100))
}

// keyInsights строит выводы по пороговым правилам.
func keyInsights(velocity CompletionVelocityMetrics, criticalPath CriticalPathAnalysis, cfg Config) []string {
	var insights []string

	switch {
	case velocity.CompletionRate > 80:
		insights = append(insights, "Excellent completion rate over the current window.")
	case velocity.CompletionRate < 50:
		insights = append(insights, "Completion rate needs improvement.")
	}

	if criticalPath.RiskFactors.RiskScore > cfg.RiskAlertThreshold {
		insights = append(insights, fmt.Sprintf("High risk detected: %d overdue and %d blocked milestone(s).",
			criticalPath.RiskFactors.OverdueCount, criticalPath.RiskFactors.BlockedCount))
	}

	if velocity.WeeklyVelocity > 1.5 {
		insights = append(insights, "Strong completion velocity; ahead of the typical pace.")
	}

	return insights
}

// productivityMetrics сворачивает вехи в метрики продуктивности.
func productivityMetrics(milestones []*milestone.Milestone, trends TrendAnalysis) ProductivityMetrics {
	metrics := ProductivityMetrics{
		EfficiencyRatio: trends.Workload.EfficiencyRatio,
	}

	if len(milestones) > 0 {
		metrics.ProductivityScore = Round2(float64(trends.Completion.Completed) / float64(len(milestones)) * 100)
	}

	if trends.Workload.TotalEstimatedHours > 0 {
		ratio := trends.Workload.TotalActualHours / trends.Workload.TotalEstimatedHours
		deviation := 1 - ratio
		if deviation < 0 {
			deviation = -deviation
		}
		metrics.TimeAccuracy = Round2(deviation * 100)
	}

	return metrics
}
