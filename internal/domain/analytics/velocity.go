package analytics

import (
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETION VELOCITY
// Скорость выполнения вех: доля выполненного, недельная скорость,
// среднее время выполнения и прогноз даты завершения.
// ══════════════════════════════════════════════════════════════════════════════

// VelocityBucket - количество выполненных вех за одну 7-дневную корзину окна.
type VelocityBucket struct {
	// WeekStart - начало корзины (календарная дата).
	WeekStart time.Time `json:"week_start"`

	// Completed - выполнено вех внутри корзины.
	Completed int `json:"completed"`
}

// CompletionPrediction - прогноз завершения оставшейся работы.
type CompletionPrediction struct {
	// EstimatedCompletionDate - прогнозная дата завершения (nil, если
	// скорость нулевая и прогноз невозможен).
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`

	// EstimatedWeeks - прогнозное количество недель до завершения.
	EstimatedWeeks float64 `json:"estimated_weeks"`

	// Confidence - уверенность прогноза, по количеству выполненных вех
	// за всю историю.
	Confidence Confidence `json:"confidence"`
}

// CompletionVelocityMetrics - метрики скорости выполнения одного студента.
type CompletionVelocityMetrics struct {
	// CompletionRate - доля вех, выполненных внутри окна, от всех вех
	// студента, в процентах [0, 100].
	CompletionRate float64 `json:"completion_rate"`

	// WeeklyVelocity - выполнено вех в неделю внутри окна.
	WeeklyVelocity float64 `json:"weekly_velocity"`

	// AverageCompletionDays - среднее время от создания вехи до
	// выполнения, в днях.
	AverageCompletionDays float64 `json:"average_completion_days"`

	// Trend - корзины окна от старых к новым.
	Trend []VelocityBucket `json:"trend"`

	// Prediction - прогноз завершения.
	Prediction CompletionPrediction `json:"prediction"`
}

// VelocityCalculator вычисляет метрики скорости выполнения.
type VelocityCalculator struct {
	cfg Config
}

// NewVelocityCalculator создаёт калькулятор с указанной конфигурацией.
func NewVelocityCalculator(cfg Config) *VelocityCalculator {
	return &VelocityCalculator{cfg: cfg.Normalize()}
}

// Calculate вычисляет метрики скорости по снимку всех вех студента.
// now передаётся явно: результат детерминирован для одинаковых входов.
func (c *VelocityCalculator) Calculate(now time.Time, milestones []*milestone.Milestone) CompletionVelocityMetrics {
	windowDays := c.cfg.VelocityWindowDays
	windowStart := now.AddDate(0, 0, -windowDays)

	var completedInWindow []*milestone.Milestone
	completedEver := 0
	incomplete := 0
	for _, m := range milestones {
		if m.IsCompleted() {
			completedEver++
			if m.CompletedWithin(windowStart, now) {
				completedInWindow = append(completedInWindow, m)
			}
		} else if m.Status != milestone.StatusCancelled {
			incomplete++
		}
	}

	metrics := CompletionVelocityMetrics{
		Trend: c.buildTrend(now, windowStart, completedInWindow),
	}

	if len(milestones) > 0 {
		metrics.CompletionRate = Round2(float64(len(completedInWindow)) / float64(len(milestones)) * 100)
	}

	weeks := float64(windowDays) / 7
	if weeks > 0 {
		metrics.WeeklyVelocity = Round2(float64(len(completedInWindow)) / weeks)
	}

	if len(completedInWindow) > 0 {
		var totalDays float64
		for _, m := range completedInWindow {
			totalDays += m.DaysToComplete()
		}
		metrics.AverageCompletionDays = Round2(totalDays / float64(len(completedInWindow)))
	}

	metrics.Prediction = c.predict(now, metrics.WeeklyVelocity, incomplete, completedEver)
	return metrics
}

// buildTrend разбивает окно на 7-дневные корзины от старых к новым.
// Последняя корзина может быть короче семи дней и заканчивается в now.
func (c *VelocityCalculator) buildTrend(now, windowStart time.Time, completed []*milestone.Milestone) []VelocityBucket {
	bucketCount := (c.cfg.VelocityWindowDays + 6) / 7
	buckets := make([]VelocityBucket, 0, bucketCount)

	for i := 0; i < bucketCount; i++ {
		from := windowStart.AddDate(0, 0, i*7)
		to := from.AddDate(0, 0, 7)
		if to.After(now) {
			to = now
		}

		count := 0
		for _, m := range completed {
			// Границы корзин полуоткрытые, чтобы веха не попала в две корзины.
			if m.CompletedAt != nil && !m.CompletedAt.Before(from) && m.CompletedAt.Before(to) {
				count++
			}
		}

		buckets = append(buckets, VelocityBucket{
			WeekStart: DateOnly(from),
			Completed: count,
		})
	}

	return buckets
}

// predict строит прогноз завершения оставшихся вех.
func (c *VelocityCalculator) predict(now time.Time, weeklyVelocity float64, incomplete, completedEver int) CompletionPrediction {
	confidence := ConfidenceHigh
	switch {
	case completedEver < 3:
		confidence = ConfidenceLow
	case completedEver < 8:
		confidence = ConfidenceMedium
	}

	if weeklyVelocity == 0 {
		return CompletionPrediction{Confidence: ConfidenceLow}
	}

	weeks := float64(incomplete) / weeklyVelocity
	estimated := DateOnly(now.AddDate(0, 0, int(weeks*7)))

	return CompletionPrediction{
		EstimatedCompletionDate: &estimated,
		EstimatedWeeks:          Round2(weeks),
		Confidence:              confidence,
	}
}
