package analytics

import (
	"fmt"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// TREND ANALYSIS
// Тренды описывают состав текущего периода, а не продольную динамику:
// исторические снимки метрик не сохраняются, поэтому метки трендов
// по умолчанию "stable". См. замечание в metrics.go.
// ══════════════════════════════════════════════════════════════════════════════

// CompletionTrend - состав выполнения.
type CompletionTrend struct {
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Rate      float64  `json:"rate"`
	Trend     TrendTag `json:"trend"`
}

// WorkloadTrend - трудозатраты.
type WorkloadTrend struct {
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
	TotalActualHours    float64  `json:"total_actual_hours"`
	EfficiencyRatio     float64  `json:"efficiency_ratio"`
	Trend               TrendTag `json:"trend"`
}

// QualityTrend - прокси качества документирования через заметки.
type QualityTrend struct {
	// DocumentationScore - среднее число заметок на веху × 20,
	// ограниченное сверху 100.
	DocumentationScore float64  `json:"documentation_score"`
	Trend              TrendTag `json:"trend"`
}

// PriorityTrend - распределение приоритетов.
type PriorityTrend struct {
	Distribution      map[milestone.Priority]int `json:"distribution"`
	HighPriorityRatio float64                    `json:"high_priority_ratio"`
	Trend             TrendTag                   `json:"trend"`
}

// TrendIndicators - качественные индикаторы текущего состояния.
type TrendIndicators struct {
	// CompletionTrend - "positive", если есть хотя бы одна выполненная
	// веха, иначе "neutral".
	CompletionTrend TrendTag `json:"completion_trend"`

	// RiskTrend - "increasing", если есть просроченные вехи, иначе "stable".
	RiskTrend TrendTag `json:"risk_trend"`
}

// TrendAnalysis - полный результат анализа трендов одного студента.
type TrendAnalysis struct {
	Completion CompletionTrend `json:"completion"`
	Workload   WorkloadTrend   `json:"workload"`
	Quality    QualityTrend    `json:"quality"`
	Priority   PriorityTrend   `json:"priority"`
	Indicators TrendIndicators `json:"indicators"`
	Insights   []string        `json:"insights"`
}

// TrendAnalyzer вычисляет тренды по снимку вех.
type TrendAnalyzer struct {
	cfg Config
}

// NewTrendAnalyzer создаёт анализатор трендов.
func NewTrendAnalyzer(cfg Config) *TrendAnalyzer {
	return &TrendAnalyzer{cfg: cfg.Normalize()}
}

// Analyze вычисляет тренды по всем вехам студента.
func (a *TrendAnalyzer) Analyze(now time.Time, milestones []*milestone.Milestone) TrendAnalysis {
	result := TrendAnalysis{
		Completion: CompletionTrend{Trend: TrendStable},
		Workload:   WorkloadTrend{Trend: TrendStable},
		Quality:    QualityTrend{Trend: TrendStable},
		Priority: PriorityTrend{
			Distribution: make(map[milestone.Priority]int, 4),
			Trend:        TrendStable,
		},
	}
	for _, p := range milestone.AllPriorities() {
		result.Priority.Distribution[p] = 0
	}

	completed := 0
	overdue := 0
	elevated := 0
	totalNotes := 0
	for _, m := range milestones {
		if m.IsCompleted() {
			completed++
		}
		if m.IsOverdue(now) {
			overdue++
		}
		if m.Priority.IsElevated() {
			elevated++
		}
		totalNotes += len(m.Notes)
		result.Priority.Distribution[m.Priority]++

		result.Workload.TotalEstimatedHours += m.EstimatedHours
		result.Workload.TotalActualHours += m.ActualHours
	}

	total := len(milestones)
	result.Completion.Total = total
	result.Completion.Completed = completed
	if total > 0 {
		result.Completion.Rate = Round2(float64(completed) / float64(total) * 100)
		result.Priority.HighPriorityRatio = Round2(float64(elevated) / float64(total))
		result.Quality.DocumentationScore = Round2(Clamp(float64(totalNotes)/float64(total)*20, 0, 100))
	}

	if result.Workload.TotalEstimatedHours > 0 {
		result.Workload.EfficiencyRatio = Round2(result.Workload.TotalActualHours / result.Workload.TotalEstimatedHours)
	}

	result.Indicators = TrendIndicators{
		CompletionTrend: TrendNeutral,
		RiskTrend:       TrendStable,
	}
	if completed > 0 {
		result.Indicators.CompletionTrend = TrendPositive
	}
	if overdue > 0 {
		result.Indicators.RiskTrend = TrendIncreasing
	}

	result.Insights = a.buildInsights(result.Indicators, overdue)
	return result
}

// buildInsights строит человекочитаемые выводы по индикаторам.
func (a *TrendAnalyzer) buildInsights(ind TrendIndicators, overdue int) []string {
	var insights []string
	if ind.CompletionTrend == TrendPositive {
		insights = append(insights, "Milestone completion is progressing; keep the current pace.")
	} else {
		insights = append(insights, "No milestones completed yet; an early win would build momentum.")
	}
	if ind.RiskTrend == TrendIncreasing {
		insights = append(insights, fmt.Sprintf("Risk is increasing: %d overdue milestone(s) need attention.", overdue))
	}
	return insights
}
