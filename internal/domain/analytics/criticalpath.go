package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
)

// ══════════════════════════════════════════════════════════════════════════════
// CRITICAL PATH & RISK
// Вехи не несут явного графа зависимостей, поэтому "критический путь"
// здесь - это приближение: CRITICAL-вехи в порядке дедлайнов, а не
// настоящий CPM по самому длинному пути. Если появятся данные о
// зависимостях, Analyze принимает их без изменения остальных входов.
// ══════════════════════════════════════════════════════════════════════════════

// Dependency - ребро будущего графа зависимостей вех.
// Сейчас принимается, но не участвует в вычислении.
type Dependency struct {
	FromID string
	ToID   string
}

// Bottleneck - заблокированная веха, мешающая дальнейшему прогрессу.
type Bottleneck struct {
	MilestoneID    string `json:"milestone_id"`
	Title          string `json:"title"`
	BlockingReason string `json:"blocking_reason"`
	DaysBlocked    int    `json:"days_blocked"`
}

// MilestoneRisk - оценка риска одной вехи.
type MilestoneRisk struct {
	MilestoneID string    `json:"milestone_id"`
	Title       string    `json:"title"`
	Score       float64   `json:"score"`
	Level       RiskLevel `json:"level"`
}

// RiskFactors - агрегированные факторы риска по оставшимся вехам.
type RiskFactors struct {
	OverdueCount      int `json:"overdue_count"`
	BlockedCount      int `json:"blocked_count"`
	HighPriorityCount int `json:"high_priority_count"`

	// RiskScore - взвешенная сумма факторов, делённая на количество
	// оставшихся вех. Сверху не ограничена.
	RiskScore float64 `json:"risk_score"`
}

// Weight возвращает riskScore, ограниченный 1.0, для использования как вес.
func (f RiskFactors) Weight() float64 {
	return Clamp(f.RiskScore, 0, 1)
}

// CriticalPathAnalysis - результат анализа критического пути и рисков.
type CriticalPathAnalysis struct {
	// CriticalMilestones - идентификаторы вех с повышенным приоритетом,
	// просроченных или заблокированных, в порядке дедлайнов.
	CriticalMilestones []string `json:"critical_milestones"`

	// CriticalPath - идентификаторы CRITICAL-вех в порядке дедлайнов.
	CriticalPath []string `json:"critical_path"`

	// Bottlenecks - заблокированные вехи.
	Bottlenecks []Bottleneck `json:"bottlenecks"`

	// RiskFactors - агрегированные факторы риска.
	RiskFactors RiskFactors `json:"risk_factors"`

	// MilestoneRisks - пооценочный риск каждой оставшейся вехи.
	MilestoneRisks []MilestoneRisk `json:"milestone_risks"`

	// Recommendations - рекомендации по снижению риска.
	Recommendations []string `json:"recommendations"`

	// EstimatedCompletionDate - прогноз завершения критического пути
	// (nil при пустом пути).
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
}

// CriticalPathAnalyzer вычисляет критический путь и риски.
type CriticalPathAnalyzer struct {
	cfg Config
}

// NewCriticalPathAnalyzer создаёт анализатор.
func NewCriticalPathAnalyzer(cfg Config) *CriticalPathAnalyzer {
	return &CriticalPathAnalyzer{cfg: cfg.Normalize()}
}

// Analyze вычисляет анализ по снимку всех вех студента. Выполненные и
// отменённые вехи отбрасываются, остальные рассматриваются в порядке
// дедлайнов. deps зарезервирован под граф зависимостей.
func (a *CriticalPathAnalyzer) Analyze(now time.Time, milestones []*milestone.Milestone, deps []Dependency) CriticalPathAnalysis {
	_ = deps // данных о зависимостях пока нет в хранилище

	remaining := make([]*milestone.Milestone, 0, len(milestones))
	for _, m := range milestones {
		if !m.Status.IsTerminal() {
			remaining = append(remaining, m)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].DueDate.Before(remaining[j].DueDate)
	})

	analysis := CriticalPathAnalysis{}

	for _, m := range remaining {
		overdue := m.IsOverdue(now)
		blocked := m.IsBlocked()

		if overdue {
			analysis.RiskFactors.OverdueCount++
		}
		if blocked {
			analysis.RiskFactors.BlockedCount++

			daysBlocked := int(now.Sub(m.UpdatedAt).Hours() / 24)
			if daysBlocked < 0 {
				daysBlocked = 0
			}
			analysis.Bottlenecks = append(analysis.Bottlenecks, Bottleneck{
				MilestoneID:    m.ID,
				Title:          m.Title,
				BlockingReason: m.BlockingReason,
				DaysBlocked:    daysBlocked,
			})
		}
		if m.Priority.IsElevated() {
			analysis.RiskFactors.HighPriorityCount++
		}

		if m.Priority.IsElevated() || overdue || blocked {
			analysis.CriticalMilestones = append(analysis.CriticalMilestones, m.ID)
		}
		if m.Priority == milestone.PriorityCritical {
			analysis.CriticalPath = append(analysis.CriticalPath, m.ID)
		}

		analysis.MilestoneRisks = append(analysis.MilestoneRisks, a.scoreMilestone(now, m))
	}

	if len(remaining) > 0 {
		f := &analysis.RiskFactors
		weighted := a.cfg.OverdueWeight*float64(f.OverdueCount) +
			a.cfg.BlockedWeight*float64(f.BlockedCount) +
			a.cfg.HighPriorityWeight*float64(f.HighPriorityCount)
		f.RiskScore = Round2(weighted / float64(len(remaining)))
	}

	if n := len(analysis.CriticalPath); n > 0 {
		estimated := DateOnly(now.AddDate(0, 0, n*a.cfg.WeeksPerCriticalMilestone*7))
		analysis.EstimatedCompletionDate = &estimated
	}

	analysis.Recommendations = a.buildRecommendations(analysis)
	return analysis
}

// scoreMilestone оценивает риск одной вехи.
// Шкала: 3×просрочена + 2×заблокирована + 2×CRITICAL + 1×HIGH;
// ≥4 - high, ≥2 - medium, иначе low.
func (a *CriticalPathAnalyzer) scoreMilestone(now time.Time, m *milestone.Milestone) MilestoneRisk {
	score := 0.0
	if m.IsOverdue(now) {
		score += 3
	}
	if m.IsBlocked() {
		score += 2
	}
	switch m.Priority {
	case milestone.PriorityCritical:
		score += 2
	case milestone.PriorityHigh:
		score += 1
	}

	level := RiskLow
	switch {
	case score >= 4:
		level = RiskHigh
	case score >= 2:
		level = RiskMedium
	}

	return MilestoneRisk{
		MilestoneID: m.ID,
		Title:       m.Title,
		Score:       score,
		Level:       level,
	}
}

// buildRecommendations строит рекомендации по результатам анализа.
func (a *CriticalPathAnalyzer) buildRecommendations(analysis CriticalPathAnalysis) []string {
	var recs []string
	if len(analysis.CriticalMilestones) > 0 {
		recs = append(recs, fmt.Sprintf("Prioritize the %d critical milestone(s) before taking on new work.", len(analysis.CriticalMilestones)))
	}
	if len(analysis.Bottlenecks) > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d blocked milestone(s); escalate blocking reasons to the supervisor.", len(analysis.Bottlenecks)))
	}
	if analysis.RiskFactors.RiskScore > a.cfg.RiskAlertThreshold {
		recs = append(recs, "Overall risk is elevated; consider rescheduling or reducing scope.")
	}
	return recs
}
