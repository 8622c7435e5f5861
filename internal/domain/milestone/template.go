package milestone

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE TEMPLATES
// Шаблон - это переиспользуемый план вех с относительными сроками.
// Движок аналитики читает шаблоны только для сравнения прогресса.
// ══════════════════════════════════════════════════════════════════════════════

// TemplateItem представляет одну веху внутри шаблона.
type TemplateItem struct {
	// Title - название вехи.
	Title string

	// Description - описание.
	Description string

	// DaysFromStart - смещение дедлайна от начала проекта в днях.
	DaysFromStart int

	// Priority - приоритет вехи по шаблону.
	Priority Priority

	// EstimatedHours - оценка трудозатрат.
	EstimatedHours float64
}

// Template представляет шаблон набора вех.
type Template struct {
	// ID - идентификатор шаблона.
	ID string

	// Name - название шаблона.
	Name string

	// Description - описание.
	Description string

	// Items - вехи шаблона в порядке DaysFromStart.
	Items []TemplateItem

	// EstimatedDurationWeeks - ожидаемая длительность в неделях.
	EstimatedDurationWeeks float64

	// IsActive - доступен ли шаблон для использования.
	IsActive bool

	// UsageCount - сколько раз шаблон применялся.
	UsageCount int

	// CreatedAt - время создания.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// TotalEstimatedHours возвращает суммарную оценку трудозатрат шаблона.
func (t *Template) TotalEstimatedHours() float64 {
	var sum float64
	for _, item := range t.Items {
		sum += item.EstimatedHours
	}
	return sum
}

// MilestoneCount возвращает количество вех в шаблоне.
func (t *Template) MilestoneCount() int {
	return len(t.Items)
}
