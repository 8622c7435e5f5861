package analytics

// ══════════════════════════════════════════════════════════════════════════════
// TUNING PARAMETERS
// Весовые коэффициенты и эвристики вынесены в конфигурацию: значения по
// умолчанию подобраны эмпирически и не являются доменными законами.
// ══════════════════════════════════════════════════════════════════════════════

// Config содержит настраиваемые параметры вычислений.
// Нулевое значение непригодно; используйте DefaultConfig как основу.
type Config struct {
	// VelocityWindowDays - окно ретроспективы для метрик скорости, в днях.
	VelocityWindowDays int

	// OverdueWeight, BlockedWeight, HighPriorityWeight - веса слагаемых
	// riskScore в анализе критического пути.
	OverdueWeight      float64
	BlockedWeight      float64
	HighPriorityWeight float64

	// WeeksPerCriticalMilestone - грубая эвристика планирования: сколько
	// недель закладывать на одну критическую веху.
	WeeksPerCriticalMilestone int

	// RiskAlertThreshold - порог riskScore, при превышении которого
	// добавляется рекомендация о снижении риска.
	RiskAlertThreshold float64

	// ExpectedCompletionRate - базовая ожидаемая доля выполнения (в
	// процентах) при сравнении с шаблоном.
	ExpectedCompletionRate float64

	// DeviationMediumThreshold, DeviationHighThreshold - пороги отклонения
	// completionRate (в процентных пунктах) для severity medium / high.
	DeviationMediumThreshold float64
	DeviationHighThreshold   float64

	// UnderperformanceRatio - порог performanceRatio, ниже которого
	// рекомендуется пересмотр объёма работ.
	UnderperformanceRatio float64

	// SummaryOverdueWeight, SummaryBlockedWeight, SummaryHighPriorityWeight -
	// веса долей в riskScore сводки по студенту (сумма должна быть 1.0).
	SummaryOverdueWeight      float64
	SummaryBlockedWeight      float64
	SummaryHighPriorityWeight float64
}

// DefaultConfig возвращает параметры по умолчанию.
func DefaultConfig() Config {
	return Config{
		VelocityWindowDays:        90,
		OverdueWeight:             3,
		BlockedWeight:             2,
		HighPriorityWeight:        1,
		WeeksPerCriticalMilestone: 2,
		RiskAlertThreshold:        0.7,
		ExpectedCompletionRate:    75,
		DeviationMediumThreshold:  10,
		DeviationHighThreshold:    20,
		UnderperformanceRatio:     0.8,
		SummaryOverdueWeight:      0.4,
		SummaryBlockedWeight:      0.3,
		SummaryHighPriorityWeight: 0.3,
	}
}

// Normalize подставляет значения по умолчанию вместо нулевых полей.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.VelocityWindowDays <= 0 {
		c.VelocityWindowDays = def.VelocityWindowDays
	}
	if c.OverdueWeight <= 0 {
		c.OverdueWeight = def.OverdueWeight
	}
	if c.BlockedWeight <= 0 {
		c.BlockedWeight = def.BlockedWeight
	}
	if c.HighPriorityWeight <= 0 {
		c.HighPriorityWeight = def.HighPriorityWeight
	}
	if c.WeeksPerCriticalMilestone <= 0 {
		c.WeeksPerCriticalMilestone = def.WeeksPerCriticalMilestone
	}
	if c.RiskAlertThreshold <= 0 {
		c.RiskAlertThreshold = def.RiskAlertThreshold
	}
	if c.ExpectedCompletionRate <= 0 {
		c.ExpectedCompletionRate = def.ExpectedCompletionRate
	}
	if c.DeviationMediumThreshold <= 0 {
		c.DeviationMediumThreshold = def.DeviationMediumThreshold
	}
	if c.DeviationHighThreshold <= 0 {
		c.DeviationHighThreshold = def.DeviationHighThreshold
	}
	if c.UnderperformanceRatio <= 0 {
		c.UnderperformanceRatio = def.UnderperformanceRatio
	}
	if c.SummaryOverdueWeight <= 0 {
		c.SummaryOverdueWeight = def.SummaryOverdueWeight
	}
	if c.SummaryBlockedWeight <= 0 {
		c.SummaryBlockedWeight = def.SummaryBlockedWeight
	}
	if c.SummaryHighPriorityWeight <= 0 {
		c.SummaryHighPriorityWeight = def.SummaryHighPriorityWeight
	}
	return c
}
