// Package analytics содержит чистый вычислительный слой ProjectHub:
// метрики скорости выполнения, тренды, анализ критического пути и рисков,
// сравнение с шаблоном и агрегированные отчёты для супервайзеров.
// Все вычисления - чистые свёртки над снимком вех на момент запроса:
// пакет не изменяет состояние и не обращается к хранилищу.
package analytics

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// RiskLevel - качественная оценка риска.
type RiskLevel string

const (
	// RiskLow - низкий риск.
	RiskLow RiskLevel = "low"
	// RiskMedium - средний риск.
	RiskMedium RiskLevel = "medium"
	// RiskHigh - высокий риск.
	RiskHigh RiskLevel = "high"
)

// Confidence - уверенность прогноза.
type Confidence string

const (
	// ConfidenceLow - мало данных для прогноза.
	ConfidenceLow Confidence = "low"
	// ConfidenceMedium - умеренная уверенность.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceHigh - высокая уверенность.
	ConfidenceHigh Confidence = "high"
)

// TrendTag - качественная метка тренда.
type TrendTag string

const (
	// TrendStable - без выраженной динамики.
	TrendStable TrendTag = "stable"
	// TrendPositive - положительная динамика.
	TrendPositive TrendTag = "positive"
	// TrendNeutral - нейтральная динамика.
	TrendNeutral TrendTag = "neutral"
	// TrendIncreasing - растущий риск.
	TrendIncreasing TrendTag = "increasing"
)

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Round2 округляет значение до 2 знаков после запятой.
// Все проценты и скорости в пакете отдаются с этой точностью.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp ограничивает значение диапазоном [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// DateOnly усекает время до календарной даты в UTC.
// Все даты в результатах - календарные, без времени суток.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
