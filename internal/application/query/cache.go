// Package query содержит операции чтения (CQRS - Queries) движка
// аналитики: сводку по студенту, сравнение с шаблоном, дашборд
// супервайзера и экспорт отчётов.
package query

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CAPABILITY
// Кеш - опциональная зависимость: nil-кеш и любые ошибки кеша никогда
// не блокируют вычисление, обработчики деградируют до прямого счёта.
// ══════════════════════════════════════════════════════════════════════════════

// Cache - минимальная способность key→value кеша с TTL.
// Реализация находится в infrastructure/persistence/redis.
type Cache interface {
	// Get читает значение по ключу в dest.
	// Возвращает (false, nil) при промахе.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set записывает значение с указанным TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete удаляет ключи.
	Delete(ctx context.Context, keys ...string) error
}

// TTL кешируемых результатов.
const (
	// TTLStudentOverview - сводка вех студента.
	TTLStudentOverview = 15 * time.Minute

	// TTLStudentAnalytics - полная аналитика студента.
	TTLStudentAnalytics = time.Hour

	// TTLSupervisorDashboard - дашборд супервайзера.
	TTLSupervisorDashboard = 20 * time.Minute

	// TTLSupervisorSummaries - сводки студентов супервайзера.
	TTLSupervisorSummaries = 20 * time.Minute
)

// Ключи кеша, неймспейс по назначению и идентификатору.

// CacheKeyStudentOverview возвращает ключ сводки вех студента.
func CacheKeyStudentOverview(studentID string) string {
	return "progress:" + studentID
}

// CacheKeyStudentAnalytics возвращает ключ аналитики студента.
func CacheKeyStudentAnalytics(studentID string) string {
	return "analytics:" + studentID
}

// CacheKeySupervisorDashboard возвращает ключ дашборда супервайзера.
func CacheKeySupervisorDashboard(supervisorID string) string {
	return "supervisor:dashboard:" + supervisorID
}

// CacheKeySupervisorSummaries возвращает ключ сводок супервайзера.
func CacheKeySupervisorSummaries(supervisorID string) string {
	return "supervisor:summaries:" + supervisorID
}
