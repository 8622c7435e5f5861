package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// Общие шаги обработчиков супервайзера: проверка роли, конкурентный
// сбор снимков вех по студентам и fail-open работа с кешем.
// ══════════════════════════════════════════════════════════════════════════════

// defaultSnapshotConcurrency - сколько студентов загружать одновременно.
const defaultSnapshotConcurrency = 8

// resolveSupervisor возвращает супервайзера или ErrSupervisorNotFound.
func resolveSupervisor(ctx context.Context, users user.Repository, supervisorID string) (*user.User, error) {
	u, err := users.GetByID(ctx, supervisorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSupervisorNotFound
		}
		return nil, err
	}
	if !u.IsSupervisor() {
		return nil, shared.ErrSupervisorNotFound
	}
	return u, nil
}

// fetchSnapshots конкурентно загружает снимки вех всех студентов.
// Пайплайны по студентам независимы; порядок завершения не влияет на
// результат, так как свёртки дальше детерминированно сортируют вход.
// Ошибка хранилища любого студента прерывает запрос целиком.
func fetchSnapshots(
	ctx context.Context,
	repo milestone.Repository,
	students []*user.User,
	filter milestone.Filter,
	concurrency int,
) ([]analytics.StudentMilestones, error) {
	if concurrency <= 0 {
		concurrency = defaultSnapshotConcurrency
	}

	var (
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, concurrency)
		mu        sync.Mutex
		firstErr  error
	)

	snapshots := make([]analytics.StudentMilestones, len(students))

	for i, st := range students {
		wg.Add(1)
		semaphore <- struct{}{} // Acquire

		go func(i int, st *user.User) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			ms, err := repo.FindByStudent(ctx, st.ID, filter)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			snapshots[i] = analytics.StudentMilestones{
				StudentID:   st.ID,
				StudentName: st.DisplayName,
				Milestones:  ms,
			}
		}(i, st)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return snapshots, nil
}

// cacheGet читает кеш fail-open: любая ошибка логируется и трактуется
// как промах, вычисление продолжается напрямую.
func cacheGet(ctx context.Context, cache Cache, log *zap.Logger, key string, dest interface{}) bool {
	if cache == nil {
		return false
	}
	found, err := cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn("cache read failed, computing directly",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return found
}

// cacheSet записывает кеш fail-open: ошибка логируется и глотается.
func cacheSet(ctx context.Context, cache Cache, log *zap.Logger, key string, value interface{}, ttl time.Duration) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, key, value, ttl); err != nil {
		log.Warn("cache write failed, result not cached",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
