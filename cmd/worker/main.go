// Package main - фоновый воркер аналитики ProjectHub.
//
// Воркер не обслуживает HTTP-трафик: он периодически прогревает кеш
// дашбордов супервайзеров и обновляет gauge-метрики риска, чтобы
// первый утренний запрос не платил за полный пересчёт.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/config"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/application/query"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/persistence/postgres"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/persistence/redis"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/scheduler"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/scheduler/jobs"
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/logger"
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Development: cfg.IsDevelopment(),
		ServiceName: cfg.App.Name + "-worker",
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting analytics worker",
		zap.String("env", string(cfg.App.Environment)),
		zap.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ПОДКЛЮЧЕНИЯ (PostgreSQL, Redis)
	// ─────────────────────────────────────────────────────────────────────────
	var dbConn *postgres.Connection
	connectDB := func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	}
	if err := retry.StartupRetrier().Do(ctx, connectDB); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	// Без Redis прогревать нечего, но метрики риска всё равно полезны.
	var cache query.Cache
	if !cfg.Redis.Disabled {
		rc := redis.DefaultConfig()
		rc.Host = cfg.Redis.Host
		rc.Port = cfg.Redis.Port
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB

		redisCache, err := redis.NewCache(rc)
		if err != nil {
			log.Warn("failed to connect to Redis, warming will recompute only", zap.Error(err))
		} else {
			defer func() { _ = redisCache.Close() }()
			cache = redisCache
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. РЕПОЗИТОРИИ И ОБРАБОТЧИКИ ЗАПРОСОВ
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	milestoneRepo := postgres.NewMilestoneRepository(dbConn)

	engineCfg := analytics.Config{
		VelocityWindowDays:        cfg.Analytics.VelocityWindowDays,
		OverdueWeight:             cfg.Analytics.OverdueWeight,
		BlockedWeight:             cfg.Analytics.BlockedWeight,
		HighPriorityWeight:        cfg.Analytics.HighPriorityWeight,
		WeeksPerCriticalMilestone: cfg.Analytics.WeeksPerCriticalMilestone,
		RiskAlertThreshold:        cfg.Analytics.RiskAlertThreshold,
		ExpectedCompletionRate:    cfg.Analytics.ExpectedCompletionRate,
		DeviationMediumThreshold:  cfg.Analytics.DeviationMediumThreshold,
		DeviationHighThreshold:    cfg.Analytics.DeviationHighThreshold,
		UnderperformanceRatio:     cfg.Analytics.UnderperformanceRatio,
		SummaryOverdueWeight:      cfg.Analytics.SummaryOverdueWeight,
		SummaryBlockedWeight:      cfg.Analytics.SummaryBlockedWeight,
		SummaryHighPriorityWeight: cfg.Analytics.SummaryHighPriorityWeight,
	}

	dashboardQuery := query.NewGetSupervisorDashboardHandler(userRepo, milestoneRepo, cache, log, engineCfg).
		WithConcurrency(cfg.Analytics.SnapshotConcurrency)
	summariesQuery := query.NewGetProgressSummariesHandler(userRepo, milestoneRepo, cache, log, engineCfg).
		WithConcurrency(cfg.Analytics.SnapshotConcurrency)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ПЛАНИРОВЩИК И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(log)

	warmJob := jobs.NewWarmDashboardsJob(
		userRepo, dashboardQuery, summariesQuery, log,
		jobs.DefaultWarmDashboardsConfig(),
	)
	if err := sched.Register(warmJob, scheduler.NewIntervalSchedule(envDuration("WORKER_WARM_INTERVAL", 15*time.Minute))); err != nil {
		return fmt.Errorf("failed to register warm job: %w", err)
	}

	riskJob := jobs.NewRefreshRiskMetricsJob(userRepo, summariesQuery, log, 2*time.Minute)
	if err := sched.Register(riskJob, scheduler.NewIntervalSchedule(envDuration("WORKER_RISK_INTERVAL", 5*time.Minute))); err != nil {
		return fmt.Errorf("failed to register risk metrics job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Первый прогон сразу после старта, не дожидаясь интервала.
	if envBool("WORKER_RUN_ON_START", true) {
		if _, err := sched.RunNow(ctx, warmJob.Name()); err != nil {
			log.Warn("initial warming run failed", zap.Error(err))
		}
		if _, err := sched.RunNow(ctx, riskJob.Name()); err != nil {
			log.Warn("initial risk metrics run failed", zap.Error(err))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("analytics worker is running", zap.Int("jobs", len(sched.ListJobs())))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received shutdown signal", zap.String("signal", sig.String()))

	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", zap.Error(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
