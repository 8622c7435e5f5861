// Package main - точка входа HTTP API аналитики ProjectHub.
//
// Сервис - чистый read-слой: он не изменяет вехи, а превращает записи
// о вехах студентов в метрики скорости, тренды, анализ критического
// пути, сводки для супервайзеров и экспортируемые отчёты.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистые вычисления аналитики без внешних зависимостей
// - Application: обработчики запросов (read-side CQRS)
// - Infrastructure: PostgreSQL репозитории, Redis кеш
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/config"

	// Application layer
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/application/query"

	// Infrastructure layer
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/persistence/postgres"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/Enochthedev/ProjectHub-backend-sub008/internal/interface/http"

	// Packages
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/logger"
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

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
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log, err := logger.New(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Development: cfg.IsDevelopment(),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting ProjectHub analytics engine",
		zap.String("env", string(cfg.App.Environment)),
		zap.String("version", cfg.App.Version),
		zap.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")

	var dbConn *postgres.Connection
	connectDB := func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	}
	if err := retry.StartupRetrier().Do(ctx, connectDB); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", zap.Error(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed",
				zap.Int("applied", applied),
				zap.Int("total", len(status)),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	// Кеш строго опционален: без Redis каждый запрос пересчитывается.
	var cache query.Cache

	cacheEnabled := !cfg.Redis.Disabled &&
		cfg.Features.IsEnabled(config.FeatureResultCache, nil)

	if cacheEnabled {
		log.Info("connecting to Redis...", zap.String("addr", redisConfig(cfg).Addr()))

		redisCache, err := redis.NewCache(redisConfig(cfg))
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", zap.Error(err))
		} else {
			defer func() { _ = redisCache.Close() }()
			cache = redisCache
			log.Info("Redis connection established")
		}
	} else {
		log.Info("result caching disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	milestoneRepo := postgres.NewMilestoneRepository(dbConn)
	templateRepo := postgres.NewTemplateRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing query handlers...")

	engineCfg := analyticsConfig(cfg)

	analyticsQuery := query.NewGetStudentAnalyticsHandler(milestoneRepo, templateRepo, cache, log, engineCfg)
	overviewQuery := query.NewGetStudentOverviewHandler(userRepo, milestoneRepo, cache, log, engineCfg)
	comparisonQuery := query.NewCompareProgressHandler(milestoneRepo, templateRepo, engineCfg)
	dashboardQuery := query.NewGetSupervisorDashboardHandler(userRepo, milestoneRepo, cache, log, engineCfg).
		WithConcurrency(cfg.Analytics.SnapshotConcurrency)
	summariesQuery := query.NewGetProgressSummariesHandler(userRepo, milestoneRepo, cache, log, engineCfg).
		WithConcurrency(cfg.Analytics.SnapshotConcurrency)
	exportQuery := query.NewExportProgressReportHandler(userRepo, milestoneRepo, log, engineCfg).
		WithConcurrency(cfg.Analytics.SnapshotConcurrency)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	var redisForHealth *redis.Cache
	if rc, ok := cache.(*redis.Cache); ok {
		redisForHealth = rc
	}

	httpDeps := httpserver.Dependencies{
		GetStudentAnalyticsHandler:    analyticsQuery,
		GetStudentOverviewHandler:     overviewQuery,
		CompareProgressHandler:        comparisonQuery,
		GetSupervisorDashboardHandler: dashboardQuery,
		GetProgressSummariesHandler:   summariesQuery,
		ExportProgressReportHandler:   exportQuery,
		Logger:                        log,
		Features:                      cfg.Features,
		HealthChecker: &healthChecker{
			db:    dbConn,
			cache: redisForHealth,
		},
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", zap.String("address", httpServer.Address()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("ProjectHub analytics engine is running",
		zap.String("http_address", httpServer.Address()),
		zap.Bool("cache_enabled", cache != nil),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", zap.Error(err))
		return err
	}

	log.Info("starting graceful shutdown...",
		zap.Duration("timeout", cfg.App.ShutdownTimeout),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", zap.Error(err))
		return err
	}

	// Redis и база данных закроются через defer
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// redisConfig переносит настройки Redis из конфигурации приложения.
func redisConfig(cfg *config.Config) redis.Config {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = cfg.Redis.PoolSize
	rc.MinIdleConns = cfg.Redis.MinIdleConns
	rc.DialTimeout = cfg.Redis.DialTimeout
	rc.ReadTimeout = cfg.Redis.ReadTimeout
	rc.WriteTimeout = cfg.Redis.WriteTimeout
	return rc
}

// analyticsConfig переносит веса и пороги вычислительного слоя.
// Нулевые значения заменяются значениями по умолчанию в Normalize.
func analyticsConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{
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
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// healthChecker опрашивает PostgreSQL и Redis для /health и /ready.
type healthChecker struct {
	db    *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpserver.HealthStatus {
	checks := make(map[string]string)
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = "down: " + err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	// Redis деградирует мягко: сервис остаётся готовым без кеша.
	switch {
	case h.cache == nil:
		checks["redis"] = "disabled"
	default:
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "down: " + err.Error()
		} else {
			checks["redis"] = "ok (breaker: " + h.cache.BreakerState().String() + ")"
		}
	}

	status := httpserver.HealthStatus{
		Healthy: healthy,
		Ready:   healthy,
		Checks:  checks,
	}
	if !healthy {
		status.Message = "one or more backing services are unavailable"
	}
	return status
}
