// Package jobs contains scheduled jobs for the ProjectHub analytics engine.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/application/query"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// WARM DASHBOARDS JOB
// ══════════════════════════════════════════════════════════════════════════════

// WarmDashboardsJob recomputes the dashboard and progress summaries for
// every supervisor and stores the results in the cache. Supervisors most
// often open their dashboard first thing in the morning; warming the
// cache beforehand turns that first load from a full recompute into a hit.
type WarmDashboardsJob struct {
	users      user.Repository
	dashboards *query.GetSupervisorDashboardHandler
	summaries  *query.GetProgressSummariesHandler
	logger     *zap.Logger

	config WarmDashboardsConfig
}

// WarmDashboardsConfig contains configuration for the warm job.
type WarmDashboardsConfig struct {
	// Timeout is the maximum duration for one full warming pass.
	Timeout time.Duration

	// ContinueOnError keeps warming remaining supervisors when one fails.
	ContinueOnError bool
}

// DefaultWarmDashboardsConfig returns sensible defaults.
func DefaultWarmDashboardsConfig() WarmDashboardsConfig {
	return WarmDashboardsConfig{
		Timeout:         5 * time.Minute,
		ContinueOnError: true,
	}
}

// NewWarmDashboardsJob creates the job.
func NewWarmDashboardsJob(
	users user.Repository,
	dashboards *query.GetSupervisorDashboardHandler,
	summaries *query.GetProgressSummariesHandler,
	logger *zap.Logger,
	config WarmDashboardsConfig,
) *WarmDashboardsJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarmDashboardsJob{
		users:      users,
		dashboards: dashboards,
		summaries:  summaries,
		logger:     logger,
		config:     config,
	}
}

// Name returns the unique job name.
func (j *WarmDashboardsJob) Name() string {
	return "warm_dashboards"
}

// Description returns a human-readable description.
func (j *WarmDashboardsJob) Description() string {
	return "Recomputes supervisor dashboards and summaries into the cache"
}

// Run warms the cache for all supervisors.
func (j *WarmDashboardsJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	supervisors, err := j.users.ListSupervisors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list supervisors: %w", err)
	}

	var warmed, failed int
	for _, sup := range supervisors {
		// SkipCache forces a recompute; the handlers store the fresh
		// result back into the cache themselves.
		if err := j.warmSupervisor(ctx, sup.ID); err != nil {
			failed++
			j.logger.Warn("failed to warm supervisor cache",
				zap.String("supervisor_id", sup.ID),
				zap.Error(err),
			)
			if !j.config.ContinueOnError {
				return err
			}
			continue
		}
		warmed++
	}

	j.logger.Info("dashboard warming pass finished",
		zap.Int("warmed", warmed),
		zap.Int("failed", failed),
	)

	if failed > 0 && warmed == 0 {
		return fmt.Errorf("all %d warming attempts failed", failed)
	}
	return nil
}

func (j *WarmDashboardsJob) warmSupervisor(ctx context.Context, supervisorID string) error {
	if _, err := j.dashboards.Handle(ctx, query.GetSupervisorDashboardQuery{
		SupervisorID: supervisorID,
		SkipCache:    true,
	}); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}

	if _, err := j.summaries.Handle(ctx, query.GetProgressSummariesQuery{
		SupervisorID: supervisorID,
		SkipCache:    true,
	}); err != nil {
		return fmt.Errorf("summaries: %w", err)
	}

	return nil
}
