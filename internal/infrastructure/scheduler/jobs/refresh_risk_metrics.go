package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/application/query"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/analytics"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
	"github.com/Enochthedev/ProjectHub-backend-sub008/pkg/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH RISK METRICS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshRiskMetricsJob recounts at-risk students per supervisor and
// publishes the counts as Prometheus gauges, so alerting can watch
// cohort risk without hitting the API.
type RefreshRiskMetricsJob struct {
	users     user.Repository
	summaries *query.GetProgressSummariesHandler
	logger    *zap.Logger

	timeout time.Duration
}

// NewRefreshRiskMetricsJob creates the job.
func NewRefreshRiskMetricsJob(
	users user.Repository,
	summaries *query.GetProgressSummariesHandler,
	logger *zap.Logger,
	timeout time.Duration,
) *RefreshRiskMetricsJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &RefreshRiskMetricsJob{
		users:     users,
		summaries: summaries,
		logger:    logger,
		timeout:   timeout,
	}
}

// Name returns the unique job name.
func (j *RefreshRiskMetricsJob) Name() string {
	return "refresh_risk_metrics"
}

// Description returns a human-readable description.
func (j *RefreshRiskMetricsJob) Description() string {
	return "Publishes per-supervisor at-risk student counts as gauges"
}

// Run refreshes the at-risk gauges for all supervisors.
func (j *RefreshRiskMetricsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	supervisors, err := j.users.ListSupervisors(ctx)
	if err != nil {
		return fmt.Errorf("failed to list supervisors: %w", err)
	}

	var failed int
	for _, sup := range supervisors {
		// Reads through the cache: the warm job usually ran just before.
		result, err := j.summaries.Handle(ctx, query.GetProgressSummariesQuery{
			SupervisorID: sup.ID,
		})
		if err != nil {
			failed++
			j.logger.Warn("failed to refresh risk metrics",
				zap.String("supervisor_id", sup.ID),
				zap.Error(err),
			)
			continue
		}

		atRisk := 0
		for _, summary := range result {
			if _, ok := analytics.AtRiskFromSummary(summary); ok {
				atRisk++
			}
		}
		metrics.SetAtRiskStudents(sup.ID, atRisk)
	}

	j.logger.Info("risk metrics refreshed",
		zap.Int("supervisors", len(supervisors)),
		zap.Int("failed", failed),
	)

	if failed > 0 && failed == len(supervisors) {
		return fmt.Errorf("all %d refresh attempts failed", failed)
	}
	return nil
}
