package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fueltracker/internal/pipeline"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

// PullJob refreshes the monthly panel on a schedule.
// EIA 월간 시리즈는 말일 이후 수영업일 뒤에 갱신됨
// ⭐ SSOT: 패널 갱신 스케줄은 이 Job에서만
type PullJob struct {
	orchestrator *pipeline.Orchestrator
	config       *config.Config
	logger       *logger.Logger
	series       string
}

// NewPullJob creates a new panel refresh job.
func NewPullJob(orch *pipeline.Orchestrator, cfg *config.Config, log *logger.Logger, series string) *PullJob {
	return &PullJob{
		orchestrator: orch,
		config:       cfg,
		logger:       log,
		series:       series,
	}
}

// Name returns the job name
func (j *PullJob) Name() string {
	return "panel_pull"
}

// Schedule returns the cron schedule (07:00 UTC on the 3rd of every month,
// then daily retries are left to the scheduler's retry loop)
func (j *PullJob) Schedule() string {
	return "0 0 7 3 * *"
}

// Run executes one pull through the pipeline
func (j *PullJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled panel pull")

	result, err := j.orchestrator.Run(ctx, pipeline.RunConfig{
		Series: j.series,
		Mode:   j.config.Mode,
		Notes:  "scheduled pull",
	})
	if err != nil {
		return fmt.Errorf("pull pipeline: %w", err)
	}

	if result.Status == pipeline.StatusFailed {
		return fmt.Errorf("pull failed: %v", result.Issues)
	}

	j.logger.WithFields(map[string]interface{}{
		"status":     result.Status,
		"mode":       string(result.Decision.Mode),
		"rows_added": result.RowsAdded,
	}).Info("Scheduled panel pull completed")

	return nil
}
