package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fueltracker/internal/pipeline"
	"github.com/wonny/fueltracker/pkg/logger"
)

// BacktestJob re-evaluates the forecast model after each monthly refresh so
// metrics.csv always reflects the latest vintage.
type BacktestJob struct {
	runner *pipeline.BacktestRunner
	logger *logger.Logger
	model  string
}

// NewBacktestJob creates a new backtest job.
func NewBacktestJob(runner *pipeline.BacktestRunner, log *logger.Logger, model string) *BacktestJob {
	return &BacktestJob{
		runner: runner,
		logger: log,
		model:  model,
	}
}

// Name returns the job name
func (j *BacktestJob) Name() string {
	return "monthly_backtest"
}

// Schedule returns the cron schedule (08:00 UTC on the 3rd, an hour after
// the pull job)
func (j *BacktestJob) Schedule() string {
	return "0 0 8 3 * *"
}

// Run executes the rolling backtest
func (j *BacktestJob) Run(ctx context.Context) error {
	j.logger.WithField("model", j.model).Info("Starting scheduled backtest")

	report, err := j.runner.Run(j.model)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"model":    j.model,
		"splits":   len(report.Splits),
		"avg_mae":  report.AvgMAE,
		"avg_rmse": report.AvgRMSE,
	}).Info("Scheduled backtest completed")

	return nil
}
