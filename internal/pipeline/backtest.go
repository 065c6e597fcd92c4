package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/wonny/fueltracker/internal/backtest"
	"github.com/wonny/fueltracker/internal/models"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

// BacktestRunner evaluates a model over the stored panel and writes the
// per-split metrics.
type BacktestRunner struct {
	store  *panel.Store
	cfg    *config.Config
	logger *logger.Logger
}

// NewBacktestRunner creates a BacktestRunner over the given panel store.
func NewBacktestRunner(store *panel.Store, cfg *config.Config, log *logger.Logger) *BacktestRunner {
	return &BacktestRunner{store: store, cfg: cfg, logger: log}
}

// Run backtests the named model with rolling origins over the panel and
// persists the split metrics as CSV.
func (r *BacktestRunner) Run(modelName string) (*backtest.Report, error) {
	factory, err := models.ForName(modelName)
	if err != nil {
		return nil, err
	}

	frame := r.store.Load()
	if frame.Empty() {
		return nil, fmt.Errorf("panel is empty, run pull first")
	}

	harness := backtest.NewHarness(backtest.Config{
		Horizon:  r.cfg.Backtest.Horizon,
		Lookback: r.cfg.Backtest.Lookback,
	}, r.logger)

	report, err := harness.Rolling(frame.Values(), frame.Periods(), factory)
	if err != nil {
		return nil, err
	}

	if err := r.write(modelName, report); err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"model":     modelName,
		"splits":    len(report.Splits),
		"avg_mae":   report.AvgMAE,
		"avg_smape": report.AvgSMAPE,
		"path":      r.cfg.Paths.MetricsFile,
	}).Info("backtest metrics written")

	return report, nil
}

func (r *BacktestRunner) write(modelName string, report *backtest.Report) error {
	file, err := os.Create(r.cfg.Paths.MetricsFile)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"model", "split_end", "forecast_start", "forecast_end",
		"train_length", "horizon", "mae", "smape", "rmse", "mape",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}
	for _, s := range report.Splits {
		rec := []string{
			modelName,
			s.SplitEnd.Format("2006-01-02"),
			s.ForecastStart.Format("2006-01-02"),
			s.ForecastEnd.Format("2006-01-02"),
			strconv.Itoa(s.TrainLength),
			strconv.Itoa(s.Horizon),
			formatMetric(s.MAE),
			formatMetric(s.SMAPE),
			formatMetric(s.RMSE),
			formatMetric(s.MAPE),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write metrics row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
