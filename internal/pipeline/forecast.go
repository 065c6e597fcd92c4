package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/models"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/logger"
)

// Forecaster fits a model on the stored panel and writes a forward
// forecast. The forecast inherits the provisional marker of the panel
// vintage it was built on.
type Forecaster struct {
	store  *panel.Store
	cfg    *config.Config
	logger *logger.Logger
}

// NewForecaster creates a Forecaster over the given panel store.
func NewForecaster(store *panel.Store, cfg *config.Config, log *logger.Logger) *Forecaster {
	return &Forecaster{store: store, cfg: cfg, logger: log}
}

// ForecastResult holds one forward forecast.
type ForecastResult struct {
	Model   string
	Horizon int
	Mode    contracts.PublishMode
	Periods []time.Time
	Values  []float64
}

// Run fits the named model on the full panel and forecasts horizon months
// ahead, persisting the result as CSV.
func (f *Forecaster) Run(modelName string, horizon int) (*ForecastResult, error) {
	factory, err := models.ForName(modelName)
	if err != nil {
		return nil, err
	}

	frame := f.store.Load()
	if frame.Empty() {
		return nil, fmt.Errorf("panel is empty, run pull first")
	}

	values := frame.Values()
	preds, err := models.FitPredict(factory(), values, horizon)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", modelName, err)
	}

	result := &ForecastResult{
		Model:   modelName,
		Horizon: horizon,
		Mode:    f.currentMode(),
		Values:  preds,
		Periods: futureMonthEnds(frame.End(), horizon),
	}

	if err := f.write(result); err != nil {
		return nil, err
	}

	f.logger.WithFields(map[string]interface{}{
		"model":      modelName,
		"horizon":    horizon,
		"mode":       string(result.Mode),
		"train_rows": frame.Len(),
		"path":       f.cfg.Paths.ForecastFile,
	}).Info("forecast written")

	return result, nil
}

// currentMode reads the last run verdict; an unreadable status file
// defaults to normal.
func (f *Forecaster) currentMode() contracts.PublishMode {
	data, err := os.ReadFile(f.cfg.Paths.StatusFile)
	if err != nil {
		return contracts.ModeNormal
	}
	var report StatusReport
	if err := json.Unmarshal(data, &report); err != nil || report.Mode == "" {
		return contracts.ModeNormal
	}
	return report.Mode
}

func (f *Forecaster) write(result *ForecastResult) error {
	file, err := os.Create(f.cfg.Paths.ForecastFile)
	if err != nil {
		return fmt.Errorf("create forecast file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"period", "forecast_mmcf", "model", "mode"}); err != nil {
		return fmt.Errorf("write forecast header: %w", err)
	}
	for i, p := range result.Periods {
		rec := []string{
			p.Format("2006-01-02"),
			strconv.FormatFloat(result.Values[i], 'f', -1, 64),
			result.Model,
			string(result.Mode),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write forecast row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// futureMonthEnds returns the n month-end dates following last.
func futureMonthEnds(last time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	cur := last
	for i := range out {
		cur = contracts.MonthEnd(cur.AddDate(0, 0, 1))
		out[i] = cur
	}
	return out
}
