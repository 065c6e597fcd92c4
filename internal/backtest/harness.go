// Package backtest evaluates forecast models with rolling-origin splits.
package backtest

import (
	"time"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/models"
	"github.com/wonny/fueltracker/pkg/logger"
)

// Config holds rolling backtest parameters.
type Config struct {
	Horizon  int // forecast length per split
	Lookback int // number of trailing observations evaluated
}

// Report holds per-split records and their aggregate metrics.
type Report struct {
	Splits []contracts.ForecastSplit `json:"splits"`

	// Aggregates are the mean of each metric across valid splits; all zero
	// when no split was valid.
	AvgMAE   float64 `json:"avg_mae"`
	AvgSMAPE float64 `json:"avg_smape"`
	AvgRMSE  float64 `json:"avg_rmse"`
	AvgMAPE  float64 `json:"avg_mape"`
}

// Harness runs rolling-origin backtests over a forecast model.
// ⭐ 분할마다 새 모델 생성: 원점 고정 평가, 미래 정보 누출 방지
type Harness struct {
	config Config
	logger *logger.Logger
}

// NewHarness creates a Harness with the given parameters.
func NewHarness(config Config, log *logger.Logger) *Harness {
	return &Harness{config: config, logger: log}
}

// Rolling evaluates the model produced by factory across rolling origins.
// values and periods are the aligned panel series; only the last Lookback
// observations are used. Splits whose training slice is shorter than the
// model minimum, or whose actual slice is shorter than the horizon, are
// skipped. Zero valid splits is not an error.
func (h *Harness) Rolling(values []float64, periods []time.Time, factory models.Factory) (*Report, error) {
	return h.roll(values, periods, factory, nil)
}

// RollingWithExog behaves like Rolling but feeds aligned exogenous series
// into models that support them.
func (h *Harness) RollingWithExog(values []float64, periods []time.Time, factory models.Factory, exog models.Exog) (*Report, error) {
	return h.roll(values, periods, factory, exog)
}

func (h *Harness) roll(values []float64, periods []time.Time, factory models.Factory, exog models.Exog) (*Report, error) {
	horizon := h.config.Horizon

	y, ps := values, periods
	if n := len(y); n > h.config.Lookback {
		y = y[n-h.config.Lookback:]
		ps = ps[n-h.config.Lookback:]
	}
	exogWindow := make(models.Exog, len(exog))
	for col, series := range exog {
		if n := len(series); n > h.config.Lookback {
			series = series[n-h.config.Lookback:]
		}
		exogWindow[col] = series
	}

	h.logger.WithFields(map[string]interface{}{
		"total_length":    len(values),
		"backtest_length": len(y),
		"horizon":         horizon,
	}).Info("starting rolling backtest")

	report := &Report{}

	for i := horizon; i < len(y); i++ {
		train := y[:i]
		actual := y[i:min(i+horizon, len(y))]

		// skip when the window cannot yield a full comparison
		if len(actual) < horizon {
			continue
		}

		model := factory()
		if len(train) < model.MinTrainLen() {
			continue
		}

		forecasts, err := h.fitPredict(model, train, horizon, exogWindow, i)
		if err != nil {
			return nil, err
		}

		m := calculateSplitMetrics(actual, forecasts)
		report.Splits = append(report.Splits, contracts.ForecastSplit{
			SplitEnd:      ps[i-1],
			ForecastStart: ps[i],
			ForecastEnd:   ps[min(i+horizon-1, len(ps)-1)],
			TrainLength:   len(train),
			Horizon:       len(actual),
			MAE:           m.MAE,
			SMAPE:         m.SMAPE,
			RMSE:          m.RMSE,
			MAPE:          m.MAPE,
		})
	}

	report.aggregate()

	h.logger.WithFields(map[string]interface{}{
		"splits":    len(report.Splits),
		"avg_mae":   report.AvgMAE,
		"avg_smape": report.AvgSMAPE,
	}).Info("rolling backtest completed")

	return report, nil
}

func (h *Harness) fitPredict(model models.Model, train []float64, horizon int, exog models.Exog, origin int) ([]float64, error) {
	if em, ok := model.(*models.SeasonalTrendExog); ok && len(exog) > 0 {
		trainExog := make(models.Exog, len(exog))
		futureExog := make(models.Exog, len(exog))
		for col, series := range exog {
			if origin <= len(series) {
				trainExog[col] = series[:origin]
			}
			if origin < len(series) {
				futureExog[col] = series[origin:]
			}
		}
		if err := em.FitWithExog(train, trainExog); err != nil {
			return nil, err
		}
		return em.PredictWithExog(horizon, futureExog)
	}

	return models.FitPredict(model, train, horizon)
}

func (r *Report) aggregate() {
	n := len(r.Splits)
	if n == 0 {
		return
	}

	for _, s := range r.Splits {
		r.AvgMAE += s.MAE
		r.AvgSMAPE += s.SMAPE
		r.AvgRMSE += s.RMSE
		r.AvgMAPE += s.MAPE
	}

	fn := float64(n)
	r.AvgMAE /= fn
	r.AvgSMAPE /= fn
	r.AvgRMSE /= fn
	r.AvgMAPE /= fn
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
