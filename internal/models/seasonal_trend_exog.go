package models

import (
	"math"

	"github.com/wonny/fueltracker/internal/contracts"
)

// exogTrendWindow bounds the slope estimate of the exogenous variant.
const exogTrendWindow = 24

// Order is the non-seasonal (p, d, q) order.
type Order struct {
	P, D, Q int
}

// SeasonalOrder is the seasonal (P, D, Q, m) order; M is the seasonal
// period.
type SeasonalOrder struct {
	P, D, Q, M int
}

// SeasonalTrendExog extends SeasonalTrend with one linear coefficient per
// exogenous column, computed as correlation(y, x) * std(y) / std(x).
// Forecasting chains recursively: each step's forecast becomes the current
// value feeding the next step.
type SeasonalTrendExog struct {
	order         Order
	seasonalOrder SeasonalOrder
	exogCols      []string

	fitted     bool
	seasonal   []float64
	trendCoef  float64
	lastValues []float64
	exogCoefs  map[string]float64
}

// NewSeasonalTrendExog creates the exogenous variant. exogCols may be
// empty, in which case it degenerates to the seasonal-plus-trend heuristic.
func NewSeasonalTrendExog(order Order, seasonalOrder SeasonalOrder, exogCols []string) *SeasonalTrendExog {
	return &SeasonalTrendExog{
		order:         order,
		seasonalOrder: seasonalOrder,
		exogCols:      exogCols,
	}
}

func (m *SeasonalTrendExog) Name() string { return "seasonal_trend_exog" }

// MinTrainLen returns the minimum training length: two full seasonal
// cycles.
func (m *SeasonalTrendExog) MinTrainLen() int { return 2 * m.seasonalOrder.M }

// Fit is the Model-interface entry point; it fits without exogenous data.
func (m *SeasonalTrendExog) Fit(y []float64) error {
	return m.FitWithExog(y, nil)
}

// FitWithExog fits the seasonal, trend and exogenous components.
func (m *SeasonalTrendExog) FitWithExog(y []float64, exog Exog) error {
	period := m.seasonalOrder.M
	if len(y) < 2*period {
		return &contracts.InsufficientDataError{Needed: 2 * period, Got: len(y)}
	}

	m.seasonal = seasonalPattern(y, period)
	m.trendCoef = trendSlope(y, exogTrendWindow)
	m.lastValues = append([]float64(nil), y[len(y)-period:]...)

	if len(exog) > 0 && len(m.exogCols) > 0 {
		m.exogCoefs = m.fitExogCoefs(y, exog)
	} else {
		m.exogCoefs = nil
	}

	m.fitted = true
	return nil
}

// Predict is the Model-interface entry point; it forecasts without
// exogenous data.
func (m *SeasonalTrendExog) Predict(horizon int) ([]float64, error) {
	return m.PredictWithExog(horizon, nil)
}

// PredictWithExog composes forecasts recursively, adding the exogenous
// contribution for every step that has a matching exog row.
func (m *SeasonalTrendExog) PredictWithExog(horizon int, exog Exog) ([]float64, error) {
	if !m.fitted {
		return nil, contracts.ErrNotFitted
	}

	period := m.seasonalOrder.M
	current := append([]float64(nil), m.lastValues...)
	forecasts := make([]float64, 0, horizon)

	for i := 0; i < horizon; i++ {
		f := current[len(current)-1] +
			m.seasonal[i%period] +
			m.trendCoef*float64(i+1) +
			m.exogComponent(i, exog)

		if f < 0 {
			f = 0
		}
		forecasts = append(forecasts, f)

		// roll the forecast into the buffer for the next step
		copy(current, current[1:])
		current[len(current)-1] = f
	}

	return forecasts, nil
}

func (m *SeasonalTrendExog) exogComponent(step int, exog Exog) float64 {
	if m.exogCoefs == nil || len(exog) == 0 {
		return 0
	}

	component := 0.0
	for col, coef := range m.exogCoefs {
		series, ok := exog[col]
		if !ok || step >= len(series) {
			continue
		}
		component += coef * series[step]
	}
	return component
}

// fitExogCoefs computes correlation(y, x) * std(y) / std(x) per column over
// the aligned tails of target and regressor. NaN correlations and missing
// columns yield a zero coefficient.
func (m *SeasonalTrendExog) fitExogCoefs(y []float64, exog Exog) map[string]float64 {
	coefs := make(map[string]float64, len(m.exogCols))

	for _, col := range m.exogCols {
		series, ok := exog[col]
		if !ok {
			coefs[col] = 0
			continue
		}

		n := len(y)
		if len(series) < n {
			n = len(series)
		}
		yAligned := y[len(y)-n:]
		xAligned := series[len(series)-n:]

		corr := correlation(yAligned, xAligned)
		if math.IsNaN(corr) {
			coefs[col] = 0
			continue
		}

		sx := stddev(xAligned)
		if sx == 0 {
			coefs[col] = 0
			continue
		}
		coefs[col] = corr * stddev(yAligned) / sx
	}

	return coefs
}
