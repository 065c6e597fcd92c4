package models

import "github.com/wonny/fueltracker/internal/contracts"

// SeasonalTrend combines a centered seasonal pattern with a linear trend,
// composing forecasts recursively from the last observed value.
type SeasonalTrend struct {
	period      int
	trendWindow int

	fitted    bool
	seasonal  []float64
	trendCoef float64
	lastValue float64
}

// NewSeasonalTrend creates a SeasonalTrend model. trendWindow bounds the
// number of trailing points used for the slope estimate.
func NewSeasonalTrend(period, trendWindow int) *SeasonalTrend {
	return &SeasonalTrend{period: period, trendWindow: trendWindow}
}

func (m *SeasonalTrend) Name() string { return "seasonal_trend" }

// MinTrainLen returns the minimum training length: two full cycles.
func (m *SeasonalTrend) MinTrainLen() int { return 2 * m.period }

// Fit extracts the seasonal pattern and trend slope from the training
// series.
func (m *SeasonalTrend) Fit(y []float64) error {
	if len(y) < 2*m.period {
		return &contracts.InsufficientDataError{Needed: 2 * m.period, Got: len(y)}
	}

	m.seasonal = seasonalPattern(y, m.period)
	m.trendCoef = trendSlope(y, m.trendWindow)
	m.lastValue = y[len(y)-1]
	m.fitted = true
	return nil
}

// Predict composes forecasts step by step:
// f = current + seasonal[i mod period] + trend*(i+1), floored at zero,
// with each forecast feeding the next step as the current value.
func (m *SeasonalTrend) Predict(horizon int) ([]float64, error) {
	if !m.fitted {
		return nil, contracts.ErrNotFitted
	}

	forecasts := make([]float64, 0, horizon)
	current := m.lastValue

	for i := 0; i < horizon; i++ {
		f := current + m.seasonal[i%m.period] + m.trendCoef*float64(i+1)
		if f < 0 {
			// fuel consumption cannot be negative
			f = 0
		}
		forecasts = append(forecasts, f)
		current = f
	}

	return forecasts, nil
}
