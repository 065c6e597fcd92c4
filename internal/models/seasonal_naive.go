package models

import "github.com/wonny/fueltracker/internal/contracts"

// SeasonalNaive repeats the last observed seasonal cycle.
// forecast[i] = value observed exactly one period before the origin, tiled.
type SeasonalNaive struct {
	period     int
	fitted     bool
	lastValues []float64
}

// NewSeasonalNaive creates a SeasonalNaive model with the given seasonal
// period (12 for monthly data).
func NewSeasonalNaive(period int) *SeasonalNaive {
	return &SeasonalNaive{period: period}
}

func (m *SeasonalNaive) Name() string { return "seasonal_naive" }

// MinTrainLen returns the minimum training length: one full cycle.
func (m *SeasonalNaive) MinTrainLen() int { return m.period }

// Fit stores the last full seasonal cycle of the training series.
func (m *SeasonalNaive) Fit(y []float64) error {
	if len(y) < m.period {
		return &contracts.InsufficientDataError{Needed: m.period, Got: len(y)}
	}

	m.lastValues = append([]float64(nil), y[len(y)-m.period:]...)
	m.fitted = true
	return nil
}

// Predict tiles the stored cycle across the horizon.
func (m *SeasonalNaive) Predict(horizon int) ([]float64, error) {
	if !m.fitted {
		return nil, contracts.ErrNotFitted
	}

	forecasts := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		forecasts[i] = m.lastValues[i%m.period]
	}
	return forecasts, nil
}
