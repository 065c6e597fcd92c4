// Package models implements the pluggable forecast models evaluated by the
// rolling-origin backtest harness.
//
// The variants are deliberately simplified heuristics (centered seasonal
// averaging, linear trend, correlation-scaled exogenous terms). Downstream
// metrics are calibrated to these formulas; do not swap in a textbook
// ARIMA/ETS fit.
package models

// Model is the fit/predict capability contract shared by every forecast
// variant. Predict before Fit fails with ErrNotFitted; fitting with fewer
// than MinTrainLen observations fails with InsufficientDataError.
type Model interface {
	Name() string
	MinTrainLen() int
	Fit(y []float64) error
	Predict(horizon int) ([]float64, error)
}

// Factory builds a fresh, unfitted model. The backtest harness calls it
// once per split so no state leaks across origins.
type Factory func() Model

// FitPredict is the composed convenience: fit on y, then forecast horizon
// steps.
func FitPredict(m Model, y []float64, horizon int) ([]float64, error) {
	if err := m.Fit(y); err != nil {
		return nil, err
	}
	return m.Predict(horizon)
}

// Exog carries exogenous regressor series keyed by column name, aligned
// index-wise with the target series.
type Exog map[string][]float64
