package models

import "fmt"

// Monthly defaults shared by the CLI and the backtest harness.
const (
	monthlyPeriod      = 12
	monthlyTrendWindow = 24
)

// ForName returns a factory for the named model configured for monthly
// data. Factories build a fresh model per fit so no state leaks between
// backtest splits.
func ForName(name string) (Factory, error) {
	switch name {
	case "seasonal_naive":
		return func() Model { return NewSeasonalNaive(monthlyPeriod) }, nil
	case "seasonal_trend":
		return func() Model { return NewSeasonalTrend(monthlyPeriod, monthlyTrendWindow) }, nil
	case "seasonal_trend_exog":
		return func() Model {
			return NewSeasonalTrendExog(
				Order{P: 1, D: 1, Q: 1},
				SeasonalOrder{P: 1, D: 1, Q: 1, M: monthlyPeriod},
				nil,
			)
		}, nil
	default:
		return nil, fmt.Errorf("unknown model %q (want seasonal_naive, seasonal_trend or seasonal_trend_exog)", name)
	}
}
