package backtest

import "math"

// splitMetrics holds the accuracy metrics of a single split.
type splitMetrics struct {
	MAE   float64
	SMAPE float64
	RMSE  float64
	MAPE  float64
}

// calculateSplitMetrics computes MAE, sMAPE, RMSE and MAPE over the
// overlapping prefix of actual and forecast.
func calculateSplitMetrics(actual, forecast []float64) splitMetrics {
	n := len(actual)
	if len(forecast) < n {
		n = len(forecast)
	}
	if n == 0 {
		return splitMetrics{}
	}

	var absErrSum, sqErrSum, smapeSum, mapeSum float64
	for i := 0; i < n; i++ {
		err := actual[i] - forecast[i]
		absErr := math.Abs(err)

		absErrSum += absErr
		sqErrSum += err * err
		smapeSum += absErr / ((math.Abs(actual[i]) + math.Abs(forecast[i])) / 2)
		mapeSum += math.Abs(err / actual[i])
	}

	fn := float64(n)
	return splitMetrics{
		MAE:   absErrSum / fn,
		SMAPE: 100 * smapeSum / fn,
		RMSE:  math.Sqrt(sqErrSum / fn),
		MAPE:  100 * mapeSum / fn,
	}
}
