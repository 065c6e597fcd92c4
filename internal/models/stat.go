package models

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// correlation is the Pearson correlation coefficient. NaN when either side
// has zero variance.
func correlation(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return math.NaN()
	}

	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

// seasonalPattern extracts the seasonal component as the mean of up to the
// last three full seasonal cycles, centered to zero mean.
func seasonalPattern(y []float64, period int) []float64 {
	pattern := make([]float64, period)

	nCycles := len(y) / period
	if nCycles == 0 {
		return pattern
	}

	recent := nCycles
	if recent > 3 {
		recent = 3
	}
	start := len(y) - recent*period

	for j := 0; j < period; j++ {
		sum := 0.0
		for k := 0; k < recent; k++ {
			sum += y[start+k*period+j]
		}
		pattern[j] = sum / float64(recent)
	}

	// center to zero mean
	m := mean(pattern)
	for j := range pattern {
		pattern[j] -= m
	}
	return pattern
}

// trendSlope is the least-squares slope over the last window points.
func trendSlope(y []float64, window int) float64 {
	if len(y) < 2 {
		return 0
	}

	n := len(y)
	if n > window {
		y = y[n-window:]
		n = window
	}
	if n < 2 {
		return 0
	}

	// x = 0..n-1
	xMean := float64(n-1) / 2
	yMean := mean(y)
	var num, den float64
	for i := 0; i < n; i++ {
		dx := float64(i) - xMean
		num += dx * (y[i] - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
