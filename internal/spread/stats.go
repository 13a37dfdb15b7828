package spread

import "math"

// Mean averages the trailing window values; NaN while fewer than window observations exist.
func Mean(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return math.NaN()
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// Std is the standard deviation of the trailing window with the given delta degrees of freedom
// (1 = sample, 0 = population). NaN while the window is not full or window <= ddof.
func Std(values []float64, window, ddof int) float64 {
	if window <= ddof {
		return math.NaN()
	}
	mean := Mean(values, window)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	var ss float64
	for _, v := range values[len(values)-window:] {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(window-ddof))
}

// ZScore is (mean of short window - mean of long window) / std of long window.
// ok is false whenever any statistic is undefined or the result is not finite.
func ZScore(values []float64, short, long, ddof int) (float64, bool) {
	shortMean := Mean(values, short)
	longMean := Mean(values, long)
	std := Std(values, long, ddof)
	if !finite(shortMean) || !finite(longMean) || !finite(std) || std == 0 {
		return 0, false
	}
	z := (shortMean - longMean) / std
	if !finite(z) {
		return 0, false
	}
	return z, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
