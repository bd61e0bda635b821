package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough samples for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// TrailingMean averages at most window trailing values. It returns 0 for an empty slice.
func TrailingMean(values []float64, window int) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	avg, _ := CalculateSMA(values, window)
	return avg
}
