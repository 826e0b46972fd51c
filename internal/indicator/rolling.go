package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// RollingMean returns the arithmetic mean of the trailing window ending at each position.
func RollingMean(values []float64, window int, policy WindowPolicy) (Series, error) {
	if err := validateWindow("window", window); err != nil {
		return nil, err
	}

	required := policy.minPeriods(window, 1)
	out := make(Series, len(values))

	for i := range values {
		start := windowStart(i, window)
		if i-start+1 < required {
			out[i] = optional.None[float64]()

			continue
		}

		out[i] = optional.Some(mean(values[start : i+1]))
	}

	return out, nil
}

// RollingStdDev returns the sample standard deviation (n-1 denominator) of the
// trailing window ending at each position. At least two observations are always
// required, so a window of 1 never yields a value.
func RollingStdDev(values []float64, window int, policy WindowPolicy) (Series, error) {
	if err := validateWindow("window", window); err != nil {
		return nil, err
	}

	required := policy.minPeriods(window, 2)
	out := make(Series, len(values))

	for i := range values {
		start := windowStart(i, window)
		if i-start+1 < required {
			out[i] = optional.None[float64]()

			continue
		}

		out[i] = optional.Some(sampleStdDev(values[start : i+1]))
	}

	return out, nil
}

// Bands returns mean + k*std and mean - k*std. A band is undefined wherever
// either input is undefined.
func Bands(mean, std Series, k float64) (upper, lower Series, err error) {
	if len(mean) != len(std) {
		return nil, nil, errors.NewValidationErrorf(errors.ErrCodeIndicatorLengthMismatch, "std", len(std), "length must match mean length %d", len(mean))
	}

	if !(k > 0) || math.IsInf(k, 0) {
		return nil, nil, errors.NewValidationErrorf(errors.ErrCodeInvalidMultiplier, "num_std", k, "must be a positive finite number")
	}

	upper = make(Series, len(mean))
	lower = make(Series, len(mean))

	for i := range mean {
		if mean[i].IsNone() || std[i].IsNone() {
			upper[i] = optional.None[float64]()
			lower[i] = optional.None[float64]()

			continue
		}

		m, s := mean[i].Unwrap(), std[i].Unwrap()
		upper[i] = optional.Some(m + k*s)
		lower[i] = optional.Some(m - k*s)
	}

	return upper, lower, nil
}

func validateWindow(name string, window int) error {
	if window <= 0 {
		return errors.NewValidationErrorf(errors.ErrCodeInvalidWindow, name, window, "must be a positive integer")
	}

	return nil
}

func windowStart(i, window int) int {
	start := i - window + 1
	if start < 0 {
		return 0
	}

	return start
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func sampleStdDev(values []float64) float64 {
	m := mean(values)

	var squaredDiffSum float64

	for _, v := range values {
		diff := v - m
		squaredDiffSum += diff * diff
	}

	return math.Sqrt(squaredDiffSum / float64(len(values)-1))
}
