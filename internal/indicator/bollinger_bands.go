package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Column names published by BollingerBands.
const (
	ColumnRollingMean = "rolling_mean"
	ColumnRollingStd  = "rolling_std"
	ColumnUpperBand   = "upper_band"
	ColumnLowerBand   = "lower_band"
)

// BollingerBands implements the Indicator interface for Bollinger Bands built
// from a rolling mean and a rolling sample standard deviation.
type BollingerBands struct {
	period int     // Number of periods for the rolling window
	stdDev float64 // Number of standard deviations
	policy WindowPolicy
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,  // Default period
		stdDev: 2.0, // Default standard deviation
		policy: StrictWindow,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int),
// stdDev (float64), and optionally policy (WindowPolicy).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 && len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 or 3 parameters: period (int), stdDev (float64), policy (WindowPolicy)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if err := validateWindow("period", period); err != nil {
		return err
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if !(stdDev > 0) || math.IsInf(stdDev, 0) {
		return errors.NewValidationErrorf(errors.ErrCodeInvalidMultiplier, "stdDev", stdDev, "must be a positive number")
	}

	policy := bb.policy

	if len(params) == 3 {
		policy, ok = params[2].(WindowPolicy)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for policy parameter, expected WindowPolicy")
		}
	}

	bb.period = period
	bb.stdDev = stdDev
	bb.policy = policy

	return nil
}

// Compute returns the rolling mean, rolling std and both bands.
func (bb *BollingerBands) Compute(series types.PriceSeries) (IndicatorSet, error) {
	closes := series.Closes()

	middle, err := RollingMean(closes, bb.period, bb.policy)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate rolling mean", err)
	}

	std, err := RollingStdDev(closes, bb.period, bb.policy)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate rolling std", err)
	}

	upper, lower, err := Bands(middle, std, bb.stdDev)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate bands", err)
	}

	return IndicatorSet{
		ColumnRollingMean: middle,
		ColumnRollingStd:  std,
		ColumnUpperBand:   upper,
		ColumnLowerBand:   lower,
	}, nil
}
