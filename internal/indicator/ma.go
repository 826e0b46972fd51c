package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation over closing prices.
type MA struct {
	period int
	policy WindowPolicy
	column string
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20, // Default period
		policy: PartialWindow,
		column: "ma",
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config configures the MA. Expected parameters: period (int), and optionally
// policy (WindowPolicy) and column (string).
func (m *MA) Config(params ...any) error {
	if len(params) < 1 || len(params) > 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 to 3 parameters: period (int), policy (WindowPolicy), column (string)")
	}

	period, ok := params[0].(int)
	if !ok {
		periodFloat, ok := params[0].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or float")
		}

		if math.IsInf(periodFloat, 0) || periodFloat != math.Trunc(periodFloat) {
			return errors.NewValidationErrorf(errors.ErrCodeInvalidWindow, "period", periodFloat, "must be a whole number")
		}

		period = int(periodFloat)
	}

	if err := validateWindow("period", period); err != nil {
		return err
	}

	policy := m.policy

	if len(params) >= 2 {
		policy, ok = params[1].(WindowPolicy)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for policy parameter, expected WindowPolicy")
		}
	}

	column := m.column

	if len(params) == 3 {
		column, ok = params[2].(string)
		if !ok || column == "" {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for column parameter, expected non-empty string")
		}
	}

	m.period = period
	m.policy = policy
	m.column = column

	return nil
}

// Compute returns a single column holding the moving average of closes.
func (m *MA) Compute(series types.PriceSeries) (IndicatorSet, error) {
	values, err := RollingMean(series.Closes(), m.period, m.policy)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate %s", m.column)
	}

	return IndicatorSet{m.column: values}, nil
}
