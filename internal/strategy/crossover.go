package strategy

import (
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// CrossoverName is the registry name of the moving average crossover strategy.
const CrossoverName = "crossover"

// Indicator columns published by Crossover.
const (
	ColumnShortMA = "short_mavg"
	ColumnLongMA  = "long_mavg"
)

// CrossoverParams configures a moving average crossover.
type CrossoverParams struct {
	ShortWindow int `yaml:"short_window" json:"short_window" validate:"gte=1" jsonschema:"title=Short Window,description=Window of the fast moving average,minimum=1,default=40"`
	LongWindow  int `yaml:"long_window" json:"long_window" validate:"gte=1" jsonschema:"title=Long Window,description=Window of the slow moving average,minimum=1,default=100"`
}

// Validate checks that both windows are positive and short_window < long_window.
func (p CrossoverParams) Validate() error {
	if err := validateParams(p, map[string]errors.ErrorCode{
		"short_window": errors.ErrCodeInvalidWindow,
		"long_window":  errors.ErrCodeInvalidWindow,
	}); err != nil {
		return err
	}

	if p.ShortWindow >= p.LongWindow {
		return errors.NewValidationErrorf(errors.ErrCodeInvalidWindowOrder, "short_window", p.ShortWindow, "must be less than long_window %d", p.LongWindow)
	}

	return nil
}

// Crossover signals Buy while the short moving average is above the long one
// and Sell while it is below.
type Crossover struct {
	params CrossoverParams
}

// NewCrossover validates params and returns the strategy.
func NewCrossover(params CrossoverParams) (*Crossover, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Crossover{params: params}, nil
}

func newCrossoverFromMap(params map[string]any) (Strategy, error) {
	var p CrossoverParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	return NewCrossover(p)
}

// Name returns CrossoverName.
func (c *Crossover) Name() string {
	return CrossoverName
}

// Parameters returns short_window and long_window.
func (c *Crossover) Parameters() map[string]any {
	return map[string]any{
		"short_window": c.params.ShortWindow,
		"long_window":  c.params.LongWindow,
	}
}

// GenerateSignals computes both moving averages in partial-window mode and
// compares them bar by bar from bar short_window on.
func (c *Crossover) GenerateSignals(series types.PriceSeries) (SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return SignalSeries{}, err
	}

	indicators := indicator.IndicatorSet{}

	for _, ma := range []struct {
		window int
		column string
	}{
		{c.params.ShortWindow, ColumnShortMA},
		{c.params.LongWindow, ColumnLongMA},
	} {
		ind := indicator.NewMA()
		if err := ind.Config(ma.window, indicator.PartialWindow, ma.column); err != nil {
			return SignalSeries{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to configure %s", ma.column)
		}

		set, err := ind.Compute(series)
		if err != nil {
			return SignalSeries{}, err
		}

		indicators.Merge(set)
	}

	signals := CrossoverSignals(indicators[ColumnShortMA], indicators[ColumnLongMA], c.params.ShortWindow)

	return newSignalSeries(signals, indicators), nil
}

// CrossoverSignals applies the crossover rule to aligned short and long
// averages. Bars before activation, bars where either average is undefined
// and bars where the averages are equal are Hold.
func CrossoverSignals(short, long indicator.Series, activation int) []types.Signal {
	signals := make([]types.Signal, len(short))

	for i := range signals {
		s, l := short.At(i), long.At(i)
		if i < activation || s.IsNone() || l.IsNone() {
			continue
		}

		switch {
		case s.Unwrap() > l.Unwrap():
			signals[i] = types.SignalBuy
		case s.Unwrap() < l.Unwrap():
			signals[i] = types.SignalSell
		}
	}

	return signals
}
