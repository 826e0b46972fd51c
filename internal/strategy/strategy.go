package strategy

import (
	"context"

	"github.com/rxtech-lab/argo-signals/internal/backtest"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Strategy turns a price series into one signal per bar.
// Implementations are immutable configuration values, so a single Strategy
// may generate signals for several series concurrently.
type Strategy interface {
	// Name returns the registry name of the strategy family, e.g. "crossover".
	Name() string
	// Parameters returns the configured parameters keyed by their config names.
	Parameters() map[string]any
	// GenerateSignals derives the indicator columns and the signal of every bar.
	// The series is only read.
	GenerateSignals(series types.PriceSeries) (SignalSeries, error)
}

// SignalSeries is the output of a strategy, aligned 1:1 with the input bars.
type SignalSeries struct {
	Signals []types.Signal
	// Positions is the first difference of Signals.
	Positions []int
	// Indicators holds every derived column the signals were computed from.
	Indicators indicator.IndicatorSet
}

// Len returns the number of signals.
func (s SignalSeries) Len() int {
	return len(s.Signals)
}

func newSignalSeries(signals []types.Signal, indicators indicator.IndicatorSet) SignalSeries {
	return SignalSeries{
		Signals:    signals,
		Positions:  types.PositionChanges(signals),
		Indicators: indicators,
	}
}

// Evaluate generates the strategy's signals for series and executes them.
func Evaluate(ctx context.Context, strategy Strategy, executor *backtest.Executor, series types.PriceSeries, initialCash float64) (types.BacktestResult, error) {
	signals, err := strategy.GenerateSignals(series)
	if err != nil {
		return types.BacktestResult{}, err
	}

	if signals.Len() != series.Len() {
		return types.BacktestResult{}, errors.Newf(
			errors.ErrCodeSignalLengthMismatch,
			"strategy %s produced %d signals for %d bars", strategy.Name(), signals.Len(), series.Len(),
		)
	}

	return executor.Run(ctx, series, signals.Signals, initialCash)
}
