package backtest

import (
	"context"
	"math"

	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultInitialCash is the starting cash used when a caller does not configure one.
const DefaultInitialCash = 1000.0

// Executor simulates full-in/full-out execution of a signal sequence.
// It holds no per-run state, so one Executor can serve concurrent runs.
type Executor struct {
	log *logger.Logger
}

// NewExecutor creates an Executor. A nil logger discards output.
func NewExecutor(log *logger.Logger) *Executor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Executor{
		log: log.Named("executor"),
	}
}

// Run executes signals bar by bar at each bar's close and returns the trade log,
// the per-bar marks and the final cash/position. A position still open after
// the last bar is valued at the last close in FinalEquity and Profit.
func (e *Executor) Run(ctx context.Context, series types.PriceSeries, signals []types.Signal, initialCash float64) (types.BacktestResult, error) {
	if err := series.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if len(signals) != series.Len() {
		return types.BacktestResult{}, errors.NewValidationErrorf(
			errors.ErrCodeSignalLengthMismatch, "signals", len(signals), "length must equal series length %d", series.Len(),
		)
	}

	if !(initialCash > 0) || math.IsInf(initialCash, 0) {
		return types.BacktestResult{}, errors.NewValidationErrorf(errors.ErrCodeInvalidInitialCash, "initial_cash", initialCash, "must be positive")
	}

	state := NewPortfolioState(initialCash)
	marks := make([]types.Mark, 0, series.Len())

	for i, bar := range series.Bars {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeBacktestCancelled, err, "backtest cancelled at bar %d", i)
		}

		if trade, ok := state.Apply(i, bar, signals[i]); ok {
			e.log.Debug("Trade executed",
				zap.String("symbol", series.Symbol),
				zap.Int("bar", i),
				zap.String("side", string(trade.Side)),
				zap.Float64("price", trade.Price),
				zap.Float64("position", trade.Position),
				zap.Float64("cash", trade.Cash),
			)
		}

		if err := state.CheckInvariant(i); err != nil {
			e.log.Error("Portfolio invariant violated",
				zap.String("symbol", series.Symbol),
				zap.Int("bar", i),
				zap.Error(err),
			)

			return types.BacktestResult{}, err
		}

		marks = append(marks, types.Mark{
			Time:     bar.Time,
			Close:    bar.Close,
			Signal:   signals[i],
			Cash:     state.cash.InexactFloat64(),
			Position: state.position.InexactFloat64(),
			Equity:   state.Equity(bar.Close).InexactFloat64(),
		})
	}

	return e.result(state, series, marks, initialCash), nil
}

func (e *Executor) result(state *PortfolioState, series types.PriceSeries, marks []types.Mark, initialCash float64) types.BacktestResult {
	initial := decimal.NewFromFloat(initialCash)
	equity := state.cash

	if last := series.Last(); last.IsSome() {
		equity = state.Equity(last.Unwrap().Close)
	}

	result := types.BacktestResult{
		Trades:           state.Trades(),
		Marks:            marks,
		InitialCash:      initialCash,
		FinalCash:        state.cash.InexactFloat64(),
		FinalPosition:    state.position.InexactFloat64(),
		FinalEquity:      equity.InexactFloat64(),
		RealizedProfit:   state.flatCash.Sub(initial).InexactFloat64(),
		UnrealizedProfit: equity.Sub(state.flatCash).InexactFloat64(),
		Profit:           equity.Sub(initial).InexactFloat64(),
	}

	e.log.Debug("Backtest finished",
		zap.String("symbol", series.Symbol),
		zap.Int("bars", series.Len()),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_cash", result.FinalCash),
		zap.Float64("profit", result.Profit),
	)

	return result
}
