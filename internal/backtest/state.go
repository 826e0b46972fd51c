package backtest

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
)

// PortfolioState is the executor-owned cash/position pair for a single run.
// It is either Flat (cash > 0, position = 0) or Invested (cash = 0, position > 0).
type PortfolioState struct {
	cash     decimal.Decimal
	position decimal.Decimal
	// flatCash is the cash balance at the most recent Flat point.
	flatCash decimal.Decimal
	trades   []types.Trade
}

// NewPortfolioState creates a Flat state holding initialCash.
func NewPortfolioState(initialCash float64) *PortfolioState {
	cash := decimal.NewFromFloat(initialCash)

	return &PortfolioState{
		cash:     cash,
		position: decimal.Zero,
		flatCash: cash,
		trades:   make([]types.Trade, 0),
	}
}

// IsFlat reports whether the state holds no position.
func (s *PortfolioState) IsFlat() bool {
	return s.position.IsZero()
}

// IsInvested reports whether the state holds a position.
func (s *PortfolioState) IsInvested() bool {
	return s.position.IsPositive()
}

// Apply executes the signal for bar index i. Only Buy while Flat and Sell while
// Invested change the state; it returns the executed trade, if any.
func (s *PortfolioState) Apply(i int, bar types.PriceBar, signal types.Signal) (types.Trade, bool) {
	price := decimal.NewFromFloat(bar.Close)

	switch {
	case signal == types.SignalBuy && s.IsFlat() && s.cash.IsPositive():
		s.position = s.position.Add(s.cash.DivRound(price, divisionPrecision(price)))
		s.cash = decimal.Zero

		return s.record(i, bar, types.PurchaseTypeBuy), true
	case signal == types.SignalSell && s.IsInvested():
		s.cash = s.cash.Add(s.position.Mul(price))
		s.position = decimal.Zero
		s.flatCash = s.cash

		return s.record(i, bar, types.PurchaseTypeSell), true
	default:
		return types.Trade{}, false
	}
}

// divisionPrecision widens decimal.DivisionPrecision by the integer digits of
// price so a large price never rounds the bought position down to zero.
func divisionPrecision(price decimal.Decimal) int32 {
	digits := int32(price.NumDigits()) + price.Exponent()
	if digits < 0 {
		digits = 0
	}

	return int32(decimal.DivisionPrecision) + digits
}

func (s *PortfolioState) record(i int, bar types.PriceBar, side types.PurchaseType) types.Trade {
	trade := types.Trade{
		Time:     bar.Time,
		Index:    i,
		Side:     side,
		Price:    bar.Close,
		Position: s.position.InexactFloat64(),
		Cash:     s.cash.InexactFloat64(),
	}
	s.trades = append(s.trades, trade)

	return trade
}

// Equity values the state at price.
func (s *PortfolioState) Equity(price float64) decimal.Decimal {
	return s.cash.Add(s.position.Mul(decimal.NewFromFloat(price)))
}

// CheckInvariant fails when the state is neither Flat nor Invested.
func (s *PortfolioState) CheckInvariant(i int) error {
	switch {
	case s.cash.IsNegative():
		return errors.Newf(errors.ErrCodeInvariantViolation, "negative cash %s at bar %d", s.cash, i)
	case s.position.IsNegative():
		return errors.Newf(errors.ErrCodeInvariantViolation, "negative position %s at bar %d", s.position, i)
	case s.cash.IsPositive() && s.position.IsPositive():
		return errors.Newf(errors.ErrCodeInvariantViolation, "both cash %s and position %s held at bar %d", s.cash, s.position, i)
	case s.cash.IsZero() && s.position.IsZero():
		return errors.Newf(errors.ErrCodeInvariantViolation, "cash and position both zero at bar %d", i)
	}

	return nil
}

// Trades returns a copy of the trade log.
func (s *PortfolioState) Trades() []types.Trade {
	trades := make([]types.Trade, len(s.trades))
	copy(trades, s.trades)

	return trades
}
