package types

import "time"

type PurchaseType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

// Trade is one executed order in the backtest trade log.
type Trade struct {
	Time time.Time `yaml:"time" json:"time" csv:"time"`
	// Index is the bar position the trade executed on.
	Index int          `yaml:"index" json:"index" csv:"index"`
	Side  PurchaseType `yaml:"side" json:"side" csv:"side"`
	// Price is the bar's closing price.
	Price float64 `yaml:"price" json:"price" csv:"price"`
	// Position is the quantity held after the trade, 0 after a sell.
	Position float64 `yaml:"position" json:"position" csv:"position"`
	// Cash is the cash balance after the trade, 0 after a buy.
	Cash float64 `yaml:"cash" json:"cash" csv:"cash"`
}

// Mark records the portfolio at the close of a bar.
type Mark struct {
	Time     time.Time `yaml:"time" json:"time" csv:"time"`
	Close    float64   `yaml:"close" json:"close" csv:"close"`
	Signal   Signal    `yaml:"signal" json:"signal" csv:"signal"`
	Cash     float64   `yaml:"cash" json:"cash" csv:"cash"`
	Position float64   `yaml:"position" json:"position" csv:"position"`
	// Equity is cash plus position valued at Close.
	Equity float64 `yaml:"equity" json:"equity" csv:"equity"`
}

// BacktestResult is the outcome of executing one signal sequence.
type BacktestResult struct {
	Trades      []Trade
	Marks       []Mark
	InitialCash float64
	// FinalCash is the cash balance after the last bar. It is 0 when the
	// series ends while invested.
	FinalCash     float64
	FinalPosition float64
	// FinalEquity values any open position at the last close.
	FinalEquity float64
	// RealizedProfit only counts closed round trips.
	RealizedProfit   float64
	UnrealizedProfit float64
	// Profit is FinalEquity minus InitialCash.
	Profit float64
}

// IsInvested reports whether the run ended holding a position.
func (r BacktestResult) IsInvested() bool {
	return r.FinalPosition > 0
}
