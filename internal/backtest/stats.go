package backtest

import (
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/shopspring/decimal"
)

// ComputeStats summarizes a backtest result. Identity fields (ID, symbol,
// strategy, file paths) are left for the caller to fill in.
func ComputeStats(result types.BacktestResult) types.TradeStats {
	stats := types.TradeStats{
		Bars:        len(result.Marks),
		InitialCash: result.InitialCash,
		FinalCash:   result.FinalCash,
		FinalEquity: result.FinalEquity,
	}

	signals := make([]types.Signal, len(result.Marks))
	for i, mark := range result.Marks {
		signals[i] = mark.Signal
	}

	stats.SignalCounts = types.CountSignals(signals)
	stats.TradeResult = tradeResult(result)
	stats.TradeResult.MaxDrawdown = maxDrawdown(result.Marks)
	stats.TradePnl = tradePnl(result)
	stats.BuyAndHoldPnl = buyAndHoldPnl(result)

	return stats
}

// roundTripPnls returns the pnl of every closed buy/sell pair.
func roundTripPnls(result types.BacktestResult) []decimal.Decimal {
	var pnls []decimal.Decimal

	flatCash := decimal.NewFromFloat(result.InitialCash)

	for _, trade := range result.Trades {
		if trade.Side != types.PurchaseTypeSell {
			continue
		}

		cash := decimal.NewFromFloat(trade.Cash)
		pnls = append(pnls, cash.Sub(flatCash))
		flatCash = cash
	}

	return pnls
}

func tradeResult(result types.BacktestResult) types.TradeResult {
	pnls := roundTripPnls(result)
	tr := types.TradeResult{
		NumberOfTrades:     len(result.Trades),
		NumberOfRoundTrips: len(pnls),
	}

	for _, pnl := range pnls {
		switch {
		case pnl.IsPositive():
			tr.NumberOfWinningTrades++
		case pnl.IsNegative():
			tr.NumberOfLosingTrades++
		}
	}

	if len(pnls) > 0 {
		tr.WinRate = float64(tr.NumberOfWinningTrades) / float64(len(pnls))
	}

	return tr
}

func tradePnl(result types.BacktestResult) types.TradePnl {
	pnl := types.TradePnl{
		RealizedPnL:   result.RealizedProfit,
		UnrealizedPnL: result.UnrealizedProfit,
		TotalPnL:      result.Profit,
	}

	for i, p := range roundTripPnls(result) {
		value := p.InexactFloat64()
		if i == 0 || value < pnl.MaximumLoss {
			pnl.MaximumLoss = value
		}

		if i == 0 || value > pnl.MaximumProfit {
			pnl.MaximumProfit = value
		}
	}

	return pnl
}

// maxDrawdown returns the largest peak-to-trough equity decline as a fraction of the peak.
func maxDrawdown(marks []types.Mark) float64 {
	var peak, worst float64

	for _, mark := range marks {
		if mark.Equity > peak {
			peak = mark.Equity
		}

		if peak > 0 {
			if dd := (peak - mark.Equity) / peak; dd > worst {
				worst = dd
			}
		}
	}

	return worst
}

func buyAndHoldPnl(result types.BacktestResult) float64 {
	if len(result.Marks) == 0 {
		return 0
	}

	initial := decimal.NewFromFloat(result.InitialCash)
	first := decimal.NewFromFloat(result.Marks[0].Close)
	last := decimal.NewFromFloat(result.Marks[len(result.Marks)-1].Close)

	return initial.Div(first).Mul(last).Sub(initial).InexactFloat64()
}
