package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradePnl struct {
	// Realized PnL. Sum of all closed round trips.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Unrealized PnL of a position still open at the last bar, valued at the last close.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Total PnL. RealizedPnL plus UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Maximum loss. The worst closed round trip.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. The best closed round trip.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of executed trades, buys and sells.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of closed buy/sell round trips.
	NumberOfRoundTrips int `yaml:"number_of_round_trips" json:"number_of_round_trips"`
	// Count of round trips with positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of round trips with negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate over round trips.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Maximum drawdown of the equity curve as a fraction of its running peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

// StrategyInfo identifies the strategy that generated stats.
type StrategyInfo struct {
	Name       string         `yaml:"name" json:"name"`
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
}

type TradeStats struct {
	// ID is the unique identifier for the comparison run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the run was executed.
	Timestamp time.Time    `yaml:"timestamp" json:"timestamp"`
	Symbol    string       `yaml:"symbol" json:"symbol"`
	Strategy  StrategyInfo `yaml:"strategy" json:"strategy"`
	// Bars is the number of bars evaluated.
	Bars         int          `yaml:"bars" json:"bars"`
	SignalCounts SignalCounts `yaml:"signal_counts" json:"signal_counts"`
	InitialCash  float64      `yaml:"initial_cash" json:"initial_cash"`
	FinalCash    float64      `yaml:"final_cash" json:"final_cash"`
	FinalEquity  float64      `yaml:"final_equity" json:"final_equity"`
	TradeResult  TradeResult  `yaml:"trade_result" json:"trade_result"`
	TradePnl     TradePnl     `yaml:"trade_pnl" json:"trade_pnl"`
	// Buy and hold PnL: all cash invested at the first close, valued at the last close.
	BuyAndHoldPnl float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	// TradesFilePath is the path to the trades csv file.
	TradesFilePath string `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty"`
	// MarksFilePath is the path to the marks csv file.
	MarksFilePath string `yaml:"marks_file_path,omitempty" json:"marks_file_path,omitempty"`
}

func WriteTradeStats(path string, stats []TradeStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trade stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trade stats to file: %w", err)
	}

	return nil
}

func ReadTradeStats(path string) ([]TradeStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trade stats file: %w", err)
	}

	var stats []TradeStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trade stats: %w", err)
	}

	return stats, nil
}
