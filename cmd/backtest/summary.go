package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-signals/internal/runner"
)

var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HeaderStyle for table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	// CellStyle for table cells.
	CellStyle = lipgloss.NewStyle().Padding(0, 1)
)

var summaryHeaders = []string{"Strategy", "Trades", "Win Rate", "Max Drawdown", "Final Equity", "Profit", "Buy & Hold"}

// summaryRows formats one table row per report.
func summaryRows(result runner.RunResult) [][]string {
	rows := make([][]string, 0, len(result.Reports))

	for _, report := range result.Reports {
		stats := report.Stats
		rows = append(rows, []string{
			report.Name,
			fmt.Sprintf("%d", stats.TradeResult.NumberOfTrades),
			fmt.Sprintf("%.1f%%", stats.TradeResult.WinRate*100),
			fmt.Sprintf("%.1f%%", stats.TradeResult.MaxDrawdown*100),
			fmt.Sprintf("%.2f", stats.FinalEquity),
			fmt.Sprintf("%+.2f", stats.TradePnl.TotalPnL),
			fmt.Sprintf("%+.2f", stats.BuyAndHoldPnl),
		})
	}

	return rows
}

// renderSummary renders the comparison table of a run.
func renderSummary(result runner.RunResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(summaryHeaders...).
		Rows(summaryRows(result)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}

			return CellStyle
		})

	title := TitleStyle.Render(fmt.Sprintf("%s: %d bars, run %s", result.Symbol, result.Bars, result.ID))

	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render())
}
