package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/datasource"
	"github.com/rxtech-lab/argo-signals/internal/runner"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type BacktestCommandTestSuite struct {
	suite.Suite
	dir string
}

func TestBacktestCommandSuite(t *testing.T) {
	suite.Run(t, new(BacktestCommandTestSuite))
}

func (suite *BacktestCommandTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *BacktestCommandTestSuite) TestSchemaCommand() {
	out := filepath.Join(suite.dir, "config")

	err := newCommand().Run(context.Background(), []string{"backtest", "schema", "--out", out})
	suite.Require().NoError(err)

	suite.FileExists(filepath.Join(out, schemaFileName))

	data, err := os.ReadFile(filepath.Join(out, sampleConfigFileName))
	suite.Require().NoError(err)
	suite.Contains(string(data), "# yaml-language-server: $schema="+schemaFileName)

	cfg, err := config.Parse(data)
	suite.Require().NoError(err)
	suite.Equal(config.Sample().Symbol, cfg.Symbol)
}

func (suite *BacktestCommandTestSuite) TestRunCommand() {
	gen := mocks.NewDataGenerator(17)
	genConfig := mocks.DefaultConfig()
	genConfig.Symbol = "GEN"
	genConfig.Count = 250

	dataPath := filepath.Join(suite.dir, "gen.csv")
	suite.Require().NoError(datasource.WriteCSV(dataPath, gen.GeneratePriceSeries(genConfig)))

	cfg := config.Sample()
	cfg.Symbol = "GEN"
	cfg.DataPath = "ignored.csv"
	cfg.Strategies[0].Params = map[string]any{"short_window": 5, "long_window": 20}

	configData, err := yaml.Marshal(cfg)
	suite.Require().NoError(err)

	configPath := filepath.Join(suite.dir, "config.yaml")
	suite.Require().NoError(os.WriteFile(configPath, configData, 0644))

	results := filepath.Join(suite.dir, "results")

	err = newCommand().Run(context.Background(), []string{
		"backtest", "--config", configPath, "--data", dataPath, "--results", results, "--concurrency", "2",
	})
	suite.Require().NoError(err)

	runs, err := os.ReadDir(results)
	suite.Require().NoError(err)
	suite.Require().Len(runs, 1)

	stats, err := types.ReadTradeStats(filepath.Join(results, runs[0].Name(), "stats.yaml"))
	suite.Require().NoError(err)
	suite.Len(stats, 2)
	suite.Equal(250, stats[0].Bars)
}

func (suite *BacktestCommandTestSuite) TestRunCommandRequiresConfig() {
	err := newCommand().Run(context.Background(), []string{"backtest"})
	suite.Require().Error(err)
	suite.Contains(err.Error(), "--config")
}

func (suite *BacktestCommandTestSuite) TestStrategiesCommand() {
	err := newCommand().Run(context.Background(), []string{"backtest", "strategies"})
	suite.NoError(err)
}

func (suite *BacktestCommandTestSuite) TestRenderSummary() {
	result := runner.RunResult{
		ID:     "run-1",
		Symbol: "AAPL",
		Bars:   4,
		Reports: []runner.Report{
			{
				Name: "crossover",
				Stats: types.TradeStats{
					FinalEquity:   1200,
					TradeResult:   types.TradeResult{NumberOfTrades: 2, WinRate: 1, MaxDrawdown: 0.25},
					TradePnl:      types.TradePnl{TotalPnL: 200},
					BuyAndHoldPnl: -50,
				},
			},
		},
	}

	rows := summaryRows(result)
	suite.Equal([][]string{{"crossover", "2", "100.0%", "25.0%", "1200.00", "+200.00", "-50.00"}}, rows)

	rendered := renderSummary(result)
	suite.Contains(rendered, "AAPL: 4 bars, run run-1")
	suite.Contains(rendered, "crossover")
	suite.Contains(rendered, "+200.00")
}
