package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RunnerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockPriceSource
	ctx    context.Context
	clock  time.Time
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (suite *RunnerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockPriceSource(suite.ctrl)
	suite.ctx = context.Background()
	suite.clock = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *RunnerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *RunnerTestSuite) newRunner(opts ...Option) *Runner {
	opts = append(opts, WithClock(func() time.Time { return suite.clock }))

	return NewRunner(suite.source, strategy.NewDefaultRegistry(), logger.NewNopLogger(), opts...)
}

func seriesOf(closes ...float64) types.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))

	for i, c := range closes {
		bars[i] = types.PriceBar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 10}
	}

	return types.PriceSeries{Symbol: "TEST", Bars: bars}
}

func testConfig(resultsFolder string) config.Config {
	cfg := config.Default()
	cfg.Symbol = "TEST"
	cfg.DataPath = "unused.csv"
	cfg.ResultsFolder = resultsFolder
	cfg.Strategies = []config.StrategyConfig{
		{Name: strategy.CrossoverName, Params: map[string]any{"short_window": 2, "long_window": 3}},
		{Name: strategy.MeanReversionName, Params: map[string]any{"window": 3, "num_std": 1.0}},
	}

	return cfg
}

func (suite *RunnerTestSuite) TestRunComparesStrategies() {
	cfg := testConfig("")
	cfg.StartTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	suite.source.EXPECT().
		Load(gomock.Any(), "TEST", cfg.StartTime, cfg.EndTime).
		Return(seriesOf(10, 20, 40, 50, 60, 40, 20), nil).
		Times(1)

	result, err := suite.newRunner().Run(suite.ctx, cfg)
	suite.Require().NoError(err)

	suite.NotEmpty(result.ID)
	suite.Equal("TEST", result.Symbol)
	suite.Equal(7, result.Bars)
	suite.Empty(result.ResultFolder)
	suite.Require().Len(result.Reports, 2)

	crossover := result.Reports[0]
	suite.Equal(strategy.CrossoverName, crossover.Name)
	suite.Len(crossover.Result.Trades, 2)
	suite.Equal(-500.0, crossover.Result.Profit)
	suite.Equal(result.ID, crossover.Stats.ID)
	suite.Equal(suite.clock, crossover.Stats.Timestamp)
	suite.Equal("TEST", crossover.Stats.Symbol)
	suite.Equal(types.StrategyInfo{
		Name:       strategy.CrossoverName,
		Parameters: map[string]any{"short_window": 2, "long_window": 3},
	}, crossover.Stats.Strategy)

	suite.Equal(strategy.MeanReversionName, result.Reports[1].Name)
	suite.Len(result.Reports[1].Result.Marks, 7)
}

func (suite *RunnerTestSuite) TestRunWritesResults() {
	dir := suite.T().TempDir()
	cfg := testConfig(dir)
	cfg.Strategies[1].Label = "bands/tight"

	suite.source.EXPECT().
		Load(gomock.Any(), "TEST", gomock.Any(), gomock.Any()).
		Return(seriesOf(10, 20, 40, 50, 60, 40, 20), nil)

	result, err := suite.newRunner().Run(suite.ctx, cfg)
	suite.Require().NoError(err)

	suite.Equal(filepath.Join(dir, result.ID), result.ResultFolder)

	stats, err := types.ReadTradeStats(filepath.Join(result.ResultFolder, statsFileName))
	suite.Require().NoError(err)
	suite.Require().Len(stats, 2)
	suite.Equal(strategy.CrossoverName, stats[0].Strategy.Name)
	suite.Equal("bands/tight", stats[1].Strategy.Name)
	suite.Equal(2, stats[0].TradeResult.NumberOfTrades)
	suite.Equal(-500.0, stats[0].TradePnl.TotalPnL)

	tradesPath := filepath.Join(result.ResultFolder, strategy.CrossoverName, tradesFileName)
	suite.Equal(tradesPath, stats[0].TradesFilePath)
	suite.FileExists(filepath.Join(result.ResultFolder, "bands_tight", marksFileName))

	file, err := os.Open(tradesPath)
	suite.Require().NoError(err)
	defer file.Close()

	var rows []struct {
		Index int     `csv:"index"`
		Side  string  `csv:"side"`
		Price float64 `csv:"price"`
	}
	suite.Require().NoError(gocsv.UnmarshalFile(file, &rows))
	suite.Require().Len(rows, 2)
	suite.Equal("BUY", rows[0].Side)
	suite.Equal(40.0, rows[0].Price)
	suite.Equal("SELL", rows[1].Side)
	suite.Equal(6, rows[1].Index)
}

func (suite *RunnerTestSuite) TestCallbacks() {
	cfg := testConfig("")

	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(seriesOf(10, 11, 12, 13), nil)

	var (
		mu           sync.Mutex
		startID      string
		startBars    int
		finished     []string
		endErr       error
		endCallCount int
	)

	onStart := OnRunStartCallback(func(runID string, symbol string, totalBars int, totalStrategies int) error {
		startID = runID
		startBars = totalBars

		suite.Equal(2, totalStrategies)

		return nil
	})
	onStrategyEnd := OnStrategyEndCallback(func(_ int, report Report) {
		mu.Lock()
		defer mu.Unlock()

		finished = append(finished, report.Name)
	})
	onEnd := OnRunEndCallback(func(err error) {
		endErr = err
		endCallCount++
	})

	result, err := suite.newRunner(WithCallbacks(LifecycleCallbacks{
		OnRunStart:    &onStart,
		OnStrategyEnd: &onStrategyEnd,
		OnRunEnd:      &onEnd,
	}), WithConcurrency(1)).Run(suite.ctx, cfg)
	suite.Require().NoError(err)

	suite.Equal(result.ID, startID)
	suite.Equal(4, startBars)
	suite.ElementsMatch([]string{strategy.CrossoverName, strategy.MeanReversionName}, finished)
	suite.NoError(endErr)
	suite.Equal(1, endCallCount)
}

func (suite *RunnerTestSuite) TestOnRunStartErrorStopsRun() {
	cfg := testConfig("")

	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(seriesOf(10, 11, 12), nil)

	var endErr error

	onStart := OnRunStartCallback(func(string, string, int, int) error {
		return errors.New(errors.ErrCodeBacktestCancelled, "stopped by user")
	})
	onEnd := OnRunEndCallback(func(err error) {
		endErr = err
	})

	_, err := suite.newRunner(WithCallbacks(LifecycleCallbacks{OnRunStart: &onStart, OnRunEnd: &onEnd})).Run(suite.ctx, cfg)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeBacktestCancelled, errors.GetCode(err))
	suite.Equal(err, endErr)
}

func (suite *RunnerTestSuite) TestInvalidStrategyFailsBeforeLoading() {
	cfg := testConfig("")
	cfg.Strategies[0].Params = map[string]any{"short_window": 5, "long_window": 3}

	_, err := suite.newRunner().Run(suite.ctx, cfg)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidWindowOrder, errors.GetCode(err))
	suite.Equal("short_window", errors.InvalidParameter(err))

	cfg = testConfig("")
	cfg.Strategies[1].Name = "momentum"

	_, err = suite.newRunner().Run(suite.ctx, cfg)
	suite.Equal(errors.ErrCodeStrategyNotFound, errors.GetCode(err))
}

func (suite *RunnerTestSuite) TestInvalidConfig() {
	cfg := testConfig("")
	cfg.InitialCash = -1

	_, err := suite.newRunner().Run(suite.ctx, cfg)
	suite.Equal(errors.ErrCodeInvalidInitialCash, errors.GetCode(err))
}

func (suite *RunnerTestSuite) TestLoadError() {
	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, errors.New(errors.ErrCodeDataNotFound, "no file"))

	_, err := suite.newRunner().Run(suite.ctx, testConfig(""))
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}

func (suite *RunnerTestSuite) TestCancelledContext() {
	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(seriesOf(10, 11, 12), nil)

	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	_, err := suite.newRunner().Run(ctx, testConfig(""))
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeBacktestCancelled, errors.GetCode(err))
}

func (suite *RunnerTestSuite) TestEmptySeries() {
	dir := suite.T().TempDir()

	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{Symbol: "TEST"}, nil)

	result, err := suite.newRunner().Run(suite.ctx, testConfig(dir))
	suite.Require().NoError(err)

	for _, report := range result.Reports {
		suite.Empty(report.Result.Trades)
		suite.Equal(1000.0, report.Result.FinalCash)
		suite.Equal(0.0, report.Result.Profit)
	}

	suite.FileExists(filepath.Join(result.ResultFolder, statsFileName))
}

func (suite *RunnerTestSuite) TestGeneratedData() {
	gen := mocks.NewDataGenerator(8)
	genConfig := mocks.DefaultConfig()
	genConfig.Symbol = "TEST"
	genConfig.Count = 500
	series := gen.GeneratePriceSeries(genConfig)

	suite.source.EXPECT().
		Load(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(series, nil)

	cfg := testConfig("")
	cfg.Strategies = []config.StrategyConfig{
		{Name: strategy.CrossoverName, Label: "fast", Params: map[string]any{"short_window": 5, "long_window": 20}},
		{Name: strategy.CrossoverName, Label: "slow", Params: map[string]any{"short_window": 40, "long_window": 100}},
		{Name: strategy.MeanReversionName, Params: map[string]any{"window": 20, "num_std": 2}},
	}

	result, err := suite.newRunner(WithConcurrency(2)).Run(suite.ctx, cfg)
	suite.Require().NoError(err)
	suite.Require().Len(result.Reports, 3)

	for i, report := range result.Reports {
		suite.Equal(cfg.Strategies[i].DisplayName(), report.Name)
		suite.Len(report.Result.Marks, series.Len())
		suite.Equal(series.Len(), report.Stats.Bars)
		suite.InDelta(report.Result.FinalEquity-1000, report.Result.Profit, 1e-9)
	}
}
