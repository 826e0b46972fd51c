package strategy

import (
	"context"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/backtest"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CrossoverTestSuite struct {
	suite.Suite
	executor *backtest.Executor
}

func TestCrossoverSuite(t *testing.T) {
	suite.Run(t, new(CrossoverTestSuite))
}

func (suite *CrossoverTestSuite) SetupTest() {
	suite.executor = backtest.NewExecutor(nil)
}

func (suite *CrossoverTestSuite) TestFlatSeriesHoldsEverywhere() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 2, LongWindow: 3})
	suite.Require().NoError(err)

	series := seriesOf(10, 10, 10, 10, 10)

	signals, err := strategy.GenerateSignals(series)
	suite.Require().NoError(err)
	suite.Equal([]types.Signal{hold, hold, hold, hold, hold}, signals.Signals)
	suite.Equal([]int{0, 0, 0, 0, 0}, signals.Positions)

	result, err := Evaluate(context.Background(), strategy, suite.executor, series, 1000)
	suite.Require().NoError(err)
	suite.Empty(result.Trades)
	suite.Equal(0.0, result.Profit)
	suite.Equal(1000.0, result.FinalCash)
}

func (suite *CrossoverTestSuite) TestRiseAndFall() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 2, LongWindow: 3})
	suite.Require().NoError(err)

	series := seriesOf(10, 20, 40, 50, 60, 40, 20)

	signals, err := strategy.GenerateSignals(series)
	suite.Require().NoError(err)

	// bar 5: short (60+40)/2 == long (50+60+40)/3
	suite.Equal([]types.Signal{hold, hold, buy, buy, buy, hold, sell}, signals.Signals)
	suite.Equal([]int{0, 0, 1, 0, 0, -1, -1}, signals.Positions)
	suite.Equal([]string{ColumnLongMA, ColumnShortMA}, signals.Indicators.Names())

	short := signals.Indicators[ColumnShortMA]
	suite.Equal(optional.Some(10.0), short[0])
	suite.Equal(optional.Some(15.0), short[1])
	suite.Equal(optional.Some(50.0), signals.Indicators.Value(ColumnLongMA, 5))

	result, err := Evaluate(context.Background(), strategy, suite.executor, series, 1000)
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 2)
	suite.Equal(2, result.Trades[0].Index)
	suite.Equal(25.0, result.Trades[0].Position)
	suite.Equal(6, result.Trades[1].Index)
	suite.Equal(500.0, result.FinalCash)
	suite.Equal(-500.0, result.Profit)
}

func (suite *CrossoverTestSuite) TestSignalsBeforeActivationHold() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 3, LongWindow: 5})
	suite.Require().NoError(err)

	signals, err := strategy.GenerateSignals(seriesOf(1, 2, 3, 4, 5, 6, 7))
	suite.Require().NoError(err)

	suite.Equal([]types.Signal{hold, hold, hold, buy, buy, buy, buy}, signals.Signals)
}

func (suite *CrossoverTestSuite) TestEmptySeries() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 2, LongWindow: 3})
	suite.Require().NoError(err)

	signals, err := strategy.GenerateSignals(types.PriceSeries{})
	suite.Require().NoError(err)
	suite.Equal(0, signals.Len())

	result, err := Evaluate(context.Background(), strategy, suite.executor, types.PriceSeries{}, 1000)
	suite.Require().NoError(err)
	suite.Empty(result.Trades)
	suite.Equal(1000.0, result.FinalCash)
	suite.Equal(0.0, result.Profit)
}

func (suite *CrossoverTestSuite) TestSignalLengthMatchesSeries() {
	gen := mocks.NewDataGenerator(11)
	config := mocks.DefaultConfig()
	config.Count = 300

	series := gen.GeneratePriceSeries(config)
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 10, LongWindow: 30})
	suite.Require().NoError(err)

	signals, err := strategy.GenerateSignals(series)
	suite.Require().NoError(err)
	suite.Equal(series.Len(), signals.Len())
	suite.Len(signals.Positions, series.Len())

	for _, column := range signals.Indicators {
		suite.Len(column, series.Len())
	}

	for i := 0; i < 10; i++ {
		suite.Equal(hold, signals.Signals[i])
	}
}

func (suite *CrossoverTestSuite) TestNoLookahead() {
	gen := mocks.NewDataGenerator(5)
	config := mocks.DefaultConfig()
	config.Count = 120

	full := gen.GeneratePriceSeries(config)
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 5, LongWindow: 20})
	suite.Require().NoError(err)

	fullSignals, err := strategy.GenerateSignals(full)
	suite.Require().NoError(err)

	prefix := types.PriceSeries{Symbol: full.Symbol, Bars: full.Bars[:60]}
	prefixSignals, err := strategy.GenerateSignals(prefix)
	suite.Require().NoError(err)

	suite.Equal(fullSignals.Signals[:60], prefixSignals.Signals)
}

func (suite *CrossoverTestSuite) TestGenerateSignalsDoesNotMutateSeries() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 2, LongWindow: 4})
	suite.Require().NoError(err)

	series := seriesOf(5, 6, 7, 3, 2, 9)
	before := append([]types.PriceBar(nil), series.Bars...)

	_, err = strategy.GenerateSignals(series)
	suite.Require().NoError(err)
	suite.Equal(before, series.Bars)
}

func (suite *CrossoverTestSuite) TestInvalidParams() {
	tests := []struct {
		name          string
		params        CrossoverParams
		expectCode    errors.ErrorCode
		expectedParam string
	}{
		{name: "zero short", params: CrossoverParams{ShortWindow: 0, LongWindow: 3}, expectCode: errors.ErrCodeInvalidWindow, expectedParam: "short_window"},
		{name: "negative long", params: CrossoverParams{ShortWindow: 1, LongWindow: -1}, expectCode: errors.ErrCodeInvalidWindow, expectedParam: "long_window"},
		{name: "equal windows", params: CrossoverParams{ShortWindow: 3, LongWindow: 3}, expectCode: errors.ErrCodeInvalidWindowOrder, expectedParam: "short_window"},
		{name: "short above long", params: CrossoverParams{ShortWindow: 10, LongWindow: 3}, expectCode: errors.ErrCodeInvalidWindowOrder, expectedParam: "short_window"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := NewCrossover(tc.params)
			suite.Require().Error(err)
			suite.Equal(tc.expectCode, errors.GetCode(err))
			suite.Equal(tc.expectedParam, errors.InvalidParameter(err))
		})
	}
}

func (suite *CrossoverTestSuite) TestBothWindowsZero() {
	err := CrossoverParams{ShortWindow: 0, LongWindow: 0}.Validate()
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidWindow, errors.GetCode(err))
	suite.Equal("short_window", errors.InvalidParameter(err))
}

func (suite *CrossoverTestSuite) TestInvalidSeries() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 2, LongWindow: 3})
	suite.Require().NoError(err)

	series := seriesOf(1, 2, 3)
	series.Bars[1].Time = series.Bars[0].Time

	_, err = strategy.GenerateSignals(series)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeNonIncreasingTime, errors.GetCode(err))
	suite.Equal("bars[1].time", errors.InvalidParameter(err))
}

func (suite *CrossoverTestSuite) TestParameters() {
	strategy, err := NewCrossover(CrossoverParams{ShortWindow: 40, LongWindow: 100})
	suite.Require().NoError(err)

	suite.Equal(CrossoverName, strategy.Name())
	suite.Equal(map[string]any{"short_window": 40, "long_window": 100}, strategy.Parameters())
}

func (suite *CrossoverTestSuite) TestCrossoverSignalsRule() {
	short := indicator.Series{
		optional.Some(1.0), optional.Some(3.0), optional.Some(2.0), optional.Some(1.0), optional.None[float64](),
	}
	long := indicator.Series{
		optional.Some(2.0), optional.Some(2.0), optional.Some(2.0), optional.Some(2.0), optional.Some(2.0),
	}

	suite.Equal([]types.Signal{sell, buy, hold, sell, hold}, CrossoverSignals(short, long, 0))
	suite.Equal([]types.Signal{hold, hold, hold, sell, hold}, CrossoverSignals(short, long, 3))
}
