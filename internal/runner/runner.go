package runner

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/backtest"
	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/datasource"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OnRunStartCallback is called once the price series is loaded.
type OnRunStartCallback func(runID string, symbol string, totalBars int, totalStrategies int) error

// OnRunEndCallback is called when the run completes (always called via defer).
type OnRunEndCallback func(err error)

// OnStrategyEndCallback is called when one strategy finished evaluating.
// It may be called from several goroutines at once.
type OnStrategyEndCallback func(strategyIndex int, report Report)

// LifecycleCallbacks holds all lifecycle callback functions for the runner.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnStrategyEnd *OnStrategyEndCallback
}

// Report is the outcome of one configured strategy.
type Report struct {
	// Name is the strategy's label in the config, unique within a run.
	Name     string
	Strategy strategy.Strategy
	Result   types.BacktestResult
	Stats    types.TradeStats
}

// RunResult holds every report of a run in config order.
type RunResult struct {
	ID      string
	Symbol  string
	Bars    int
	Reports []Report
	// ResultFolder is where the results were written, empty when nothing was written.
	ResultFolder string
}

// Runner evaluates every strategy of a config against one shared price series.
type Runner struct {
	source      datasource.PriceSource
	registry    strategy.StrategyRegistry
	executor    *backtest.Executor
	log         *logger.Logger
	callbacks   LifecycleCallbacks
	concurrency int
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCallbacks sets the lifecycle callbacks.
func WithCallbacks(callbacks LifecycleCallbacks) Option {
	return func(r *Runner) {
		r.callbacks = callbacks
	}
}

// WithConcurrency limits how many strategies are evaluated at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithClock replaces time.Now for the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a runner reading from source and building strategies from registry.
func NewRunner(source datasource.PriceSource, registry strategy.StrategyRegistry, log *logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}

	r := &Runner{
		source:      source,
		registry:    registry,
		executor:    backtest.NewExecutor(log),
		log:         log.Named("runner"),
		concurrency: runtime.NumCPU(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run loads the configured series once and evaluates every strategy on it
// concurrently. When cfg.ResultsFolder is set the results are written below
// <results_folder>/<run id>.
func (r *Runner) Run(ctx context.Context, cfg config.Config) (result RunResult, err error) {
	if r.callbacks.OnRunEnd != nil {
		defer func() {
			(*r.callbacks.OnRunEnd)(err)
		}()
	}

	if err := cfg.Validate(); err != nil {
		return RunResult{}, err
	}

	strategies, err := r.buildStrategies(cfg.Strategies)
	if err != nil {
		return RunResult{}, err
	}

	series, err := r.source.Load(ctx, cfg.Symbol, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return RunResult{}, err
	}

	runID := uuid.New().String()
	timestamp := r.now()

	r.log.Info("Starting run",
		zap.String("run_id", runID),
		zap.String("symbol", cfg.Symbol),
		zap.Int("bars", series.Len()),
		zap.Int("strategies", len(strategies)),
	)

	if series.Len() == 0 {
		r.log.Warn("No bars in the selected range", zap.String("symbol", cfg.Symbol))
	}

	if r.callbacks.OnRunStart != nil {
		if err := (*r.callbacks.OnRunStart)(runID, cfg.Symbol, series.Len(), len(strategies)); err != nil {
			return RunResult{}, err
		}
	}

	reports := make([]Report, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	var callbackMu sync.Mutex

	for i, s := range strategies {
		i, s := i, s
		name := cfg.Strategies[i].DisplayName()

		g.Go(func() error {
			backtestResult, err := strategy.Evaluate(gctx, s, r.executor, series, cfg.InitialCash)
			if err != nil {
				r.log.Error("Strategy failed", zap.String("strategy", name), zap.Error(err))

				return errors.Wrapf(errors.GetCode(err), err, "strategy %s failed", name)
			}

			stats := backtest.ComputeStats(backtestResult)
			stats.ID = runID
			stats.Timestamp = timestamp
			stats.Symbol = cfg.Symbol
			stats.Strategy = types.StrategyInfo{Name: name, Parameters: s.Parameters()}

			reports[i] = Report{
				Name:     name,
				Strategy: s,
				Result:   backtestResult,
				Stats:    stats,
			}

			r.log.Info("Strategy finished",
				zap.String("strategy", name),
				zap.Int("trades", len(backtestResult.Trades)),
				zap.Float64("profit", backtestResult.Profit),
			)

			if r.callbacks.OnStrategyEnd != nil {
				callbackMu.Lock()
				(*r.callbacks.OnStrategyEnd)(i, reports[i])
				callbackMu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}

	result = RunResult{
		ID:      runID,
		Symbol:  cfg.Symbol,
		Bars:    series.Len(),
		Reports: reports,
	}

	if cfg.ResultsFolder != "" {
		folder, err := WriteResults(cfg.ResultsFolder, &result)
		if err != nil {
			return RunResult{}, err
		}

		result.ResultFolder = folder
	}

	r.log.Info("Run finished", zap.String("run_id", runID), zap.String("result_folder", result.ResultFolder))

	return result, nil
}

func (r *Runner) buildStrategies(configs []config.StrategyConfig) ([]strategy.Strategy, error) {
	strategies := make([]strategy.Strategy, len(configs))

	for i, c := range configs {
		s, err := r.registry.NewStrategy(c.Name, c.Params)
		if err != nil {
			return nil, errors.Wrapf(errors.GetCode(err), err, "invalid strategy %s", c.DisplayName())
		}

		strategies[i] = s
	}

	return strategies, nil
}
