package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// DataGenerator generates realistic price series and signal sequences for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price data is generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the beginning of the data series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a daily-bar configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          500,
		InitialPrice:   100.0,
		Volatility:     0.02, // 2% per bar
		Trend:          0.0,  // neutral
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion model.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PriceBar {
	bars := make([]types.PriceBar, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + priceChange + drift)
		if closePrice <= 0.01 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars[i] = types.PriceBar{
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  math.Max(roundToDecimals(closePrice, 4), 0.0001),
			Volume: roundToDecimals(volume, 2),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

// GeneratePriceSeries wraps Generate into a PriceSeries.
func (g *DataGenerator) GeneratePriceSeries(config GeneratorConfig) types.PriceSeries {
	return types.PriceSeries{
		Symbol: config.Symbol,
		Bars:   g.Generate(config),
	}
}

// GenerateSignals draws n signals uniformly from Buy, Hold and Sell.
func (g *DataGenerator) GenerateSignals(n int) []types.Signal {
	signals := make([]types.Signal, n)
	for i := range signals {
		signals[i] = types.Signal(g.rng.Intn(3) - 1)
	}

	return signals
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
