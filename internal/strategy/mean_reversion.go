package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// MeanReversionName is the registry name of the Bollinger band mean reversion strategy.
const MeanReversionName = "mean_reversion"

// zeroWidthTolerance is the band half-width, relative to the mean, below which
// the band is treated as having zero width.
const zeroWidthTolerance = 1e-12

// MeanReversionParams configures a mean reversion strategy.
type MeanReversionParams struct {
	Window int     `yaml:"window" json:"window" validate:"gte=1" jsonschema:"title=Window,description=Rolling window of the mean and standard deviation,minimum=1,default=20"`
	NumStd float64 `yaml:"num_std" json:"num_std" validate:"gt=0" jsonschema:"title=Band Width,description=Band distance from the mean in standard deviations,exclusiveMinimum=0,default=2"`
}

// Validate checks that window is positive and num_std is a positive finite number.
func (p MeanReversionParams) Validate() error {
	if err := validateParams(p, map[string]errors.ErrorCode{
		"window":  errors.ErrCodeInvalidWindow,
		"num_std": errors.ErrCodeInvalidMultiplier,
	}); err != nil {
		return err
	}

	if math.IsInf(p.NumStd, 0) {
		return errors.NewValidationErrorf(errors.ErrCodeInvalidMultiplier, "num_std", p.NumStd, "must be finite")
	}

	return nil
}

// MeanReversion buys when the close falls below the lower band and sells when
// it rises above the upper band.
type MeanReversion struct {
	params MeanReversionParams
}

// NewMeanReversion validates params and returns the strategy.
func NewMeanReversion(params MeanReversionParams) (*MeanReversion, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &MeanReversion{params: params}, nil
}

func newMeanReversionFromMap(params map[string]any) (Strategy, error) {
	var p MeanReversionParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	return NewMeanReversion(p)
}

// Name returns MeanReversionName.
func (m *MeanReversion) Name() string {
	return MeanReversionName
}

// Parameters returns window and num_std.
func (m *MeanReversion) Parameters() map[string]any {
	return map[string]any{
		"window":  m.params.Window,
		"num_std": m.params.NumStd,
	}
}

// GenerateSignals computes Bollinger bands in strict-window mode and compares
// every close against them.
func (m *MeanReversion) GenerateSignals(series types.PriceSeries) (SignalSeries, error) {
	if err := series.Validate(); err != nil {
		return SignalSeries{}, err
	}

	bands := indicator.NewBollingerBands()
	if err := bands.Config(m.params.Window, m.params.NumStd, indicator.StrictWindow); err != nil {
		return SignalSeries{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to configure bollinger bands", err)
	}

	indicators, err := bands.Compute(series)
	if err != nil {
		return SignalSeries{}, err
	}

	signals := MeanReversionSignals(series.Closes(), indicators, m.params.Window-1)

	return newSignalSeries(signals, indicators), nil
}

// MeanReversionSignals applies the band rule to closes using the rolling
// mean, rolling std and band columns of indicators. Bars before activation,
// bars with an undefined band and bars whose band has zero width are Hold.
func MeanReversionSignals(closes []float64, indicators indicator.IndicatorSet, activation int) []types.Signal {
	signals := make([]types.Signal, len(closes))

	for i, c := range closes {
		if i < activation {
			continue
		}

		mean := indicators.Value(indicator.ColumnRollingMean, i)
		std := indicators.Value(indicator.ColumnRollingStd, i)
		upper := indicators.Value(indicator.ColumnUpperBand, i)
		lower := indicators.Value(indicator.ColumnLowerBand, i)

		if mean.IsNone() || std.IsNone() || upper.IsNone() || lower.IsNone() {
			continue
		}

		if std.Unwrap() <= zeroWidthTolerance*math.Abs(mean.Unwrap()) {
			continue
		}

		switch {
		case c < lower.Unwrap():
			signals[i] = types.SignalBuy
		case c > upper.Unwrap():
			signals[i] = types.SignalSell
		}
	}

	return signals
}
