package types

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// PriceBar is one trading period of price and volume data.
type PriceBar struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time" validate:"required"`
	Open   float64   `yaml:"open" json:"open" csv:"open" validate:"gte=0"`
	High   float64   `yaml:"high" json:"high" csv:"high" validate:"gte=0"`
	Low    float64   `yaml:"low" json:"low" csv:"low" validate:"gte=0"`
	Close  float64   `yaml:"close" json:"close" csv:"close" validate:"gt=0"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

var barValidator = validator.New()

// PriceSeries is a time ordered sequence of bars for one symbol.
// Indicator and signal stages read it but never write to it.
type PriceSeries struct {
	Symbol string
	Bars   []PriceBar
}

// NewPriceSeries copies bars into a new series and validates it.
func NewPriceSeries(symbol string, bars []PriceBar) (PriceSeries, error) {
	copied := make([]PriceBar, len(bars))
	copy(copied, bars)

	series := PriceSeries{
		Symbol: symbol,
		Bars:   copied,
	}

	if err := series.Validate(); err != nil {
		return PriceSeries{}, err
	}

	return series, nil
}

// Validate checks every bar's fields and that timestamps are strictly increasing.
// The returned error names the offending bar, e.g. "bars[3].time".
func (s PriceSeries) Validate() error {
	for i, bar := range s.Bars {
		if err := bar.checkFinite(i); err != nil {
			return err
		}

		if err := barValidator.Struct(bar); err != nil {
			return errors.NewValidationErrorf(errors.ErrCodeInvalidPriceBar, barParameter(i, ""), bar.Close, "invalid price bar: %v", err)
		}

		if i > 0 && !bar.Time.After(s.Bars[i-1].Time) {
			return errors.NewValidationErrorf(
				errors.ErrCodeNonIncreasingTime,
				barParameter(i, "time"),
				bar.Time,
				"timestamp must be after previous bar %s",
				s.Bars[i-1].Time.Format(time.RFC3339),
			)
		}
	}

	return nil
}

// checkFinite rejects NaN and infinite prices or volume, which pass the
// validator's range tags.
func (b PriceBar) checkFinite(index int) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
	}

	for _, field := range fields {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return errors.NewValidationErrorf(errors.ErrCodeInvalidPriceBar, barParameter(index, field.name), field.value, "must be a finite number")
		}
	}

	return nil
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns a copy of the closing prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}

// IndexOf returns the position of the bar with the given timestamp.
func (s PriceSeries) IndexOf(t time.Time) optional.Option[int] {
	lo, hi := 0, len(s.Bars)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Bars[mid].Time.Before(t) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo < len(s.Bars) && s.Bars[lo].Time.Equal(t) {
		return optional.Some(lo)
	}

	return optional.None[int]()
}

// Last returns the final bar, if any.
func (s PriceSeries) Last() optional.Option[PriceBar] {
	if len(s.Bars) == 0 {
		return optional.None[PriceBar]()
	}

	return optional.Some(s.Bars[len(s.Bars)-1])
}

func barParameter(index int, field string) string {
	if field == "" {
		return fmt.Sprintf("bars[%d]", index)
	}

	return fmt.Sprintf("bars[%d].%s", index, field)
}
