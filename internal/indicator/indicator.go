package indicator

import (
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator. The accepted parameters depend on the indicator.
	Config(params ...any) error
	// Compute derives the indicator columns for every bar of the series.
	// The series is only read.
	Compute(series types.PriceSeries) (IndicatorSet, error)
}

// WindowPolicy decides how many observations a rolling window needs before
// it yields a value.
type WindowPolicy int

const (
	// PartialWindow uses whatever observations are available at the start of
	// the series (1..window).
	PartialWindow WindowPolicy = iota
	// StrictWindow leaves a value undefined until the window is full.
	StrictWindow
)

func (p WindowPolicy) String() string {
	switch p {
	case PartialWindow:
		return "partial"
	case StrictWindow:
		return "strict"
	default:
		return "unknown"
	}
}

// minPeriods returns the observation count required for a value.
// floor is the statistic's own minimum, 1 for a mean and 2 for a sample stddev.
func (p WindowPolicy) minPeriods(window, floor int) int {
	required := floor
	if p == StrictWindow {
		required = window
	}

	if required < floor {
		required = floor
	}

	return required
}

// Series is a numeric column aligned with a price series. None marks bars
// where the value is undefined.
type Series []optional.Option[float64]

// At returns the value at position i, or None when i is out of range.
func (s Series) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(s) {
		return optional.None[float64]()
	}

	return s[i]
}

// FirstDefined returns the first position holding a value.
func (s Series) FirstDefined() optional.Option[int] {
	for i, v := range s {
		if v.IsSome() {
			return optional.Some(i)
		}
	}

	return optional.None[int]()
}

// IndicatorSet holds named indicator columns, e.g. "short_mavg" or "upper_band".
type IndicatorSet map[string]Series

// Merge copies every column of other into s, replacing columns with the same name.
func (s IndicatorSet) Merge(other IndicatorSet) {
	for name, series := range other {
		s[name] = series
	}
}

// Names returns the column names in sorted order.
func (s IndicatorSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Value returns a column's value at position i. A missing column is undefined.
func (s IndicatorSet) Value(name string, i int) optional.Option[float64] {
	series, ok := s[name]
	if !ok {
		return optional.None[float64]()
	}

	return series.At(i)
}
