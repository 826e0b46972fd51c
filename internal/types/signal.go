package types

import "fmt"

// Signal is the per-bar trading directive derived from indicators.
type Signal int

const (
	// SignalSell tells the executor to close an open position.
	SignalSell Signal = -1
	// SignalHold tells the executor to do nothing.
	SignalHold Signal = 0
	// SignalBuy tells the executor to invest all cash.
	SignalBuy Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	case SignalHold:
		return "hold"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// MarshalCSV writes the signal by name.
func (s Signal) MarshalCSV() (string, error) {
	return s.String(), nil
}

// SignalCounts tallies signals by kind.
type SignalCounts struct {
	Buy  int `yaml:"buy" json:"buy"`
	Hold int `yaml:"hold" json:"hold"`
	Sell int `yaml:"sell" json:"sell"`
}

// CountSignals returns how many bars carry each signal.
func CountSignals(signals []Signal) SignalCounts {
	var counts SignalCounts

	for _, s := range signals {
		switch s {
		case SignalBuy:
			counts.Buy++
		case SignalSell:
			counts.Sell++
		default:
			counts.Hold++
		}
	}

	return counts
}

// PositionChanges returns the first difference of the signal sequence.
// The first entry is 0; later entries are nonzero only where the signal changed.
func PositionChanges(signals []Signal) []int {
	changes := make([]int, len(signals))
	for i := 1; i < len(signals); i++ {
		changes[i] = int(signals[i]) - int(signals[i-1])
	}

	return changes
}
