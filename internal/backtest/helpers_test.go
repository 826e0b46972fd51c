package backtest

import (
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func seriesOf(closes ...float64) types.PriceSeries {
	bars := make([]types.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = types.PriceBar{
			Time:   testStart.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}

	return types.PriceSeries{Symbol: "TEST", Bars: bars}
}

func signalsOf(s ...types.Signal) []types.Signal {
	return s
}

const (
	buy  = types.SignalBuy
	hold = types.SignalHold
	sell = types.SignalSell
)
