package strategy

import (
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

const (
	buy  = types.SignalBuy
	hold = types.SignalHold
	sell = types.SignalSell
)

func seriesOf(closes ...float64) types.PriceSeries {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))

	for i, c := range closes {
		bars[i] = types.PriceBar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 500}
	}

	return types.PriceSeries{Symbol: "TEST", Bars: bars}
}
