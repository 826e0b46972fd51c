package types

type IndicatorType string

const (
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)
