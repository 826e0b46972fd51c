package datasource

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// timeLayouts are tried in order when parsing the time column.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVTime is a time column that accepts RFC 3339 timestamps and plain dates.
type CSVTime struct {
	time.Time
}

// UnmarshalCSV parses the first layout in timeLayouts that matches.
func (t *CSVTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeUnsupportedFormat, "cannot parse time %q", value)
}

// MarshalCSV writes the time in RFC 3339.
func (t CSVTime) MarshalCSV() (string, error) {
	return t.Time.UTC().Format(time.RFC3339), nil
}

// PriceRecord is one row of a price file.
type PriceRecord struct {
	Time   CSVTime `csv:"time"`
	Symbol string  `csv:"symbol"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func (r PriceRecord) bar() types.PriceBar {
	return types.PriceBar{
		Time:   r.Time.Time,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
	}
}

// CSVSource reads a csv file with a time,symbol,open,high,low,close,volume
// header. The symbol column is optional; rows without a symbol match any symbol.
// Rows are kept in file order, so each symbol's rows must already be in time
// order. The file is parsed once and kept in memory.
type CSVSource struct {
	path    string
	log     *logger.Logger
	records []PriceRecord
}

// NewCSVSource parses the file at path.
func NewCSVSource(path string, log *logger.Logger) (*CSVSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open csv file %s", path)
	}
	defer file.Close()

	var records []PriceRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeUnsupportedFormat, err, "failed to parse csv file %s", path)
	}

	log.Debug("Loaded csv price file", zap.String("path", path), zap.Int("rows", len(records)))

	return &CSVSource{
		path:    path,
		log:     log.Named("csv"),
		records: records,
	}, nil
}

// Load implements PriceSource.
func (s *CSVSource) Load(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "load cancelled", err)
	}

	bars := make([]types.PriceBar, 0, len(s.records))

	for _, record := range s.records {
		if symbol != "" && record.Symbol != "" && record.Symbol != symbol {
			continue
		}

		if !inRange(record.Time.Time, start, end) {
			continue
		}

		bars = append(bars, record.bar())
	}

	s.log.Debug("Loaded price series",
		zap.String("path", s.path),
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)

	return types.NewPriceSeries(symbol, bars)
}

// Close implements PriceSource.
func (s *CSVSource) Close() error {
	s.records = nil

	return nil
}

// WriteCSV writes series to path in the format CSVSource reads.
func WriteCSV(path string, series types.PriceSeries) error {
	records := make([]PriceRecord, len(series.Bars))
	for i, bar := range series.Bars {
		records[i] = PriceRecord{
			Time:   CSVTime{bar.Time},
			Symbol: series.Symbol,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", path)
	}

	return nil
}
