package datasource

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// PriceSource loads historical bars for one symbol.
type PriceSource interface {
	// Load returns the bars of symbol between start and end, both inclusive
	// and both optional, ordered by time. An empty symbol matches every row.
	Load(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error)
	// Close releases any resources held by the source.
	Close() error
}

// Open returns the source matching the file extension of path:
// .csv files are read with CSVSource, .parquet files with DuckDBSource.
func Open(path string, log *logger.Logger) (PriceSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVSource(path, log)
	case ".parquet":
		return NewDuckDBSource(path, log)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported data file %s, expected .csv or .parquet", path)
	}
}

// inRange reports whether t lies within the optional inclusive bounds.
func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
