package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBSource queries a parquet or csv file through an in-memory DuckDB
// view named market_data. The file must have time, symbol, open, high, low,
// close and volume columns.
type DuckDBSource struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-memory DuckDB database and creates the
// market_data view over path.
func NewDuckDBSource(path string, log *logger.Logger) (*DuckDBSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "data file %s not found", path)
	}

	reader, err := readFunction(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	// Set DuckDB-specific optimizations
	_, err = db.Exec(`
		SET memory_limit='2GB';
		SET threads=4;
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to set DuckDB optimizations", err)
	}

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM %s('%s');
	`, reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeUnsupportedFormat, err, "failed to create view over %s", path)
	}

	log.Debug("Initialized DuckDB price source", zap.String("path", path), zap.String("reader", reader))

	return &DuckDBSource{
		db:  db,
		log: log.Named("duckdb"),
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func readFunction(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "read_parquet", nil
	case ".csv":
		return "read_csv_auto", nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported data file %s, expected .csv or .parquet", path)
	}
}

// buildLoadQuery constructs the SQL query for Load.
func (d *DuckDBSource) buildLoadQuery(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (string, []interface{}, error) {
	conditions := squirrel.And{}

	if symbol != "" {
		conditions = append(conditions, squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"CAST(time AS TIMESTAMP)": start.Unwrap().UTC()})
	}

	if end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"CAST(time AS TIMESTAMP)": end.Unwrap().UTC()})
	}

	builder := d.sq.
		Select(
			"CAST(time AS TIMESTAMP) AS time",
			"CAST(open AS DOUBLE) AS open",
			"CAST(high AS DOUBLE) AS high",
			"CAST(low AS DOUBLE) AS low",
			"CAST(close AS DOUBLE) AS close",
			"CAST(volume AS DOUBLE) AS volume",
		).
		From("market_data")

	if len(conditions) > 0 {
		builder = builder.Where(conditions)
	}

	query, args, err := builder.OrderBy("time ASC").ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	return query, args, nil
}

// Load implements PriceSource.
func (d *DuckDBSource) Load(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.PriceSeries, error) {
	query, args, err := d.buildLoadQuery(symbol, start, end)
	if err != nil {
		return types.PriceSeries{}, err
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	bars := make([]types.PriceBar, 0, 1000)

	for rows.Next() {
		var bar types.PriceBar

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	d.log.Debug("Loaded price series", zap.String("symbol", symbol), zap.Int("bars", len(bars)))

	return types.NewPriceSeries(symbol, bars)
}

// Close implements PriceSource.
func (d *DuckDBSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}
