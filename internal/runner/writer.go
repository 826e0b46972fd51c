package runner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	statsFileName  = "stats.yaml"
	tradesFileName = "trades.csv"
	marksFileName  = "marks.csv"
)

// WriteResults writes every report of run below baseDir/<run id>:
// one folder per strategy holding trades.csv and marks.csv, and a shared
// stats.yaml. The file paths are recorded in each report's stats.
func WriteResults(baseDir string, run *RunResult) (string, error) {
	runDir := filepath.Join(baseDir, run.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create run directory %s", runDir)
	}

	stats := make([]types.TradeStats, len(run.Reports))

	for i := range run.Reports {
		report := &run.Reports[i]

		strategyDir := filepath.Join(runDir, folderName(report.Name))
		if err := os.MkdirAll(strategyDir, 0755); err != nil {
			return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create strategy directory %s", strategyDir)
		}

		tradesPath := filepath.Join(strategyDir, tradesFileName)
		if err := writeCSV(tradesPath, report.Result.Trades); err != nil {
			return "", err
		}

		marksPath := filepath.Join(strategyDir, marksFileName)
		if err := writeCSV(marksPath, report.Result.Marks); err != nil {
			return "", err
		}

		report.Stats.TradesFilePath = tradesPath
		report.Stats.MarksFilePath = marksPath
		stats[i] = report.Stats
	}

	if err := types.WriteTradeStats(filepath.Join(runDir, statsFileName), stats); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to write stats", err)
	}

	return runDir, nil
}

func writeCSV[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", path)
	}

	return nil
}

// folderName makes a strategy label safe to use as a directory name.
func folderName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		default:
			return r
		}
	}, name)
}
