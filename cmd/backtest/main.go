package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-signals/internal/config"
	"github.com/rxtech-lab/argo-signals/internal/datasource"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/runner"
	"github.com/rxtech-lab/argo-signals/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName       = "argo-signals-config.json"
	sampleConfigFileName = "argo-signals-config.yaml"
)

// runAction loads the config, evaluates every strategy and prints a summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.String("config") == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.IsSet("data") {
		cfg.DataPath = cmd.String("data")
	}

	if cmd.IsSet("results") {
		cfg.ResultsFolder = cmd.String("results")
	}

	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	source, err := datasource.Open(cfg.DataPath, log)
	if err != nil {
		return err
	}
	defer source.Close()

	var bar *progressbar.ProgressBar

	onRunStart := runner.OnRunStartCallback(func(runID string, symbol string, totalBars int, totalStrategies int) error {
		bar = progressbar.NewOptions(totalStrategies,
			progressbar.OptionSetDescription(fmt.Sprintf("Evaluating %s (%d bars)", symbol, totalBars)),
			progressbar.OptionShowCount(),
		)

		return nil
	})
	onStrategyEnd := runner.OnStrategyEndCallback(func(_ int, _ runner.Report) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	onRunEnd := runner.OnRunEndCallback(func(error) {
		if bar != nil {
			_ = bar.Finish()
			fmt.Println()
		}
	})

	r := runner.NewRunner(source, strategy.NewDefaultRegistry(), log,
		runner.WithConcurrency(int(cmd.Int("concurrency"))),
		runner.WithCallbacks(runner.LifecycleCallbacks{
			OnRunStart:    &onRunStart,
			OnStrategyEnd: &onStrategyEnd,
			OnRunEnd:      &onRunEnd,
		}),
	)

	result, err := r.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println(renderSummary(result))

	if result.ResultFolder != "" {
		fmt.Printf("Results written to %s\n", result.ResultFolder)
	}

	return nil
}

// schemaAction writes the config JSON schema and, when missing, a sample config.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("out")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	cfg := config.Default()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	sampleConfigPath := filepath.Join(dir, sampleConfigFileName)
	if _, err := os.Stat(sampleConfigPath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(config.Sample())
		if err != nil {
			return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), yamlBytes...)
		if err := os.WriteFile(sampleConfigPath, yamlBytes, 0644); err != nil {
			return fmt.Errorf("failed to write sample config to file: %w", err)
		}

		fmt.Printf("Sample config successfully generated at %s\n", sampleConfigPath)
	}

	fmt.Printf("Schema successfully generated at %s\n", schemaPath)

	return nil
}

// strategiesAction lists the registered strategies and their parameters.
func strategiesAction(_ context.Context, _ *cli.Command) error {
	registry := strategy.NewDefaultRegistry()

	for _, name := range registry.ListStrategies() {
		schema, err := registry.ParameterSchema(name)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n  %s\n", name, schema)
	}

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage: "Compare signal strategies on historical prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the run config `FILE`",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Override data_path with a csv or parquet `FILE`",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Override results_folder",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of strategies evaluated at once (0 uses every CPU)",
				Value: 0,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Generate the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory",
						Value: "./config",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "strategies",
				Usage:  "List available strategies and their parameters",
				Action: strategiesAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
