package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultInitialCash is used when initial_cash is omitted.
	DefaultInitialCash = 1000.0
	// DefaultResultsFolder is used when results_folder is omitted.
	DefaultResultsFolder = "results"
)

// StrategyConfig selects one strategy family and its parameters.
type StrategyConfig struct {
	Name string `yaml:"name" json:"name" validate:"required" jsonschema:"title=Strategy,description=Registered strategy name,enum=crossover,enum=mean_reversion"`
	// Label tells apart several entries of the same family. Defaults to Name.
	Label  string         `yaml:"label,omitempty" json:"label,omitempty" jsonschema:"title=Label,description=Unique name of this entry in the results"`
	Params map[string]any `yaml:"params" json:"params" jsonschema:"title=Parameters,description=Strategy parameters such as short_window and long_window"`
}

// DisplayName returns Label, or Name when no label is set.
func (s StrategyConfig) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}

	return s.Name
}

// Config describes one comparison run: a symbol, a price file and the
// strategies to evaluate on it.
type Config struct {
	Symbol        string                     `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Symbol to load from the data file"`
	DataPath      string                     `yaml:"data_path" json:"data_path" validate:"required" jsonschema:"title=Data Path,description=Path to a csv or parquet price file"`
	StartTime     optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive start of the backtest period"`
	EndTime       optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional inclusive end of the backtest period"`
	InitialCash   float64                    `yaml:"initial_cash" json:"initial_cash" validate:"gt=0" jsonschema:"title=Initial Cash,description=Starting cash of every strategy,exclusiveMinimum=0,default=1000"`
	ResultsFolder string                     `yaml:"results_folder" json:"results_folder" jsonschema:"title=Results Folder,description=Folder the run results are written to,default=results"`
	Strategies    []StrategyConfig           `yaml:"strategies" json:"strategies" validate:"required,min=1,dive" jsonschema:"title=Strategies,minItems=1"`
}

// fileConfig mirrors Config with pointer fields so omitted values keep their defaults.
type fileConfig struct {
	Symbol        string           `yaml:"symbol"`
	DataPath      string           `yaml:"data_path"`
	StartTime     *time.Time       `yaml:"start_time,omitempty"`
	EndTime       *time.Time       `yaml:"end_time,omitempty"`
	InitialCash   *float64         `yaml:"initial_cash"`
	ResultsFolder *string          `yaml:"results_folder"`
	Strategies    []StrategyConfig `yaml:"strategies"`
}

// UnmarshalYAML implements custom unmarshaling for Config
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var config fileConfig
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.DataPath = config.DataPath
	c.Strategies = config.Strategies

	if config.StartTime != nil {
		c.StartTime = optional.Some(config.StartTime.UTC())
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(config.EndTime.UTC())
	}

	if config.InitialCash != nil {
		c.InitialCash = *config.InitialCash
	}

	if config.ResultsFolder != nil {
		c.ResultsFolder = *config.ResultsFolder
	}

	return nil
}

// MarshalYAML implements custom marshaling for Config
func (c Config) MarshalYAML() (interface{}, error) {
	config := fileConfig{
		Symbol:        c.Symbol,
		DataPath:      c.DataPath,
		InitialCash:   &c.InitialCash,
		ResultsFolder: &c.ResultsFolder,
		Strategies:    c.Strategies,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		config.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		config.EndTime = &end
	}

	return config, nil
}

// Default returns a Config holding only the default values.
func Default() Config {
	return Config{
		StartTime:     optional.None[time.Time](),
		EndTime:       optional.None[time.Time](),
		InitialCash:   DefaultInitialCash,
		ResultsFolder: DefaultResultsFolder,
	}
}

// Sample returns a complete example config comparing both strategy families.
func Sample() Config {
	config := Default()
	config.Symbol = "AAPL"
	config.DataPath = "data/aapl.csv"
	config.Strategies = []StrategyConfig{
		{Name: "crossover", Params: map[string]any{"short_window": 40, "long_window": 100}},
		{Name: "mean_reversion", Params: map[string]any{"window": 20, "num_std": 2.0}},
	}

	return config
}

// Load reads and validates the YAML config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
	})

	return v
}

// Validate checks required fields, the time range and that strategy labels are unique.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to validate config", err)
		}

		fe := fieldErrors[0]
		parameter := strings.TrimPrefix(fe.Namespace(), "Config.")

		code := errors.ErrCodeInvalidConfiguration
		if parameter == "initial_cash" {
			code = errors.ErrCodeInvalidInitialCash
		}

		return errors.NewValidationErrorf(code, parameter, fe.Value(), "failed %q check", fe.Tag())
	}

	if math.IsInf(c.InitialCash, 0) {
		return errors.NewValidationErrorf(errors.ErrCodeInvalidInitialCash, "initial_cash", c.InitialCash, "must be a finite number")
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.NewValidationErrorf(
			errors.ErrCodeInvalidConfiguration, "end_time", c.EndTime.Unwrap(),
			"must not be before start_time %s", c.StartTime.Unwrap().Format(time.RFC3339),
		)
	}

	seen := make(map[string]bool, len(c.Strategies))

	for i, strategy := range c.Strategies {
		name := strategy.DisplayName()
		if seen[name] {
			return errors.NewValidationErrorf(
				errors.ErrCodeInvalidConfiguration, fmt.Sprintf("strategies[%d].label", i), name,
				"duplicate strategy %s, set a unique label", name,
			)
		}

		seen[name] = true
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "argo-signals-config"
	schema.Description = "Configuration schema for a strategy comparison run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
