package config

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Extract ExtractConfig
	DuckDB  DuckDBConfig
	Output  OutputConfig
	Report  ReportConfig
	Env     string
}

type ExtractConfig struct {
	Sources         []SourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	Backoff         BackoffConfig
	Delimiter       string   `mapstructure:"delimiter" validate:"required,len=1"`
	ETLMinColumns   int      `mapstructure:"etl_min_columns" validate:"min=1"`
	ELTMinColumns   int      `mapstructure:"elt_min_columns" validate:"min=1"`
	RequiredColumns []string `mapstructure:"required_columns"`
}

// SourceConfig is one yearly ITBI extract published by the city.
type SourceConfig struct {
	Year string `mapstructure:"year" validate:"required,numeric,len=4"`
	URL  string `mapstructure:"url" validate:"required,url"`
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max" validate:"min=0"`
}

type DuckDBConfig struct {
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

type OutputConfig struct {
	DatasetsDir string `mapstructure:"datasets_dir"`
	QualityDir  string `mapstructure:"quality_dir"`
	Filename    string `mapstructure:"filename"`
	Excel       bool   `mapstructure:"excel"`
}

type ReportConfig struct {
	PipelineType string `mapstructure:"pipeline_type" validate:"omitempty,oneof=ETL ELT"`
	TopN         int    `mapstructure:"top_n" validate:"min=0"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	viper.SetConfigType("yaml")

	// Read the base configuration
	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.Env = env
	config.applyDefaults()

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Extract.Delimiter == "" {
		c.Extract.Delimiter = ";"
	}
	if c.Extract.ETLMinColumns == 0 {
		c.Extract.ETLMinColumns = 20
	}
	if c.Extract.ELTMinColumns == 0 {
		c.Extract.ELTMinColumns = 10
	}
	if c.Output.DatasetsDir == "" {
		c.Output.DatasetsDir = "results/datasets"
	}
	if c.Output.QualityDir == "" {
		c.Output.QualityDir = "results/quality"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "itbi_consolidado_recife"
	}
	if c.Report.PipelineType == "" {
		c.Report.PipelineType = "ELT"
	}
	if c.Report.TopN == 0 {
		c.Report.TopN = 20
	}
}
