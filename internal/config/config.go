package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "PIPELINE"

// ConfigFileEnv names the environment variable pointing at an optional YAML config file
const ConfigFileEnv = "PIPELINE_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"10m"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*" validate:"min=1"`
}

// PathsConfig contains the fixed input and output destinations
type PathsConfig struct {
	RawFile      string `yaml:"raw_file" envconfig:"RAW_FILE" default:"data/train.csv" validate:"required"`
	CleanFile    string `yaml:"clean_file" envconfig:"CLEAN_FILE" default:"clean_data.csv" validate:"required,nefield=ExcludedFile"`
	ExcludedFile string `yaml:"excluded_file" envconfig:"EXCLUDED_FILE" default:"excluded_data_log.csv" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports" validate:"required"`
}

// DatabaseConfig describes the trips/runs database. The handle built from it is passed
// explicitly to the store; nothing holds it globally.
type DatabaseConfig struct {
	Driver      string `yaml:"driver" envconfig:"DRIVER" default:"sqlite3" validate:"oneof=sqlite3 postgres"`
	DSN         string `yaml:"dsn" envconfig:"DSN" default:"pipeline.db" validate:"required"`
	ChunkSize   int    `yaml:"chunk_size" envconfig:"CHUNK_SIZE" default:"5000" validate:"min=1"`
	TripsLimit  int    `yaml:"trips_limit" envconfig:"TRIPS_LIMIT" default:"100000" validate:"min=1"`
	MaxAttempts int    `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" default:"3" validate:"min=1,max=10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Debug bool `yaml:"debug" envconfig:"DEBUG" default:"false"`
}

// ReportConfig configures the fastest-zones report
type ReportConfig struct {
	TopN int `yaml:"top_n" envconfig:"TOP_N" default:"5" validate:"min=1,max=1000"`
}

// Load loads configuration from environment variables, then overlays the YAML file named
// by PIPELINE_CONFIG_FILE if set, then validates the result.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := os.Getenv(ConfigFileEnv); configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
