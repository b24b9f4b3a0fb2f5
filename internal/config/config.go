// Package config loads settings for the analyzer CLI and the HTTP
// service. Values are layered: defaults, then an optional YAML file,
// then environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Source string

const (
	// SourceFiles reads event files from DataDir.
	SourceFiles Source = "files"
	// SourcePostgres reads the raw event archive table.
	SourcePostgres Source = "postgres"
)

// Environment variable names.
const (
	EnvConfig      = "TELEMETRY_CONFIG"
	EnvDataDir     = "TELEMETRY_DATA_DIR"
	EnvSource      = "TELEMETRY_SOURCE"
	EnvPostgresDSN = "POSTGRES_DSN"
	EnvHTTPAddr    = "HTTP_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvWorkers     = "LOADER_WORKERS"
)

type Config struct {
	// DataDir is the root of the event file tree.
	DataDir string `yaml:"data_dir"`

	// Source selects where events are loaded from.
	Source Source `yaml:"source"`

	Loader   LoaderConfig   `yaml:"loader"`
	Postgres PostgresConfig `yaml:"postgres"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

type LoaderConfig struct {
	// Workers bounds how many files are decoded at once.
	Workers int `yaml:"workers"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func Default() *Config {
	root := "."
	if wd, err := os.Getwd(); err == nil {
		root = FindProjectRoot(wd)
	}

	return &Config{
		DataDir: filepath.Join(root, ".telemetry-data", "events"),
		Source:  SourceFiles,
		Loader: LoaderConfig{
			Workers: 4,
		},
		Postgres: PostgresConfig{
			Table:           "telemetry_events",
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// maxRootDepth bounds the upward search for the project root.
const maxRootDepth = 10

// FindProjectRoot walks up from start looking for a directory holding
// .git or a Makefile. It returns start when none is found.
func FindProjectRoot(start string) string {
	path := start
	for i := 0; i < maxRootDepth; i++ {
		for _, marker := range []string{".git", "Makefile"} {
			if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
				return path
			}
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}
	return start
}

// Load builds a config from defaults, the YAML file at path (or
// $TELEMETRY_CONFIG when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvironment(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironment(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source = Source(v)
	}
	if v, ok := lookup(EnvPostgresDSN); ok && v != "" {
		c.Postgres.DSN = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.HTTP.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "loader.workers", Message: EnvWorkers + " must be an integer"}
		}
		c.Loader.Workers = n
	}
	return nil
}

// Validate checks the settings the selected source and outputs need.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source {
	case SourceFiles:
		if c.DataDir == "" {
			errs = append(errs, &ConfigError{Field: "data_dir", Message: "required for the files source"})
		}
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, &ConfigError{Field: "postgres.dsn", Message: "required for the postgres source"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "source", Message: fmt.Sprintf("unknown source %q (want files or postgres)", c.Source)})
	}

	if c.Loader.Workers < 1 {
		errs = append(errs, &ConfigError{Field: "loader.workers", Message: "must be at least 1"})
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ConfigError{Field: "log.level", Message: err.Error()})
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, &ConfigError{Field: "log.format", Message: fmt.Sprintf("unknown format %q (want text or json)", c.Log.Format)})
	}

	return errors.Join(errs...)
}
