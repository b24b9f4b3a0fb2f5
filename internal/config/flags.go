package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the binaries.
const (
	FlagConfig      = "config"
	FlagDataDir     = "data-dir"
	FlagSource      = "source"
	FlagPostgresDSN = "postgres-dsn"
	FlagHTTPAddr    = "http-addr"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
)

// RegisterFlags declares the settings every binary accepts.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "path to a YAML config file (env "+EnvConfig+")")
	fs.String(FlagDataDir, "", "override default data directory (env "+EnvDataDir+")")
	fs.String(FlagSource, "", "event source: files or postgres (env "+EnvSource+")")
	fs.String(FlagPostgresDSN, "", "postgres connection string (env "+EnvPostgresDSN+")")
	fs.String(FlagLogLevel, "", "log level: debug, info, warn, error (env "+EnvLogLevel+")")
	fs.String(FlagLogFormat, "", "log format: text or json")
}

// FromFlags loads the config file named by --config, applies the
// environment and then every flag the user set, and validates.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	path, _ := fs.GetString(FlagConfig)

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFlags(fs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags copies explicitly set flags onto c. Flags not registered
// on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) {
	set := func(name string, dst *string) {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return
		}
		*dst = f.Value.String()
	}

	set(FlagDataDir, &c.DataDir)
	source := string(c.Source)
	set(FlagSource, &source)
	c.Source = Source(source)
	set(FlagPostgresDSN, &c.Postgres.DSN)
	set(FlagHTTPAddr, &c.HTTP.Addr)
	set(FlagLogLevel, &c.Log.Level)
	set(FlagLogFormat, &c.Log.Format)
}
