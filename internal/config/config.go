package config

import (
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DSNEnv overrides the configured connection string when set.
const DSNEnv = "ODBCBIND_DSN"

var (
	outputFormats = []string{"table", "xlsx"}
	logLevels     = []string{"debug", "info", "warn", "error"}
)

type Connection struct {
	DSN        string `toml:"dsn"`
	Timezone   string `toml:"timezone"`
	BufferSize int    `toml:"buffer_size"`
}

type OutputConfigs struct {
	Format string `toml:"format"`
	Sheet  string `toml:"sheet"`
}

type LoggerConfigs struct {
	ConsoleLevel string `toml:"console_level"`
	FileLevel    string `toml:"file_level"`
	FileOutput   string `toml:"file_output"`
}

type Config struct {
	Connection Connection    `toml:"connection"`
	Output     OutputConfigs `toml:"output"`
	Logging    LoggerConfigs `toml:"logger"`
}

func NewConfig() *Config {
	return &Config{
		Connection: Connection{Timezone: "UTC"},
		Output:     OutputConfigs{Format: "table", Sheet: "Results"},
		Logging:    LoggerConfigs{ConsoleLevel: "warn", FileLevel: "info"},
	}
}

// FromFile decodes a TOML file over the defaults.
func FromFile(path string) (*Config, error) {
	conf := NewConfig()

	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, errors.Wrap(err, "loading config TOML")
	}
	return conf, nil
}

// Load reads envFile (if present) into the environment, then the TOML file
// at path (if present), then applies environment overrides. Missing files
// are not an error; the defaults are used instead.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, "loading .env file")
		}
	}

	conf := NewConfig()
	if path != "" {
		loaded, err := FromFile(path)
		switch {
		case err == nil:
			conf = loaded
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	if dsn := os.Getenv(DSNEnv); dsn != "" {
		conf.Connection.DSN = dsn
	}
	conf.Connection.DSN = expandEnv(conf.Connection.DSN)

	return conf, nil
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	if c.Connection.DSN == "" {
		return errors.Errorf("no connection string: set connection.dsn, --dsn or %s", DSNEnv)
	}
	if !slices.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		return errors.Errorf("%s is not in valid output formats %v", c.Output.Format, outputFormats)
	}
	for _, level := range []string{c.Logging.ConsoleLevel, c.Logging.FileLevel} {
		if level != "" && !slices.Contains(logLevels, strings.ToLower(level)) {
			return errors.Errorf("%s is not in valid log levels %v", level, logLevels)
		}
	}
	if c.Connection.BufferSize < 0 {
		return errors.Errorf("buffer_size must not be negative, got %d", c.Connection.BufferSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Connection.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Connection.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", c.Connection.Timezone)
	}
	return loc, nil
}

// expandEnv replaces ${VAR} references, so secrets can stay in the
// environment instead of the config file.
func expandEnv(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
