/*
Package config loads server and CLI settings.

PRECEDENCE (last wins):
  1. Default()
  2. YAML file passed to Load (unknown keys are rejected)
  3. COMPCALC_* environment variables
  4. command-line flags, applied by cmd/compcalc

EXAMPLE FILE:
  server:
    port: 8080
    allowed_origins: ["http://localhost:5173"]
    read_timeout: 15s
    write_timeout: 15s
  store:
    driver: sqlite          # memory | sqlite | postgres
    dsn: ./compcalc.db
  log:
    level: info             # debug | info | warn | error
    format: console         # console | json
  batch:
    workers: 4
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Batch  BatchConfig  `yaml:"batch"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type BatchConfig struct {
	// Workers is the goroutine count for roster calculation.
	Workers int `yaml:"workers"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "./compcalc.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogConsole,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from COMPCALC_* variables that are set.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnvInt("COMPCALC_PORT", c.Server.Port)
	if origins, ok := os.LookupEnv("COMPCALC_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(origins)
	}
	c.Store.Driver = getEnv("COMPCALC_DB_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("COMPCALC_DB_DSN", c.Store.DSN)
	c.Log.Level = getEnv("COMPCALC_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("COMPCALC_LOG_FORMAT", c.Log.Format)
	c.Batch.Workers = getEnvInt("COMPCALC_BATCH_WORKERS", c.Batch.Workers)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("%w: %s driver needs a dsn", ErrInvalidConfig, c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		errs = append(errs, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level))
	}
	if c.Log.Format != LogConsole && c.Log.Format != LogJSON {
		errs = append(errs, fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: batch workers must be at least 1", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// =============================================================================
// ENV HELPERS
// =============================================================================

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
