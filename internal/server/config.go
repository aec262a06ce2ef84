package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/attn-labs/focusship/internal/store"
)

// Environment variable names recognized by the server. Environment values
// override config-file values.
const (
	EnvAddr            = "FOCUSSHIP_ADDR"
	EnvDriver          = "FOCUSSHIP_DB_DRIVER"
	EnvDSN             = "FOCUSSHIP_DB_DSN"
	EnvRateLimit       = "FOCUSSHIP_RATE_LIMIT"
	EnvRateLimitWindow = "FOCUSSHIP_RATE_LIMIT_WINDOW"
	EnvShutdownTimeout = "FOCUSSHIP_SHUTDOWN_TIMEOUT"
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	// Driver selects the SQL backend, "sqlite" or "postgres".
	Driver string

	// DSN is the database location: a file path for SQLite, a connection
	// string for Postgres.
	DSN string

	// RateLimit is the per-client request budget per window. Zero
	// disables rate limiting.
	RateLimit       int
	RateLimitWindow time.Duration

	// ShutdownTimeout bounds graceful shutdown on stop.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults: SQLite in the working
// directory, listening on :8080.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Driver:          store.DriverSQLite,
		DSN:             "focusship.db",
		RateLimit:       300,
		RateLimitWindow: time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}
}

// fileConfig is the TOML shape of the server config file.
type fileConfig struct {
	Addr            string `toml:"addr"`
	Driver          string `toml:"driver"`
	DSN             string `toml:"dsn"`
	RateLimit       *int   `toml:"rate_limit"`
	RateLimitWindow string `toml:"rate_limit_window"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// LoadConfig builds the effective config: defaults, then the TOML file at
// path if non-empty, then environment variables. A .env file in the working
// directory is loaded first so development setups need no exported vars.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading server config: %w", err)
		}
		var fc fileConfig
		if err := toml.Unmarshal(data, &fc); err != nil {
			return cfg, fmt.Errorf("parsing server config: %w", err)
		}
		if fc.Addr != "" {
			cfg.Addr = fc.Addr
		}
		if fc.Driver != "" {
			cfg.Driver = fc.Driver
		}
		if fc.DSN != "" {
			cfg.DSN = fc.DSN
		}
		if fc.RateLimit != nil {
			cfg.RateLimit = *fc.RateLimit
		}
		if fc.RateLimitWindow != "" {
			d, err := time.ParseDuration(fc.RateLimitWindow)
			if err != nil {
				return cfg, fmt.Errorf("parsing rate_limit_window: %w", err)
			}
			cfg.RateLimitWindow = d
		}
		if fc.ShutdownTimeout != "" {
			d, err := time.ParseDuration(fc.ShutdownTimeout)
			if err != nil {
				return cfg, fmt.Errorf("parsing shutdown_timeout: %w", err)
			}
			cfg.ShutdownTimeout = d
		}
	}

	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvDriver); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", EnvRateLimit, err)
		}
		cfg.RateLimit = n
	}
	if v := os.Getenv(EnvRateLimitWindow); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", EnvRateLimitWindow, err)
		}
		cfg.RateLimitWindow = d
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, cfg.Validate()
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.Driver != store.DriverSQLite && c.Driver != store.DriverPostgres {
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
