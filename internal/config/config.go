// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and SHOPAPI_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file holding the product and user tables.
	DatabasePath string `koanf:"database_path"`

	// MaxOpenConns bounds the database/sql connection pool.
	MaxOpenConns int `koanf:"max_open_conns"`

	// BusyTimeoutMS is how long SQLite waits on a locked database before failing.
	BusyTimeoutMS int `koanf:"busy_timeout_ms"`

	// BcryptCost enables password hashing for users when > 0.
	BcryptCost int `koanf:"bcrypt_cost"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MetricsNamespace prefixes every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsSubsystem follows the namespace in every metric name.
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets, in milliseconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		DatabasePath:     "app.sqlite",
		MaxOpenConns:     1,
		BusyTimeoutMS:    5000,
		BcryptCost:       0,
		MaxBodyBytes:     1 << 20,
		MetricsNamespace: "shopapi",
		MetricsSubsystem: "api",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case c.MaxOpenConns < 1:
		return fmt.Errorf("%w: max_open_conns must be at least 1", ErrInvalidConfig)
	case c.BusyTimeoutMS < 0:
		return fmt.Errorf("%w: busy_timeout_ms must not be negative", ErrInvalidConfig)
	case c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost):
		return fmt.Errorf("%w: bcrypt_cost must be 0 or between %d and %d", ErrInvalidConfig, bcrypt.MinCost, bcrypt.MaxCost)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
