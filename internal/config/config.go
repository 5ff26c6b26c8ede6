// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Store driver names accepted by StoreDriver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics/health HTTP listen address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// WorkerCount bounds the number of concurrently scored clients per pass.
	WorkerCount int `koanf:"worker_count"`

	// ClientTimeoutMS bounds a single client's scoring, including its fetches.
	ClientTimeoutMS int `koanf:"client_timeout_ms"`

	// LookbackDays sets the scoring window for all five signals.
	LookbackDays int `koanf:"lookback_days"`

	// BatchCron schedules batch passes with a cron expression. Empty disables
	// cron scheduling in favor of BatchIntervalSeconds.
	BatchCron string `koanf:"batch_cron"`

	// BatchIntervalSeconds runs a batch pass on a fixed interval when no cron
	// expression is configured. Zero disables periodic passes entirely.
	BatchIntervalSeconds int `koanf:"batch_interval_seconds"`

	// StoreDriver selects the record store backend: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `koanf:"postgres_dsn"`

	// TopN caps the length of the report's top/bottom rankings.
	TopN int `koanf:"top_n"`
}

// New creates a Config with engine defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		MetricsAddr:          ":9090",
		WorkerCount:          runtime.NumCPU() * 2,
		ClientTimeoutMS:      10_000,
		LookbackDays:         30,
		BatchCron:            "",
		BatchIntervalSeconds: 300,
		StoreDriver:          DriverMemory,
		PostgresDSN:          "",
		TopN:                 10,
	}
}
