// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite database file. Empty selects the
	// in-memory store, which loses data on restart.
	DBPath string `koanf:"db_path"`

	// EventQueueSize bounds the in-memory shot event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of classification workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultLevel is the court level applied when a team does not pick
	// one: highschool, college, or nba.
	DefaultLevel string `koanf:"default_level"`

	// MaxListLimit caps the limit query parameter on list endpoints.
	MaxListLimit int `koanf:"max_list_limit"`

	// LiveSendBuffer sets the per-subscriber send buffer on the live feed.
	LiveSendBuffer int `koanf:"live_send_buffer"`

	// ChartWidth is the default rendered SVG chart width in pixels.
	ChartWidth float64 `koanf:"chart_width"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use
// (e.g., remote configuration sources) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DBPath:         "",
		EventQueueSize: 10_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     50_000,
		DefaultLevel:   "highschool",
		MaxListLimit:   500,
		LiveSendBuffer: 16,
		ChartWidth:     800,
	}
	return c
}
