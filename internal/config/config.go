// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceEndpoint is the live device: a file path or host:port.
	// Empty means synthetic mode from the start.
	SourceEndpoint string `koanf:"source_endpoint"`

	// SampleRateHint is the expected samples per second. Nothing is
	// sized hard from it; it documents the rig and feeds log output.
	SampleRateHint int `koanf:"sample_rate_hint"`

	// ScaleFactor multiplies raw magnitudes (kilograms-force to
	// newtons at the stock 9.8).
	ScaleFactor float64 `koanf:"scale_factor"`

	// StartThreshold and ContinueThreshold are the detector's
	// hysteresis levels. Continue must not exceed start.
	StartThreshold    float64 `koanf:"start_threshold"`
	ContinueThreshold float64 `koanf:"continue_threshold"`

	// DebounceSeconds is the minimum gap between accepted events.
	DebounceSeconds float64 `koanf:"debounce_seconds"`

	// WindowSpanSeconds bounds the live display buffer.
	WindowSpanSeconds float64 `koanf:"window_span_seconds"`

	// DecayWindowSeconds bounds the running maximum.
	DecayWindowSeconds float64 `koanf:"decay_window_seconds"`

	// HistoryDepth bounds the recent-events list.
	HistoryDepth int `koanf:"history_depth"`

	// LeaderboardDepth bounds the score board.
	LeaderboardDepth int `koanf:"leaderboard_depth"`

	// PipeCapacity bounds the ingestion queue.
	PipeCapacity int `koanf:"pipe_capacity"`

	// SyntheticAmplitude and SyntheticPeriodSeconds shape the fallback
	// generator's pulses.
	SyntheticAmplitude     float64 `koanf:"synthetic_amplitude"`
	SyntheticPeriodSeconds float64 `koanf:"synthetic_period_seconds"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		SourceEndpoint:         "",
		SampleRateHint:         100,
		ScaleFactor:            9.8,
		StartThreshold:         100,
		ContinueThreshold:      50,
		DebounceSeconds:        1.0,
		WindowSpanSeconds:      5.0,
		DecayWindowSeconds:     10.0,
		HistoryDepth:           3,
		LeaderboardDepth:       5,
		PipeCapacity:           4096,
		SyntheticAmplitude:     2500,
		SyntheticPeriodSeconds: 5.0,
	}
	return c
}
