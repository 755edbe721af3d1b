package config

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrEmptyAddr         = errors.New("addr must not be empty")
	ErrThresholdOrder    = errors.New("continue_threshold must not exceed start_threshold")
	ErrNonPositiveWindow = errors.New("window_span_seconds must be positive")
	ErrNonPositiveDecay  = errors.New("decay_window_seconds must be positive")
	ErrNegativeDebounce  = errors.New("debounce_seconds must not be negative")
)
