package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if TSUKI_CONFIG is set
//  3. env (prefix TSUKI_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TSUKI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: TSUKI_ADDR, TSUKI_START_THRESHOLD, ...
	// Map env keys like TSUKI_START_THRESHOLD -> start_threshold (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TSUKI_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tsuki_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine must not start with.
// Threshold misconfiguration in particular fails fast rather than
// being silently coerced.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return ErrEmptyAddr
	}
	if c.ContinueThreshold > c.StartThreshold {
		return ErrThresholdOrder
	}
	if c.WindowSpanSeconds <= 0 {
		return ErrNonPositiveWindow
	}
	if c.DecayWindowSeconds <= 0 {
		return ErrNonPositiveDecay
	}
	if c.DebounceSeconds < 0 {
		return ErrNegativeDebounce
	}
	return nil
}
