package source

import (
	"context"
	"math"
	"time"

	"github.com/okian/tsuki/internal/domain/model"
)

// Synthetic generator defaults, matching the stock rig's fallback
// waveform: a half-sine pulse at the start of every period.
const (
	defaultAmplitude      = 2500.0
	defaultPeriodSeconds  = 5.0
	defaultSampleInterval = 10 * time.Millisecond
	defaultPulseFraction  = 0.02 // pulse occupies 2% of the period
)

// SyntheticOption applies a configuration option to the Synthetic
// source.
type SyntheticOption func(*Synthetic)

// WithAmplitude sets the pulse's peak magnitude (pre-scale).
func WithAmplitude(a float64) SyntheticOption {
	return func(s *Synthetic) {
		if a > 0 {
			s.amplitude = a
		}
	}
}

// WithPeriod sets the seconds between pulses.
func WithPeriod(seconds float64) SyntheticOption {
	return func(s *Synthetic) {
		if seconds > 0 {
			s.period = seconds
		}
	}
}

// WithSampleInterval sets the spacing between generated samples.
func WithSampleInterval(d time.Duration) SyntheticOption {
	return func(s *Synthetic) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Synthetic is a deterministic sample generator. Timestamps derive
// from the sample index, so two generators with identical parameters
// produce identical streams.
type Synthetic struct {
	amplitude float64
	period    float64
	interval  time.Duration
}

// NewSynthetic creates a Synthetic source with configuration options.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		amplitude: defaultAmplitude,
		period:    defaultPeriodSeconds,
		interval:  defaultSampleInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MagnitudeAt returns the waveform value at time t: a half-sine pulse
// during the leading fraction of each period, zero floor elsewhere.
func (s *Synthetic) MagnitudeAt(t float64) float64 {
	pulseLen := s.period * defaultPulseFraction
	phase := math.Mod(t, s.period)
	if phase >= pulseLen {
		return 0
	}
	v := s.amplitude * math.Sin(math.Pi*phase/pulseLen)
	if v < 0 {
		return 0
	}
	return v
}

// Run emits samples on the configured interval until ctx is cancelled
// or the emitter refuses.
func (s *Synthetic) Run(ctx context.Context, emit Emit) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	step := s.interval.Seconds()
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t := float64(i) * step
			sample := model.Sample{TS: t, Magnitude: s.MagnitudeAt(t)}
			if !emit(ctx, sample) {
				return nil
			}
		}
	}
}

// Malformed always returns zero; the generator cannot produce garbage.
func (s *Synthetic) Malformed() uint64 { return 0 }
