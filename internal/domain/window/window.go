// Package window keeps the time-bounded sample buffer used for the
// live trace.
package window

import (
	"github.com/okian/tsuki/internal/domain/model"
)

// Default window configuration constants.
const (
	defaultSpanSeconds = 5.0
)

// Option applies a configuration option to the Buffer.
type Option func(*Buffer)

// WithSpan sets the retained time span in seconds.
func WithSpan(seconds float64) Option {
	return func(b *Buffer) {
		if seconds > 0 {
			b.span = seconds
		}
	}
}

// Buffer holds the most recent samples bounded by a time span rather
// than a count. It is owned by a single goroutine; readers get copies
// via Snapshot.
type Buffer struct {
	span    float64
	samples []model.Sample
	newest  float64
}

// New creates a Buffer with configuration options.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		span: defaultSpanSeconds,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append inserts a sample and evicts everything older than the span
// relative to the newest sample. A timestamp behind the newest seen is
// clamped up to it; the device clock is monotonic, so regressions mean
// a garbled line rather than real time travel.
func (b *Buffer) Append(s model.Sample) {
	if len(b.samples) > 0 && s.TS < b.newest {
		s.TS = b.newest
	}
	b.newest = s.TS
	b.samples = append(b.samples, s)

	cutoff := b.newest - b.span
	drop := 0
	for drop < len(b.samples) && b.samples[drop].TS < cutoff {
		drop++
	}
	if drop > 0 {
		b.samples = append(b.samples[:0], b.samples[drop:]...)
	}
}

// Len returns the current number of retained samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Span returns the configured time span in seconds.
func (b *Buffer) Span() float64 { return b.span }

// Snapshot returns a copy of the retained samples, oldest first.
func (b *Buffer) Snapshot() []model.Sample {
	out := make([]model.Sample, len(b.samples))
	copy(out, b.samples)
	return out
}
