// Package peak tracks the running maximum magnitude with a trailing
// decay window: absent a new higher reading, the tracked peak resets to
// zero once the window elapses.
package peak

import (
	"github.com/okian/tsuki/internal/domain/model"
)

// Default tracker configuration constants.
const (
	defaultDecayWindowSeconds = 10.0
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithDecayWindow sets the decay window in seconds.
func WithDecayWindow(seconds float64) Option {
	return func(t *Tracker) {
		if seconds > 0 {
			t.decayWindow = seconds
		}
	}
}

// Tracker holds the decaying peak. Owned by the consumer goroutine.
// Within a decay window the peak is monotonic non-decreasing; it only
// drops via the window-boundary reset, never from a lower reading.
type Tracker struct {
	decayWindow float64
	record      model.PeakRecord
	resets      uint64
}

// New creates a Tracker with configuration options.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		decayWindow: defaultDecayWindowSeconds,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe offers a magnitude at ts, attributed to eventID. Decay is
// applied first, then the peak raises only if the new magnitude beats
// the current one.
func (t *Tracker) Observe(ts, magnitude float64, eventID string) {
	t.expire(ts)
	if magnitude > t.record.Magnitude {
		t.record = model.PeakRecord{
			Magnitude:  magnitude,
			ObservedAt: ts,
			EventID:    eventID,
		}
	}
}

// Current returns the tracked peak as of now, zero once the decay
// window has elapsed without a higher reading.
func (t *Tracker) Current(now float64) model.PeakRecord {
	t.expire(now)
	return t.record
}

// Remaining returns the seconds left before the current peak decays.
func (t *Tracker) Remaining(now float64) float64 {
	t.expire(now)
	if t.record.Magnitude == 0 {
		return 0
	}
	rem := t.decayWindow - (now - t.record.ObservedAt)
	if rem < 0 {
		return 0
	}
	return rem
}

// Resets returns how many times the decay boundary has zeroed the peak.
func (t *Tracker) Resets() uint64 { return t.resets }

// expire zeroes the record once it is strictly older than the window.
func (t *Tracker) expire(now float64) {
	if t.record.Magnitude == 0 {
		return
	}
	if now-t.record.ObservedAt > t.decayWindow {
		t.record = model.PeakRecord{}
		t.resets++
	}
}
