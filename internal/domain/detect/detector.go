// Package detect turns the raw sample stream into discrete pulse events
// via a two-level hysteresis state machine.
//
// The detector is IDLE until magnitude rises above the start threshold,
// collects samples while magnitude stays above the continue threshold,
// and finalizes the pulse when magnitude falls back to or below it.
// Setting both thresholds to zero degenerates to a plain zero-crossing
// detector.
package detect

import (
	"math"

	"github.com/okian/tsuki/internal/domain/model"
)

// Default detector configuration constants.
const (
	defaultStartThreshold    = 100.0
	defaultContinueThreshold = 50.0
	defaultDebounceSeconds   = 1.0
)

// state of the edge detector.
type state int

const (
	idle state = iota
	active
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithDebounce sets the minimum gap in seconds between accepted events,
// measured from the last accepted event's finalize timestamp.
func WithDebounce(seconds float64) Option {
	return func(d *Detector) {
		if seconds >= 0 {
			d.debounce = seconds
		}
	}
}

// Detector is the hysteresis edge detector. It exclusively owns the
// in-progress candidate; finalized events are handed to the caller.
// Not safe for concurrent use; a single consumer goroutine feeds it.
type Detector struct {
	startThreshold    float64
	continueThreshold float64
	debounce          float64

	state     state
	candidate []model.Sample
	last      model.Sample
	seeded    bool

	lastAcceptedTS float64
	hasAccepted    bool

	rejected uint64
}

// New creates a Detector. It fails fast when continueThreshold exceeds
// startThreshold; silently coercing the pair would mask a
// misconfigured rig.
func New(startThreshold, continueThreshold float64, opts ...Option) (*Detector, error) {
	if continueThreshold > startThreshold {
		return nil, ErrThresholdOrder
	}
	d := &Detector{
		startThreshold:    startThreshold,
		continueThreshold: continueThreshold,
		debounce:          defaultDebounceSeconds,
		state:             idle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NewDefault creates a Detector with the stock impact thresholds.
func NewDefault(opts ...Option) *Detector {
	d, _ := New(defaultStartThreshold, defaultContinueThreshold, opts...)
	return d
}

// Observe feeds one sample through the state machine. When the sample
// completes a pulse it returns the finalized event and true. The event
// status reflects debounce: an event finalized within the gap after the
// last accepted one comes back StatusIgnored.
//
// Arbitrary input never panics: NaN magnitudes are dropped and counted,
// negative magnitudes clamp to zero.
func (d *Detector) Observe(s model.Sample) (model.Event, bool) {
	if math.IsNaN(s.Magnitude) {
		d.rejected++
		return model.Event{}, false
	}
	if s.Magnitude < 0 {
		s.Magnitude = 0
	}

	// A stream whose very first sample is already above the start
	// threshold would otherwise never see a rising edge; seed ACTIVE
	// mid-pulse instead of losing the hit.
	if !d.seeded {
		d.seeded = true
		d.last = s
		if s.Magnitude > d.startThreshold {
			d.state = active
			d.candidate = []model.Sample{s}
		}
		return model.Event{}, false
	}

	prev := d.last
	d.last = s

	switch d.state {
	case idle:
		if prev.Magnitude <= d.startThreshold && s.Magnitude > d.startThreshold {
			d.state = active
			// The pulse's leading edge is the last below-threshold
			// sample; keeping it preserves the rise from baseline.
			d.candidate = []model.Sample{prev, s}
		}
	case active:
		d.candidate = append(d.candidate, s)
		if s.Magnitude <= d.continueThreshold {
			return d.finalize(s.TS), true
		}
	}
	return model.Event{}, false
}

// finalize closes the candidate and applies the debounce gap.
func (d *Detector) finalize(endTS float64) model.Event {
	d.state = idle
	samples := d.candidate
	d.candidate = nil

	status := model.StatusAccepted
	if d.hasAccepted && endTS-d.lastAcceptedTS < d.debounce {
		status = model.StatusIgnored
	} else {
		d.hasAccepted = true
		d.lastAcceptedTS = endTS
	}
	return model.NewEvent(samples, status)
}

// Active reports whether a candidate pulse is in progress.
func (d *Detector) Active() bool { return d.state == active }

// Rejected returns the count of samples dropped for NaN magnitudes.
func (d *Detector) Rejected() uint64 { return d.rejected }

// DebounceRemaining returns the seconds left in the debounce gap as of
// now, zero once the next finalized event would be accepted.
func (d *Detector) DebounceRemaining(now float64) float64 {
	if !d.hasAccepted {
		return 0
	}
	rem := d.debounce - (now - d.lastAcceptedTS)
	if rem < 0 {
		return 0
	}
	return rem
}
