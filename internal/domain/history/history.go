// Package history retains a bounded, newest-first list of accepted
// pulse events for the recent-hits panel.
package history

import (
	"github.com/okian/tsuki/internal/domain/model"
)

// Default history configuration constants.
const (
	defaultDepth = 3
)

// Option applies a configuration option to the History.
type Option func(*History)

// WithDepth sets the number of retained events.
func WithDepth(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.depth = n
		}
	}
}

// History keeps the most recent accepted events, newest first. Owned
// by the consumer goroutine; readers get copies via Snapshot.
type History struct {
	depth  int
	events []model.Event
}

// New creates a History with configuration options.
func New(opts ...Option) *History {
	h := &History{
		depth: defaultDepth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push front-inserts an accepted event and evicts past the depth.
// Ignored events are refused; debounce already decided they do not
// belong here.
func (h *History) Push(ev model.Event) {
	if !ev.Accepted() {
		return
	}
	h.events = append([]model.Event{ev}, h.events...)
	if len(h.events) > h.depth {
		h.events = h.events[:h.depth]
	}
}

// Len returns the number of retained events.
func (h *History) Len() int { return len(h.events) }

// Snapshot returns newest-first copies of the retained events with
// sample slices of their own.
func (h *History) Snapshot() []model.Event {
	out := make([]model.Event, len(h.events))
	for i, ev := range h.events {
		cp := ev
		cp.Samples = make([]model.Sample, len(ev.Samples))
		copy(cp.Samples, ev.Samples)
		out[i] = cp
	}
	return out
}

// Normalized returns the retained events' samples, newest first, each
// shifted so its first sample sits at t=0. This is the shape renderers
// overlay against one another.
func (h *History) Normalized() [][]model.Sample {
	out := make([][]model.Sample, len(h.events))
	for i, ev := range h.events {
		out[i] = ev.Normalized()
	}
	return out
}
