// Package model contains domain values passed between layers.
package model

import "github.com/google/uuid"

// Sample is a single timestamped force reading. Timestamps are seconds,
// monotonic within a session; magnitude is newtons after scaling.
type Sample struct {
	TS        float64
	Magnitude float64
}

// EventStatus tells downstream consumers whether a finalized event
// cleared the debounce gap.
type EventStatus int

const (
	// StatusAccepted marks an event that cleared debounce and feeds
	// history, peak tracking and scoring.
	StatusAccepted EventStatus = iota
	// StatusIgnored marks an event finalized inside the debounce gap.
	// It is reported but excluded from downstream state.
	StatusIgnored
)

// String returns a human-readable status label.
func (s EventStatus) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Event is a contiguous pulse of samples above the detector thresholds,
// bounded by the threshold-crossing transitions.
type Event struct {
	ID      string
	StartTS float64
	EndTS   float64
	Samples []Sample
	Peak    float64
	Status  EventStatus
}

// NewEvent builds an event from an ordered, non-empty sample run and
// computes its peak magnitude.
func NewEvent(samples []Sample, status EventStatus) Event {
	ev := Event{
		ID:      uuid.NewString(),
		Samples: samples,
		Status:  status,
	}
	if len(samples) > 0 {
		ev.StartTS = samples[0].TS
		ev.EndTS = samples[len(samples)-1].TS
		for _, s := range samples {
			if s.Magnitude > ev.Peak {
				ev.Peak = s.Magnitude
			}
		}
	}
	return ev
}

// Normalized returns a copy of the event's samples with timestamps
// shifted so the first sample sits at t=0. Renderers overlay past
// pulses on a common origin.
func (e Event) Normalized() []Sample {
	out := make([]Sample, len(e.Samples))
	base := e.StartTS
	for i, s := range e.Samples {
		out[i] = Sample{TS: s.TS - base, Magnitude: s.Magnitude}
	}
	return out
}

// Accepted reports whether the event feeds downstream consumers.
func (e Event) Accepted() bool { return e.Status == StatusAccepted }

// PeakRecord is the current decaying running maximum.
type PeakRecord struct {
	Magnitude  float64
	ObservedAt float64
	EventID    string
}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int
	Score int
	Tier  string
}
