package engine

import (
	"github.com/okian/tsuki/internal/domain/model"
)

// Subscriber is the capability set offered to event consumers. All
// callbacks run on the engine's consumer goroutine, strictly in stream
// order; implementations must not block and must not mutate their
// arguments.
type Subscriber interface {
	// OnSample fires for every ingested sample.
	OnSample(s model.Sample)

	// OnEvent fires for every finalized event, accepted or ignored;
	// check the status before acting.
	OnEvent(ev model.Event)

	// OnPeak fires when the decaying peak record changes.
	OnPeak(rec model.PeakRecord, remaining float64)
}

// SubscriberFuncs adapts plain functions to the Subscriber interface;
// nil fields are skipped.
type SubscriberFuncs struct {
	Sample func(s model.Sample)
	Event  func(ev model.Event)
	Peak   func(rec model.PeakRecord, remaining float64)
}

// OnSample implements Subscriber.
func (f SubscriberFuncs) OnSample(s model.Sample) {
	if f.Sample != nil {
		f.Sample(s)
	}
}

// OnEvent implements Subscriber.
func (f SubscriberFuncs) OnEvent(ev model.Event) {
	if f.Event != nil {
		f.Event(ev)
	}
}

// OnPeak implements Subscriber.
func (f SubscriberFuncs) OnPeak(rec model.PeakRecord, remaining float64) {
	if f.Peak != nil {
		f.Peak(rec, remaining)
	}
}
