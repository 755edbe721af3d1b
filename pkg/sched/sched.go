// Package sched provides cancellable deferred tasks keyed by a
// generation counter. Bumping the generation cancels outstanding
// tasks, and a task that slips past the cancellation receives its
// scheduled generation so the caller can reject it under the same
// lock that guards the state it would touch. Together the two checks
// keep a late-firing status-reset callback from corrupting newer
// state.
package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler issues generation-keyed deferred tasks. Safe for
// concurrent use.
type Scheduler struct {
	gen    atomic.Uint64
	mu     sync.Mutex
	timers map[uint64][]*time.Timer
	closed bool
}

// New creates a Scheduler.
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[uint64][]*time.Timer),
	}
}

// Generation returns the current generation token.
func (s *Scheduler) Generation() uint64 {
	return s.gen.Load()
}

// After schedules fn to run once d elapses, keyed to the current
// generation. If Bump or Close happens first, fn never runs.
//
// The pre-fire staleness check here is best effort only: a task can
// pass it concurrently with a Bump. fn receives its scheduled
// generation, and callers mutating shared state must compare it
// against Generation() under the lock guarding that state before
// acting.
func (s *Scheduler) After(d time.Duration, fn func(gen uint64)) {
	gen := s.gen.Load()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	t := time.AfterFunc(d, func() {
		if s.gen.Load() != gen {
			return
		}
		fn(gen)
	})
	s.timers[gen] = append(s.timers[gen], t)
	s.mu.Unlock()
}

// Bump invalidates every outstanding task and returns the new
// generation token.
func (s *Scheduler) Bump() uint64 {
	next := s.gen.Add(1)

	s.mu.Lock()
	for gen, timers := range s.timers {
		if gen < next {
			for _, t := range timers {
				t.Stop()
			}
			delete(s.timers, gen)
		}
	}
	s.mu.Unlock()
	return next
}

// Close stops all outstanding tasks and refuses new ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen.Add(1)
	for gen, timers := range s.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(s.timers, gen)
	}
}
