// Package pipe is the bounded queue between the sample producer and
// the processing consumer.
//
// Enqueue BLOCKS when the pipe is full: live sensor samples are never
// silently dropped, and expected rates stay well under what a buffered
// channel absorbs. Shutdown is cooperative; samples still queued when
// the pipe closes are discarded by the draining consumer.
package pipe

import (
	"context"
	"sync"

	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/pkg/metrics"
)

// Default pipe configuration constants.
const (
	defaultCapacity = 4096
)

// Option applies a configuration option to the Pipe.
type Option func(*Pipe)

// WithCapacity sets the buffered capacity.
func WithCapacity(n int) Option {
	return func(p *Pipe) {
		if n > 0 {
			p.capacity = n
		}
	}
}

// Pipe connects one producer to one consumer over a buffered channel.
type Pipe struct {
	samples  chan model.Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// New creates a Pipe with configuration options.
func New(opts ...Option) *Pipe {
	p := &Pipe{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.samples = make(chan model.Sample, p.capacity)

	metrics.UpdatePipeCapacity(p.capacity)
	metrics.UpdatePipeSize(0)
	return p
}

// Enqueue adds a sample, blocking while the pipe is full. It returns
// false when the pipe is closed or ctx is cancelled before the sample
// fits.
func (p *Pipe) Enqueue(ctx context.Context, s model.Sample) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		metrics.RecordPipeEnqueueError("closed")
		return false
	}

	select {
	case p.samples <- s:
		metrics.RecordPipeEnqueue()
		metrics.UpdatePipeSize(len(p.samples))
		return true
	case <-ctx.Done():
		metrics.RecordPipeEnqueueError("context_cancelled")
		return false
	}
}

// Dequeue returns the receive side. The channel closes when the pipe
// closes; the consumer observes end-of-stream after the producer has
// already released the source.
func (p *Pipe) Dequeue() <-chan model.Sample {
	return p.samples
}

// Len returns the number of queued samples.
func (p *Pipe) Len() int {
	n := len(p.samples)
	metrics.UpdatePipeSize(n)
	return n
}

// Cap returns the configured capacity.
func (p *Pipe) Cap() int { return p.capacity }

// Close shuts the pipe down. Idempotent. The producer must have
// stopped enqueueing first; the engine stops the source before closing.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	close(p.samples)
	p.closed = true
	return nil
}

// IsClosed reports whether the pipe has been closed.
func (p *Pipe) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
