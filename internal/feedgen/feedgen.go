// Package feedgen serves a synthetic device feed over TCP using the
// line protocol the engine ingests. It stands in for the real sensor
// rig during development and load checks.
package feedgen

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/okian/tsuki/internal/adapters/source"
	"github.com/okian/tsuki/pkg/logger"
)

// Stream defaults. The waveform mirrors the engine's own fallback
// generator so a feedgen-driven rig behaves like synthetic mode.
const (
	defaultAmplitude     = 2500.0
	defaultPeriodSeconds = 5.0
	defaultInterval      = 10 * time.Millisecond
	writeTimeout         = 5 * time.Second
)

// Option applies a configuration option to the Streamer.
type Option func(*Streamer)

// WithAmplitude sets the pulse's raw peak magnitude.
func WithAmplitude(a float64) Option {
	return func(s *Streamer) {
		if a > 0 {
			s.amplitude = a
		}
	}
}

// WithPeriod sets the seconds between pulses.
func WithPeriod(seconds float64) Option {
	return func(s *Streamer) {
		if seconds > 0 {
			s.period = seconds
		}
	}
}

// WithInterval sets the spacing between emitted lines.
func WithInterval(d time.Duration) Option {
	return func(s *Streamer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets a custom logger for the streamer.
func WithLogger(l logger.Logger) Option {
	return func(s *Streamer) {
		if l != nil {
			s.log = l
		}
	}
}

// Streamer accepts TCP connections and writes the line protocol to
// each: one "<timestamp_ms>,<raw_magnitude>" record per sample tick.
// Every connection gets its own clock starting at zero.
type Streamer struct {
	amplitude float64
	period    float64
	interval  time.Duration
	log       logger.Logger
	wg        sync.WaitGroup
}

// New creates a Streamer with configuration options.
func New(opts ...Option) *Streamer {
	s := &Streamer{
		amplitude: defaultAmplitude,
		period:    defaultPeriodSeconds,
		interval:  defaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections until ctx is cancelled or the listener
// fails. It closes the listener on cancellation and waits for the
// per-connection writers to drain before returning.
func (s *Streamer) Serve(ctx context.Context, ln net.Listener) error {
	if s.log == nil {
		s.log = logger.Get().Named("feedgen")
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting feed connection: %w", err)
		}
		s.log.Info(ctx, "feed client connected",
			logger.String("remote", conn.RemoteAddr().String()))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.stream(ctx, conn)
		}()
	}
}

// stream writes the waveform to one connection until the client hangs
// up or ctx is cancelled.
func (s *Streamer) stream(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	gen := source.NewSynthetic(
		source.WithAmplitude(s.amplitude),
		source.WithPeriod(s.period),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	step := s.interval.Seconds()
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := float64(i) * step
			line := fmt.Sprintf("%d,%.3f\n", int64(t*1000), gen.MagnitudeAt(t))
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := conn.Write([]byte(line)); err != nil {
				s.log.Info(ctx, "feed client disconnected",
					logger.String("remote", conn.RemoteAddr().String()),
					logger.Error(err))
				return
			}
		}
	}
}
