// Package engine wires the sample source, ingestion pipe and domain
// state into the running detection pipeline.
//
// Concurrency model: one producer goroutine owns source I/O and only
// enqueues; one consumer goroutine owns every mutable domain component
// and processes samples strictly in FIFO order. External readers get
// copies through the snapshot methods, guarded by the engine mutex the
// consumer also holds while mutating.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tsuki/internal/adapters/mq/pipe"
	"github.com/okian/tsuki/internal/adapters/source"
	"github.com/okian/tsuki/internal/domain/detect"
	"github.com/okian/tsuki/internal/domain/history"
	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/internal/domain/peak"
	"github.com/okian/tsuki/internal/domain/scoring"
	"github.com/okian/tsuki/internal/domain/window"
	"github.com/okian/tsuki/pkg/logger"
	"github.com/okian/tsuki/pkg/metrics"
	"github.com/okian/tsuki/pkg/sched"
)

// Default engine configuration constants.
const (
	statusReady         = "ready"
	statusResetDelay    = 3 * time.Second
	stopTimeout         = 5 * time.Second
	defaultPipeCapacity = 4096
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSourceEndpoint sets the live device endpoint; empty selects the
// synthetic generator outright.
func WithSourceEndpoint(endpoint string) Option {
	return func(e *Engine) { e.endpoint = endpoint }
}

// WithScaleFactor sets the raw-magnitude multiplier.
func WithScaleFactor(f float64) Option {
	return func(e *Engine) {
		if f > 0 {
			e.scaleFactor = f
		}
	}
}

// WithThresholds sets the detector's hysteresis levels.
func WithThresholds(start, cont float64) Option {
	return func(e *Engine) {
		e.startThreshold = start
		e.continueThreshold = cont
	}
}

// WithDebounce sets the minimum gap between accepted events.
func WithDebounce(seconds float64) Option {
	return func(e *Engine) {
		if seconds >= 0 {
			e.debounce = seconds
		}
	}
}

// WithWindowSpan sets the sliding window span in seconds.
func WithWindowSpan(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.windowSpan = seconds
		}
	}
}

// WithDecayWindow sets the peak tracker's decay window in seconds.
func WithDecayWindow(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.decayWindow = seconds
		}
	}
}

// WithHistoryDepth sets the retained event count.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyDepth = n
		}
	}
}

// WithLeaderboardDepth sets the retained score count.
func WithLeaderboardDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.boardDepth = n
		}
	}
}

// WithPipeCapacity sets the ingestion pipe's buffered capacity.
func WithPipeCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pipeCapacity = n
		}
	}
}

// WithSynthetic shapes the fallback generator's pulses.
func WithSynthetic(amplitude, periodSeconds float64) Option {
	return func(e *Engine) {
		if amplitude > 0 {
			e.synthAmplitude = amplitude
		}
		if periodSeconds > 0 {
			e.synthPeriod = periodSeconds
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine owns the detection pipeline.
type Engine struct {
	mu sync.RWMutex

	// Configuration
	endpoint          string
	scaleFactor       float64
	startThreshold    float64
	continueThreshold float64
	debounce          float64
	windowSpan        float64
	decayWindow       float64
	historyDepth      int
	boardDepth        int
	pipeCapacity      int
	synthAmplitude    float64
	synthPeriod       float64

	// Components, owned by the consumer goroutine once started
	src       source.Source
	pipe      *pipe.Pipe
	window    *window.Buffer
	detector  *detect.Detector
	history   *history.History
	peaks     *peak.Tracker
	evaluator *scoring.Evaluator
	timers    *sched.Scheduler

	// Fan-out
	subscribers []Subscriber

	// State
	started   bool
	fallback  bool
	status    string
	lastTS    float64
	pulses    uint64
	lastReset uint64
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// Counters
	ingested atomic.Uint64
	accepted atomic.Uint64
	ignored  atomic.Uint64

	// Logging
	log logger.Logger
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		scaleFactor:       9.8,
		startThreshold:    100,
		continueThreshold: 50,
		debounce:          1.0,
		windowSpan:        5.0,
		decayWindow:       10.0,
		historyDepth:      3,
		boardDepth:        5,
		pipeCapacity:      defaultPipeCapacity,
		synthAmplitude:    2500,
		synthPeriod:       5.0,
		status:            statusReady,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a consumer for the engine's capability set. Must
// be called before Start.
func (e *Engine) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sub != nil && !e.started {
		e.subscribers = append(e.subscribers, sub)
	}
}

// Start builds the components and launches the producer and consumer.
// Threshold misconfiguration fails here, before any goroutine runs.
// An unreachable live endpoint is not fatal: the engine falls back to
// the synthetic generator and flags the condition.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if e.log == nil {
		e.log = logger.Get().Named("engine")
	}

	detector, err := detect.New(e.startThreshold, e.continueThreshold,
		detect.WithDebounce(e.debounce))
	if err != nil {
		return fmt.Errorf("detector configuration: %w", err)
	}
	e.detector = detector
	e.window = window.New(window.WithSpan(e.windowSpan))
	e.history = history.New(history.WithDepth(e.historyDepth))
	e.peaks = peak.New(peak.WithDecayWindow(e.decayWindow))
	e.evaluator = scoring.New(scoring.WithBoardDepth(e.boardDepth))
	e.timers = sched.New()
	e.pipe = pipe.New(pipe.WithCapacity(e.pipeCapacity))
	e.src = e.openSource(ctx)
	metrics.UpdateSourceFallback(e.fallback)

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	// Producer: the only goroutine touching source I/O. It closes the
	// pipe after Run returns, so the consumer observes end-of-stream
	// only once the source handle is already released.
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.src.Run(runCtx, e.emit); err != nil {
			e.log.Warn(runCtx, "source terminated", logger.Error(err))
		}
		_ = e.pipe.Close()
	}()

	// Consumer: single owner of all mutable domain state.
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for s := range e.pipe.Dequeue() {
			if runCtx.Err() != nil {
				// Shutdown drains without processing; queued samples
				// are discarded by design.
				continue
			}
			e.process(s)
		}
	}()

	e.started = true
	e.log.Info(ctx, "engine started",
		logger.Float64("startThreshold", e.startThreshold),
		logger.Float64("continueThreshold", e.continueThreshold),
		logger.Float64("windowSpan", e.windowSpan),
		logger.Float64("decayWindow", e.decayWindow),
		logger.Any("fallback", e.fallback),
	)
	return nil
}

// openSource opens the live endpoint or falls back to the synthetic
// generator. Must be called with e.mu held.
func (e *Engine) openSource(ctx context.Context) source.Source {
	if e.endpoint == "" {
		e.fallback = true
		return e.newSynthetic()
	}
	live, err := source.OpenLine(e.endpoint,
		source.WithScaleFactor(e.scaleFactor))
	if err != nil {
		if errors.Is(err, source.ErrUnavailable) {
			e.log.Warn(ctx, "live source unavailable, using synthetic generator",
				logger.String("endpoint", e.endpoint),
				logger.Error(err),
			)
			e.fallback = true
			return e.newSynthetic()
		}
		e.log.Error(ctx, "opening source", logger.Error(err))
		e.fallback = true
		return e.newSynthetic()
	}
	return live
}

func (e *Engine) newSynthetic() *source.Synthetic {
	return source.NewSynthetic(
		source.WithAmplitude(e.synthAmplitude),
		source.WithPeriod(e.synthPeriod),
	)
}

// emit is the producer-side bridge into the pipe.
func (e *Engine) emit(ctx context.Context, s model.Sample) bool {
	return e.pipe.Enqueue(ctx, s)
}

// process handles one sample on the consumer goroutine. Input hygiene
// runs here so every downstream component sees the same clean stream;
// the detector repeats the checks as its own defense.
func (e *Engine) process(s model.Sample) {
	if math.IsNaN(s.Magnitude) {
		metrics.RecordSampleRejected()
		return
	}
	if s.Magnitude < 0 {
		s.Magnitude = 0
	}

	var (
		finalized model.Event
		hasEvent  bool
		peakRec   model.PeakRecord
		remaining float64
		peakMoved bool
	)

	e.mu.Lock()
	e.window.Append(s)
	if s.TS > e.lastTS {
		e.lastTS = s.TS
	}
	e.ingested.Add(1)
	metrics.RecordSampleIngested()
	metrics.UpdateWindowSamples(e.window.Len())

	if ev, ok := e.detector.Observe(s); ok {
		finalized, hasEvent = ev, true
		e.finalize(ev)
	}
	if hasEvent && finalized.Accepted() {
		peakRec = e.peaks.Current(e.lastTS)
		remaining = e.peaks.Remaining(e.lastTS)
		peakMoved = true
	}
	subs := e.subscribers
	e.mu.Unlock()

	// Fan-out happens outside the lock so subscribers may read
	// snapshots; ordering still holds, only this goroutine notifies.
	for _, sub := range subs {
		sub.OnSample(s)
	}
	if hasEvent {
		for _, sub := range subs {
			sub.OnEvent(finalized)
		}
	}
	if peakMoved {
		for _, sub := range subs {
			sub.OnPeak(peakRec, remaining)
		}
	}
}

// finalize routes one finalized event. Must be called with e.mu held.
func (e *Engine) finalize(ev model.Event) {
	metrics.RecordEventFinalized(ev.Status.String(), ev.Peak, len(ev.Samples))

	if !ev.Accepted() {
		e.ignored.Add(1)
		e.log.Debug(context.Background(), "event ignored inside debounce gap",
			logger.String("eventID", ev.ID),
			logger.Float64("peak", ev.Peak),
		)
		return
	}

	e.accepted.Add(1)
	e.history.Push(ev)
	e.peaks.Observe(ev.EndTS, ev.Peak, ev.ID)
	if resets := e.peaks.Resets(); resets > e.lastReset {
		metrics.RecordPeakReset()
		e.lastReset = resets
	}
	metrics.UpdatePeakValue(e.peaks.Current(e.lastTS).Magnitude)

	result := e.evaluator.Score(ev)
	metrics.UpdateLastScore(result.Score)
	metrics.RecordLeaderboardInsert()

	e.pulses++
	e.setStatusLocked(fmt.Sprintf("pulse #%d finalized: score %d (%s)",
		e.pulses, result.Score, result.Tier))

	e.log.Info(context.Background(), "pulse accepted",
		logger.String("eventID", ev.ID),
		logger.Float64("peak", ev.Peak),
		logger.Int("score", result.Score),
		logger.String("tier", result.Tier),
	)
}

// setStatusLocked publishes a transient status line and schedules its
// reset. Must be called with e.mu held.
func (e *Engine) setStatusLocked(status string) {
	e.status = status
	e.timers.Bump()
	e.timers.After(statusResetDelay, func(gen uint64) {
		e.mu.Lock()
		defer e.mu.Unlock()
		// A reset can pass the scheduler's own check concurrently with
		// a newer status's Bump; re-checking the generation under e.mu
		// keeps the stale reset from clobbering that newer status.
		if e.timers.Generation() != gen {
			return
		}
		e.status = statusReady
	})
}

// Stop cancels the producer, waits for both goroutines and releases
// the timers. Samples still queued in the pipe are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		e.log.Warn(context.Background(), "engine stop timed out")
	}

	e.timers.Close()
	e.log.Info(context.Background(), "engine stopped",
		logger.Uint64("samples", e.ingested.Load()),
		logger.Uint64("accepted", e.accepted.Load()),
		logger.Uint64("ignored", e.ignored.Load()),
	)
}

// WindowSnapshot returns the sliding window contents, oldest first.
func (e *Engine) WindowSnapshot() []model.Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.window == nil {
		return nil
	}
	return e.window.Snapshot()
}

// HistorySnapshot returns the accepted events, newest first.
func (e *Engine) HistorySnapshot() []model.Event {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.history == nil {
		return nil
	}
	return e.history.Snapshot()
}

// NormalizedHistory returns the retained events' traces shifted to a
// common t=0 origin, newest first.
func (e *Engine) NormalizedHistory() [][]model.Sample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.history == nil {
		return nil
	}
	return e.history.Normalized()
}

// PeakSnapshot returns the decaying peak and its remaining seconds as
// of the newest processed sample.
func (e *Engine) PeakSnapshot() (model.PeakRecord, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.peaks == nil {
		return model.PeakRecord{}, 0
	}
	rec := e.peaks.Current(e.lastTS)
	return rec, e.peaks.Remaining(e.lastTS)
}

// ScoreSnapshot returns the latest evaluation and the leaderboard.
func (e *Engine) ScoreSnapshot() (scoring.Result, []model.Entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.evaluator == nil {
		return scoring.Result{}, nil
	}
	return e.evaluator.Last(), e.evaluator.Board()
}

// Status returns the transient status line.
func (e *Engine) Status() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Fallback reports whether the synthetic generator replaced the live
// source.
func (e *Engine) Fallback() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fallback
}

// Stats returns counters for monitoring.
func (e *Engine) Stats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        e.started,
		"fallback":       e.fallback,
		"samples":        e.ingested.Load(),
		"eventsAccepted": e.accepted.Load(),
		"eventsIgnored":  e.ignored.Load(),
		"status":         e.status,
	}
	if e.src != nil {
		stats["malformed"] = e.src.Malformed()
	}
	if e.pipe != nil {
		stats["pipeLength"] = e.pipe.Len()
		stats["pipeCapacity"] = e.pipe.Cap()
	}
	if e.detector != nil {
		stats["samplesRejected"] = e.detector.Rejected()
	}
	return stats
}
