// Package metrics provides Prometheus metrics for the tsuki impulse
// detection engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion metrics - samples entering the engine
	samplesIngested  prometheus.Counter
	samplesMalformed prometheus.Counter
	samplesRejected  prometheus.Counter
	sourceFallback   prometheus.Gauge

	// Pipe metrics - producer/consumer queue health
	pipeCapacity      prometheus.Gauge
	pipeSize          prometheus.Gauge
	pipeUtilization   prometheus.Gauge
	pipeEnqueueRate   prometheus.Counter
	pipeEnqueueErrors *prometheus.CounterVec

	// Detection metrics - the heart of the engine
	eventsFinalized  *prometheus.CounterVec
	eventPeak        prometheus.Histogram
	eventSampleCount prometheus.Histogram

	// Window metrics
	windowSamples prometheus.Gauge

	// Peak tracker metrics
	peakValue  prometheus.Gauge
	peakResets prometheus.Counter

	// Scoring metrics
	lastScore         prometheus.Gauge
	leaderboardInsert prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tsuki",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.samplesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_ingested_total",
		Help:      "Total number of samples consumed from the pipe",
	})

	m.samplesMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_malformed_total",
		Help:      "Total number of unparseable records dropped by the source",
	})

	m.samplesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_rejected_total",
		Help:      "Total number of samples rejected by input hygiene (NaN magnitudes)",
	})

	m.sourceFallback = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_fallback",
		Help:      "1 when the engine is running on the synthetic generator instead of the live device",
	})

	m.pipeCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipe_capacity",
		Help:      "Configured capacity of the ingestion pipe",
	})

	m.pipeSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipe_size",
		Help:      "Current number of queued samples in the ingestion pipe",
	})

	m.pipeUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipe_utilization",
		Help:      "Pipe fill ratio between 0 and 1",
	})

	m.pipeEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipe_enqueue_total",
		Help:      "Total number of samples enqueued into the pipe",
	})

	m.pipeEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pipe_enqueue_errors_total",
		Help:      "Total number of failed enqueues by reason",
	}, []string{"reason"})

	m.eventsFinalized = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_finalized_total",
		Help:      "Total number of finalized pulse events by status",
	}, []string{"status"})

	m.eventPeak = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_peak_newtons",
		Help:      "Histogram of peak magnitudes of accepted events",
		Buckets:   []float64{100, 250, 500, 1000, 2000, 3000, 5000},
	})

	m.eventSampleCount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_samples",
		Help:      "Histogram of samples per finalized event",
		Buckets:   []float64{2, 5, 10, 25, 50, 100, 250},
	})

	m.windowSamples = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_samples",
		Help:      "Current number of samples retained in the sliding window",
	})

	m.peakValue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "peak_newtons",
		Help:      "Current decaying peak magnitude",
	})

	m.peakResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "peak_resets_total",
		Help:      "Total number of decay-window peak resets",
	})

	m.lastScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_score",
		Help:      "Score of the most recent accepted event",
	})

	m.leaderboardInsert = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_inserts_total",
		Help:      "Total number of scores inserted into the leaderboard",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Ingestion metrics functions.

// RecordSampleIngested increments the ingested sample counter.
func RecordSampleIngested() {
	globalManager.samplesIngested.Inc()
}

// RecordSampleMalformed increments the malformed record counter.
func RecordSampleMalformed() {
	globalManager.samplesMalformed.Inc()
}

// RecordSampleRejected increments the hygiene rejection counter.
func RecordSampleRejected() {
	globalManager.samplesRejected.Inc()
}

// UpdateSourceFallback flags whether the synthetic generator is active.
func UpdateSourceFallback(active bool) {
	if active {
		globalManager.sourceFallback.Set(1)
	} else {
		globalManager.sourceFallback.Set(0)
	}
}

// Pipe metrics functions.

// UpdatePipeCapacity sets the configured pipe capacity.
func UpdatePipeCapacity(capacity int) {
	globalManager.pipeCapacity.Set(float64(capacity))
}

// UpdatePipeSize sets the current pipe size and derives utilization.
func UpdatePipeSize(size int) {
	globalManager.pipeSize.Set(float64(size))
}

// UpdatePipeUtilization sets the pipe fill ratio.
func UpdatePipeUtilization(ratio float64) {
	globalManager.pipeUtilization.Set(ratio)
}

// RecordPipeEnqueue increments the enqueue counter.
func RecordPipeEnqueue() {
	globalManager.pipeEnqueueRate.Inc()
}

// RecordPipeEnqueueError increments the enqueue error counter for a reason.
func RecordPipeEnqueueError(reason string) {
	globalManager.pipeEnqueueErrors.WithLabelValues(reason).Inc()
}

// Detection metrics functions.

// RecordEventFinalized counts a finalized event by status and observes
// its shape.
func RecordEventFinalized(status string, peak float64, sampleCount int) {
	globalManager.eventsFinalized.WithLabelValues(status).Inc()
	globalManager.eventPeak.Observe(peak)
	globalManager.eventSampleCount.Observe(float64(sampleCount))
}

// UpdateWindowSamples sets the sliding window's retained sample count.
func UpdateWindowSamples(n int) {
	globalManager.windowSamples.Set(float64(n))
}

// Peak metrics functions.

// UpdatePeakValue sets the current decaying peak.
func UpdatePeakValue(v float64) {
	globalManager.peakValue.Set(v)
}

// RecordPeakReset increments the decay reset counter.
func RecordPeakReset() {
	globalManager.peakResets.Inc()
}

// Scoring metrics functions.

// UpdateLastScore sets the most recent score.
func UpdateLastScore(score int) {
	globalManager.lastScore.Set(float64(score))
}

// RecordLeaderboardInsert increments the leaderboard insert counter.
func RecordLeaderboardInsert() {
	globalManager.leaderboardInsert.Inc()
}

// HTTP metrics functions.

// RecordHTTPRequest counts one request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request's duration in seconds.
func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// System metrics functions.

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
