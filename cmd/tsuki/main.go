package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tsuki/internal/adapters/http/api"
	"github.com/okian/tsuki/internal/adapters/http/site"
	"github.com/okian/tsuki/internal/adapters/http/swagger"
	engine "github.com/okian/tsuki/internal/app"
	"github.com/okian/tsuki/internal/config"
	"github.com/okian/tsuki/pkg/logger"
	"github.com/okian/tsuki/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
	engineMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loggerInstance.Info(ctx, "rig configuration",
		logger.String("sourceEndpoint", cfg.SourceEndpoint),
		logger.Int("sampleRateHint", cfg.SampleRateHint),
		logger.Float64("scaleFactor", cfg.ScaleFactor),
	)

	// Create and start the engine with configuration options
	eng := engine.New(
		engine.WithLogger(loggerInstance),
		engine.WithSourceEndpoint(cfg.SourceEndpoint),
		engine.WithScaleFactor(cfg.ScaleFactor),
		engine.WithThresholds(cfg.StartThreshold, cfg.ContinueThreshold),
		engine.WithDebounce(cfg.DebounceSeconds),
		engine.WithWindowSpan(cfg.WindowSpanSeconds),
		engine.WithDecayWindow(cfg.DecayWindowSeconds),
		engine.WithHistoryDepth(cfg.HistoryDepth),
		engine.WithLeaderboardDepth(cfg.LeaderboardDepth),
		engine.WithPipeCapacity(cfg.PipeCapacity),
		engine.WithSynthetic(cfg.SyntheticAmplitude, cfg.SyntheticPeriodSeconds),
	)
	if err := eng.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}
	defer eng.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start engine metrics updater
	go startEngineMetricsUpdater(ctx, eng)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Status page at /, API docs under /api-docs.
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	api.NewServer(eng).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startEngineMetricsUpdater starts a background goroutine that updates engine metrics.
func startEngineMetricsUpdater(ctx context.Context, eng *engine.Engine) {
	ticker := time.NewTicker(engineMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateEngineMetrics(eng)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateEngineMetrics updates engine-level metrics.
func updateEngineMetrics(eng *engine.Engine) {
	stats := eng.Stats()

	length, lok := stats["pipeLength"].(int)
	capacity, cok := stats["pipeCapacity"].(int)
	if !lok || !cok {
		return
	}
	metrics.UpdatePipeSize(length)
	if capacity > 0 {
		metrics.UpdatePipeUtilization(float64(length) / float64(capacity))
	}
}
