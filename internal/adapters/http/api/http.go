// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/internal/domain/scoring"
)

// Dependencies is the read surface the handlers need from the running
// engine. Every method returns copies, so handlers never hold engine
// locks across serialization.
type Dependencies interface {
	// WindowSnapshot returns the sliding window contents, oldest first.
	WindowSnapshot() []model.Sample

	// HistorySnapshot returns retained accepted events, newest first.
	HistorySnapshot() []model.Event

	// NormalizedHistory returns the retained traces shifted to t=0.
	NormalizedHistory() [][]model.Sample

	// PeakSnapshot returns the decaying peak and its remaining seconds.
	PeakSnapshot() (model.PeakRecord, float64)

	// ScoreSnapshot returns the last evaluation and the leaderboard.
	ScoreSnapshot() (scoring.Result, []model.Entry)

	// Status returns the transient status line.
	Status() string

	// Fallback reports whether the synthetic generator is in use.
	Fallback() bool

	// Stats returns ingestion and detection counters.
	Stats() map[string]interface{}
}

// Server wires HTTP routes for the read API.
type Server struct {
	windowHandler  *WindowHandler
	historyHandler *HistoryHandler
	peakHandler    *PeakHandler
	scoreHandler   *ScoreHandler
	statsHandler   *StatsHandler
	healthHandler  *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		windowHandler:  NewWindowHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		peakHandler:    NewPeakHandler(deps),
		scoreHandler:   NewScoreHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		healthHandler:  NewHealthHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/window", MetricsMiddleware(s.windowHandler.HandleGetWindow, "window"))
	mux.HandleFunc("/api/v1/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/api/v1/peak", MetricsMiddleware(s.peakHandler.HandleGetPeak, "peak"))
	mux.HandleFunc("/api/v1/score", MetricsMiddleware(s.scoreHandler.HandleGetScore, "score"))
	mux.HandleFunc("/api/v1/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
}

// samplePayload mirrors the wire shape of one reading.
type samplePayload struct {
	TS        float64 `json:"ts"`
	Magnitude float64 `json:"magnitude"`
}

// eventPayload mirrors the wire shape of one finalized event.
type eventPayload struct {
	ID      string          `json:"id"`
	StartTS float64         `json:"start_ts"`
	EndTS   float64         `json:"end_ts"`
	Peak    float64         `json:"peak"`
	Status  string          `json:"status"`
	Samples []samplePayload `json:"samples"`
}

// entryPayload mirrors one leaderboard row.
type entryPayload struct {
	Rank  int    `json:"rank"`
	Score int    `json:"score"`
	Tier  string `json:"tier"`
}

func toSamplePayloads(samples []model.Sample) []samplePayload {
	out := make([]samplePayload, len(samples))
	for i, s := range samples {
		out[i] = samplePayload{TS: s.TS, Magnitude: s.Magnitude}
	}
	return out
}

func toEventPayload(ev model.Event) eventPayload {
	return eventPayload{
		ID:      ev.ID,
		StartTS: ev.StartTS,
		EndTS:   ev.EndTS,
		Peak:    ev.Peak,
		Status:  ev.Status.String(),
		Samples: toSamplePayloads(ev.Samples),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
