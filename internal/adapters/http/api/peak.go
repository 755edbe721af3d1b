package api

import "net/http"

// PeakHandler handles decaying peak requests.
type PeakHandler struct {
	deps Dependencies
}

// NewPeakHandler creates a new peak handler.
func NewPeakHandler(deps Dependencies) *PeakHandler {
	return &PeakHandler{deps: deps}
}

// peakResponse is the wire shape for GET /api/v1/peak.
type peakResponse struct {
	Magnitude        float64 `json:"magnitude"`
	ObservedAt       float64 `json:"observed_at"`
	EventID          string  `json:"event_id,omitempty"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// HandleGetPeak handles GET /api/v1/peak requests.
func (h *PeakHandler) HandleGetPeak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rec, remaining := h.deps.PeakSnapshot()
	writeJSON(w, http.StatusOK, peakResponse{
		Magnitude:        rec.Magnitude,
		ObservedAt:       rec.ObservedAt,
		EventID:          rec.EventID,
		RemainingSeconds: remaining,
	})
}
