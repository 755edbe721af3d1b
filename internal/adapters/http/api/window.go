package api

import "net/http"

// WindowHandler handles sliding window requests.
type WindowHandler struct {
	deps Dependencies
}

// NewWindowHandler creates a new window handler.
func NewWindowHandler(deps Dependencies) *WindowHandler {
	return &WindowHandler{deps: deps}
}

// windowResponse is the wire shape for GET /api/v1/window.
type windowResponse struct {
	SpanSamples int             `json:"span_samples"`
	Samples     []samplePayload `json:"samples"`
}

// HandleGetWindow handles GET /api/v1/window requests.
func (h *WindowHandler) HandleGetWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	samples := toSamplePayloads(h.deps.WindowSnapshot())
	writeJSON(w, http.StatusOK, windowResponse{
		SpanSamples: len(samples),
		Samples:     samples,
	})
}
