package api

import (
	"net/http"
	"strconv"
)

// HistoryHandler handles retained event requests.
type HistoryHandler struct {
	deps Dependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// historyResponse is the wire shape for GET /api/v1/history.
type historyResponse struct {
	Events []eventPayload `json:"events"`
}

// normalizedResponse carries t=0 traces for overlay rendering.
type normalizedResponse struct {
	Traces [][]samplePayload `json:"traces"`
}

// HandleGetHistory handles GET /api/v1/history requests. With
// normalized=true the traces are shifted to a common t=0 origin.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	if raw := r.URL.Query().Get("normalized"); raw != "" {
		normalized, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if normalized {
			traces := h.deps.NormalizedHistory()
			out := make([][]samplePayload, len(traces))
			for i, tr := range traces {
				out[i] = toSamplePayloads(tr)
			}
			writeJSON(w, http.StatusOK, normalizedResponse{Traces: out})
			return
		}
	}

	events := h.deps.HistorySnapshot()
	out := make([]eventPayload, len(events))
	for i, ev := range events {
		out[i] = toEventPayload(ev)
	}
	writeJSON(w, http.StatusOK, historyResponse{Events: out})
}
