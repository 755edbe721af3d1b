package api

import "net/http"

// ScoreHandler handles score and leaderboard requests.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// scoreResponse is the wire shape for GET /api/v1/score.
type scoreResponse struct {
	LastScore int            `json:"last_score"`
	LastTier  string         `json:"last_tier"`
	Board     []entryPayload `json:"board"`
	Status    string         `json:"status"`
}

// HandleGetScore handles GET /api/v1/score requests.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	last, board := h.deps.ScoreSnapshot()
	out := make([]entryPayload, len(board))
	for i, e := range board {
		out[i] = entryPayload{Rank: e.Rank, Score: e.Score, Tier: e.Tier}
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		LastScore: last.Score,
		LastTier:  last.Tier,
		Board:     out,
		Status:    h.deps.Status(),
	})
}
