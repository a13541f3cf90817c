package httpx

import (
	"net/http"
	"strconv"

	"github.com/mpo-id/portal/internal/domain/model"
)

// ListScores serves GET /api/games/{game}/scores?limit=N.
func (h *Handlers) ListScores(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scores, err := h.Games.Leaderboard(r.Context(), r.PathValue("game"), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if scores == nil {
		scores = []*model.GameScore{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

// SubmitScore serves POST /api/games/{game}/scores.
func (h *Handlers) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var in model.GameScoreInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	score, err := h.Games.Submit(r.Context(), r.PathValue("game"), in)
	if err != nil {
		if _, ok := model.AsFieldErrors(err); !ok {
			h.logger().WarnContext(r.Context(), "score submission failed", "game", r.PathValue("game"), "error", err)
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, score)
}
