package handler

import (
	"log/slog"
	"net/http"

	"mentorx/internal/domain/services"
	"mentorx/internal/httputil"
)

// PlayerHandler serves the course player
type PlayerHandler struct {
	playerService services.PlayerService
	logger        *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		logger:        logger,
	}
}

// GetPlayer returns the content tree, completion marks and resume point
// GET /api/courses/{id}/player
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	courseID, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	view, err := h.playerService.GetPlayer(r.Context(), p, courseID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// GetNeighbors resolves the previous and next leaves of a content item
// GET /api/courses/{id}/contents/{contentId}/neighbors
func (h *PlayerHandler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	courseID, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}
	contentID, ok := idPathValue(w, r, "contentId")
	if !ok {
		return
	}

	n, err := h.playerService.Neighbors(r.Context(), p, courseID, contentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, n)
}
