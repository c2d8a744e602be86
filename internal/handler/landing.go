package handler

import (
	"log/slog"
	"net/http"

	"mentorx/internal/domain/models/landing"
	"mentorx/internal/domain/services"
	"mentorx/internal/httputil"
)

// LandingHandler loads, saves and renders landing pages
type LandingHandler struct {
	landingService services.LandingService
	logger         *slog.Logger
}

// NewLandingHandler creates a new landing page handler
func NewLandingHandler(landingService services.LandingService, logger *slog.Logger) *LandingHandler {
	return &LandingHandler{
		landingService: landingService,
		logger:         logger,
	}
}

// Load returns the persisted snapshot, empty maps if the page was never saved
// GET /api/landing-pages/{id}
func (h *LandingHandler) Load(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	snap, err := h.landingService.Load(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snap)
}

// Save overwrites the page with the request snapshot (last writer wins)
// PUT /api/landing-pages/{id}
func (h *LandingHandler) Save(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	var snap landing.Snapshot
	if err := httputil.ParseJSON(w, r, &snap); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.landingService.Save(r.Context(), p, id, &snap)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// Render serves the public landing page of a published course
// GET /pages/{id}
func (h *LandingHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	html, err := h.landingService.Render(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondHTML(w, http.StatusOK, html)
}
