package handler

import (
	"net/http"

	"mentorx/internal/httputil"
	"mentorx/internal/layouts"
)

// LayoutHandler lists the landing page layouts
type LayoutHandler struct {
	catalogue *layouts.Catalogue
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(catalogue *layouts.Catalogue) *LayoutHandler {
	return &LayoutHandler{catalogue: catalogue}
}

type layoutListResponse struct {
	Default string            `json:"default"`
	Layouts []*layouts.Layout `json:"layouts"`
}

// ListLayouts returns every layout with its default images
// GET /api/layouts
func (h *LayoutHandler) ListLayouts(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, layoutListResponse{
		Default: h.catalogue.Default().Name,
		Layouts: h.catalogue.All(),
	})
}
