package handler

import (
	"log/slog"
	"net/http"

	"mentorx/internal/domain/models/course"
	"mentorx/internal/domain/services"
	"mentorx/internal/httputil"
)

// CompletionHandler handles completion marks
type CompletionHandler struct {
	completionService services.CompletionService
	logger            *slog.Logger
}

// NewCompletionHandler creates a new completion handler
func NewCompletionHandler(completionService services.CompletionService, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{
		completionService: completionService,
		logger:            logger,
	}
}

// Toggle flips the caller's completion mark on one leaf
// POST /api/courses/{id}/contents/{contentId}/completion
func (h *CompletionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.completionService.Toggle(r.Context(), p, &services.ToggleCompletionRequest{
		CourseID:  courseID,
		ContentID: contentID,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// List returns the caller's completion marks in a course
// GET /api/courses/{id}/completions
func (h *CompletionHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	courseID, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	marks, err := h.completionService.List(r.Context(), p, courseID)
	if err != nil {
		handleError(w, err)
		return
	}
	if marks == nil {
		marks = []course.CompletionMark{}
	}

	httputil.RespondJSON(w, http.StatusOK, marks)
}
