package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"mentorx/internal/config"
	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/landing"
	"mentorx/internal/domain/services"
	"mentorx/internal/httputil"
	"mentorx/internal/surface"
)

// EditorSessionHandler drives server-side landing page editor sessions
type EditorSessionHandler struct {
	landingService services.LandingService
	logger         *slog.Logger
}

// NewEditorSessionHandler creates a new editor session handler
func NewEditorSessionHandler(landingService services.LandingService, logger *slog.Logger) *EditorSessionHandler {
	return &EditorSessionHandler{
		landingService: landingService,
		logger:         logger,
	}
}

type eventsRequest struct {
	Events []surface.Event `json:"events"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

type imagesRequest struct {
	Images map[string]string `json:"images"`
}

type layoutRequest struct {
	Layout string `json:"layout"`
}

type extractRequest struct {
	HTML string `json:"html"`
}

type extractResponse struct {
	Fields map[string]string `json:"fields"`
}

type leaveRequest struct {
	Decision landing.LeaveDecision `json:"decision"`
}

// Open starts an editor session in the editing state
// POST /api/landing-pages/{id}/sessions
func (h *EditorSessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := idPathValue(w, r, "id")
	if !ok {
		return
	}

	view, err := h.landingService.OpenSession(r.Context(), p, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, view)
}

// Get returns the session state and snapshot
// GET /api/editor-sessions/{sid}
func (h *EditorSessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, h.landingService.GetSession)
}

// Activate re-enters edit mode
// POST /api/editor-sessions/{sid}/activate
func (h *EditorSessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, h.landingService.Activate)
}

// Save persists the session snapshot
// POST /api/editor-sessions/{sid}/save
func (h *EditorSessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, h.landingService.SaveSession)
}

// Discard reloads the last persisted snapshot
// POST /api/editor-sessions/{sid}/discard
func (h *EditorSessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, h.landingService.DiscardSession)
}

// ApplyEvents replays client edit events
// POST /api/editor-sessions/{sid}/events
func (h *EditorSessionHandler) ApplyEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req eventsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.landingService.ApplyEvents(r.Context(), p, sid, req.Events)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// SetFields stores field values directly
// PATCH /api/editor-sessions/{sid}/fields
func (h *EditorSessionHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req fieldsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.landingService.SetFields(r.Context(), p, sid, req.Fields)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// SetImages overrides image URLs; an empty URL restores the default
// PATCH /api/editor-sessions/{sid}/images
func (h *EditorSessionHandler) SetImages(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req imagesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.landingService.SetImages(r.Context(), p, sid, req.Images)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// SetLayout switches layouts
// PATCH /api/editor-sessions/{sid}/layout
func (h *EditorSessionHandler) SetLayout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req layoutRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.landingService.SetLayout(r.Context(), p, sid, req.Layout)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// UploadImage stores the multipart "file" part and points the tag at it
// POST /api/editor-sessions/{sid}/images/{tag}
func (h *EditorSessionHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}
	tag, ok := pathValue(w, r, "tag")
	if !ok {
		return
	}

	data, err := httputil.ReadFormFile(w, r, "file", config.MaxImageUploadBytes)
	if err != nil {
		if errors.Is(err, httputil.ErrFileTooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "image exceeds upload limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.landingService.UploadImage(r.Context(), p, sid, tag, data)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// Extract reads field values out of a page edited client-side
// POST /api/editor-sessions/{sid}/extract
func (h *EditorSessionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req extractRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields, err := h.landingService.ExtractHTML(r.Context(), p, sid, req.HTML)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, extractResponse{Fields: fields})
}

// Render returns the current surface HTML, edit markers included
// GET /api/editor-sessions/{sid}/render
func (h *EditorSessionHandler) Render(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	html, err := h.landingService.RenderSession(r.Context(), p, sid)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondHTML(w, http.StatusOK, html)
}

// Leave ends the session. A dirty session without a decision answers 409
// with {"state":"dirty"} and stays open.
// POST /api/editor-sessions/{sid}/leave
func (h *EditorSessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	var req leaveRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	switch req.Decision {
	case landing.LeaveUndecided, landing.LeaveSave, landing.LeaveDiscard:
	default:
		httputil.RespondError(w, http.StatusBadRequest, "decision must be \"save\" or \"discard\"")
		return
	}

	if err := h.landingService.Leave(r.Context(), p, sid, req.Decision); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Close deactivates and drops the session without saving
// DELETE /api/editor-sessions/{sid}
func (h *EditorSessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	if err := h.landingService.CloseSession(r.Context(), p, sid); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type sessionCall func(ctx context.Context, p models.Principal, sessionID string) (*landing.SessionView, error)

// view runs a body-less session operation and writes the resulting view.
func (h *EditorSessionHandler) view(w http.ResponseWriter, r *http.Request, call sessionCall) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	sid, ok := pathValue(w, r, "sid")
	if !ok {
		return
	}

	view, err := call(r.Context(), p, sid)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}
