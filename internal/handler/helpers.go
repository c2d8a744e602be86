package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	"mentorx/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrUnsavedChanges):
		// The client must answer the save/discard prompt
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"state":     "dirty",
			"decisions": []string{"save", "discard"},
		})
	case errors.Is(err, domain.ErrSaveInProgress), errors.Is(err, domain.ErrStaleLoad):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrSessionClosed):
		httputil.RespondError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// principal returns the authenticated caller, writing a 401 when absent.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
	}
	return p, ok
}

// pathValue returns a required path parameter, writing a 400 when empty.
func pathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return v, true
}

// idPathValue is pathValue for database ids, which are UUIDs.
func idPathValue(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, ok := pathValue(w, r, name)
	if !ok {
		return "", false
	}
	if err := uuid.Validate(v); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return v, true
}
