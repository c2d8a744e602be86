package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Editor session errors
var (
	// ErrUnsavedChanges is returned when leaving a dirty session without
	// choosing to save or discard.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrSaveInProgress is returned while a save for the same session is pending.
	ErrSaveInProgress = errors.New("save in progress")

	// ErrSessionClosed is returned for operations on a deactivated session.
	ErrSessionClosed = errors.New("editor session closed")

	// ErrStaleLoad marks a load response superseded by a newer request.
	ErrStaleLoad = errors.New("stale load discarded")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (course, completion, landing_page)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
