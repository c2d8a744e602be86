package services

import (
	"context"

	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/landing"
	"mentorx/internal/surface"
)

// LandingService loads, edits, saves and renders course landing pages.
// The document id of a landing page is the id of its course.
type LandingService interface {
	// Load returns the persisted snapshot, empty maps if none exists
	Load(ctx context.Context, p models.Principal, documentID string) (*landing.Snapshot, error)

	// Save overwrites the persisted record with a full snapshot
	Save(ctx context.Context, p models.Principal, documentID string, snap *landing.Snapshot) (*landing.Page, error)

	// Render returns the public HTML of a published course's landing page
	Render(ctx context.Context, documentID string) (string, error)

	// OpenSession starts an editor session in the Editing state
	OpenSession(ctx context.Context, p models.Principal, documentID string) (*landing.SessionView, error)

	// GetSession returns the state and snapshot of a session
	GetSession(ctx context.Context, p models.Principal, sessionID string) (*landing.SessionView, error)

	// Activate re-enters edit mode after a save or discard
	Activate(ctx context.Context, p models.Principal, sessionID string) (*landing.SessionView, error)

	// ApplyEvents replays client edit events onto the session surface
	ApplyEvents(ctx context.Context, p models.Principal, sessionID string, events []surface.Event) (*landing.SessionView, error)

	// SetFields stores field values directly
	SetFields(ctx context.Context, p models.Principal, sessionID string, fields map[string]string) (*landing.SessionView, error)

	// SetImages overrides image URLs; an empty URL restores the default
	SetImages(ctx context.Context, p models.Principal, sessionID string, images map[string]string) (*landing.SessionView, error)

	// SetLayout switches the session to another layout
	SetLayout(ctx context.Context, p models.Principal, sessionID, layout string) (*landing.SessionView, error)

	// UploadImage stores an image and points the tag at it
	UploadImage(ctx context.Context, p models.Principal, sessionID, tag string, data []byte) (*landing.SessionView, error)

	// ExtractHTML reads the fields of a page edited client-side
	ExtractHTML(ctx context.Context, p models.Principal, sessionID, html string) (map[string]string, error)

	// RenderSession returns the current session surface HTML
	RenderSession(ctx context.Context, p models.Principal, sessionID string) (string, error)

	// SaveSession persists the session snapshot
	SaveSession(ctx context.Context, p models.Principal, sessionID string) (*landing.SessionView, error)

	// DiscardSession reloads the last persisted snapshot
	DiscardSession(ctx context.Context, p models.Principal, sessionID string) (*landing.SessionView, error)

	// Leave ends a session, asking for a decision when it is dirty
	Leave(ctx context.Context, p models.Principal, sessionID string, decision landing.LeaveDecision) error

	// CloseSession ends a session without saving
	CloseSession(ctx context.Context, p models.Principal, sessionID string) error
}
