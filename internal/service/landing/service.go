package landing

import (
	"context"
	"fmt"
	"log/slog"

	"mentorx/internal/config"
	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	landingModels "mentorx/internal/domain/models/landing"
	courseRepo "mentorx/internal/domain/repositories/course"
	"mentorx/internal/domain/services"
	"mentorx/internal/events"
	"mentorx/internal/layouts"
	"mentorx/internal/storage"
	"mentorx/internal/surface"
	"mentorx/internal/surface/htmlsurface"
)

type landingService struct {
	adapter    *Adapter
	sessions   *SessionManager
	catalogue  *layouts.Catalogue
	authorizer services.CourseAuthorizer
	courses    courseRepo.CourseRepository
	storage    storage.ObjectStorage
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewService creates a new landing page service
func NewService(
	adapter *Adapter,
	sessions *SessionManager,
	catalogue *layouts.Catalogue,
	authorizer services.CourseAuthorizer,
	courses courseRepo.CourseRepository,
	objectStorage storage.ObjectStorage,
	publisher events.Publisher,
	logger *slog.Logger,
) services.LandingService {
	return &landingService{
		adapter:    adapter,
		sessions:   sessions,
		catalogue:  catalogue,
		authorizer: authorizer,
		courses:    courses,
		storage:    objectStorage,
		publisher:  publisher,
		logger:     logger,
	}
}

// Load returns the persisted snapshot of a landing page
func (s *landingService) Load(ctx context.Context, p models.Principal, documentID string) (*landingModels.Snapshot, error) {
	if _, err := s.authorizer.CanEdit(ctx, p, documentID); err != nil {
		return nil, err
	}
	return s.adapter.Load(ctx, documentID)
}

// Save overwrites the landing page with snap (last writer wins)
func (s *landingService) Save(ctx context.Context, p models.Principal, documentID string, snap *landingModels.Snapshot) (*landingModels.Page, error) {
	if _, err := s.authorizer.CanEdit(ctx, p, documentID); err != nil {
		return nil, err
	}
	if snap != nil && snap.Layout == "" {
		snap.Layout = s.catalogue.Default().Name
	}

	page, err := s.adapter.Save(ctx, documentID, snap)
	if err != nil {
		return nil, err
	}
	s.publishSaved(ctx, p, page)
	return page, nil
}

// Render builds the public page: layout template with stored fields and
// resolved images, without edit affordances.
func (s *landingService) Render(ctx context.Context, documentID string) (string, error) {
	c, err := s.courses.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if !c.Published {
		return "", fmt.Errorf("landing page %s: %w", documentID, domain.ErrNotFound)
	}

	snap, err := s.adapter.Load(ctx, documentID)
	if err != nil {
		return "", err
	}
	layout, err := s.catalogue.Resolve(snap.Layout)
	if err != nil {
		return "", err
	}

	fields := NewFieldStore()
	fields.LoadSnapshot(snap.Fields)
	images := NewImageStore(layout.Images)
	images.LoadSnapshot(snap.Images)
	controller := NewController(fields, images)

	doc, err := htmlsurface.Parse(layout.HTML)
	if err != nil {
		return "", fmt.Errorf("render layout %s: %w", layout.Name, err)
	}
	controller.ApplySnapshot(doc)
	controller.ApplyImages(doc)
	return doc.HTML()
}

// OpenSession loads the page into a new session and activates editing.
func (s *landingService) OpenSession(ctx context.Context, p models.Principal, documentID string) (*landingModels.SessionView, error) {
	if _, err := s.authorizer.CanEdit(ctx, p, documentID); err != nil {
		return nil, err
	}

	snap, err := s.adapter.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(s.sessions.NewID(), documentID, p.UserID, snap, s.adapter, s.catalogue, s.logger)
	if err != nil {
		return nil, err
	}
	if err := session.Activate(); err != nil {
		return nil, err
	}
	s.sessions.Add(session)

	s.logger.Info("editor session opened",
		"session_id", session.ID(),
		"document_id", documentID,
		"user_id", p.UserID,
	)
	return session.View(), nil
}

// GetSession returns the session view
func (s *landingService) GetSession(_ context.Context, p models.Principal, sessionID string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

// Activate re-enters edit mode
func (s *landingService) Activate(_ context.Context, p models.Principal, sessionID string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Activate(); err != nil {
		return nil, err
	}
	return session.View(), nil
}

// ApplyEvents replays client edit events
func (s *landingService) ApplyEvents(_ context.Context, p models.Principal, sessionID string, evs []surface.Event) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.ApplyEvents(evs)
}

// SetFields stores field values directly
func (s *landingService) SetFields(_ context.Context, p models.Principal, sessionID string, fields map[string]string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.SetFields(fields)
}

// SetImages overrides image URLs
func (s *landingService) SetImages(_ context.Context, p models.Principal, sessionID string, images map[string]string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.SetImages(images)
}

// SetLayout switches layouts
func (s *landingService) SetLayout(_ context.Context, p models.Principal, sessionID, layout string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.SetLayout(layout)
}

// UploadImage stores the image under the document's folder and sets the
// tag override to its public URL.
func (s *landingService) UploadImage(ctx context.Context, p models.Principal, sessionID, tag string, data []byte) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	if tag == "" || len(tag) > config.MaxFieldIDLength {
		return nil, fmt.Errorf("%w: invalid image tag", domain.ErrValidation)
	}
	if len(data) == 0 || len(data) > config.MaxImageUploadBytes {
		return nil, fmt.Errorf("%w: image must be 1 byte to %d bytes", domain.ErrValidation, config.MaxImageUploadBytes)
	}

	contentType, ext, err := storage.DetectImageType(data)
	if err != nil {
		return nil, err
	}
	// Nothing reaches the bucket unless the edit can be applied
	if err := session.CheckEditing(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%s-%s.%s", session.DocumentID(), tag, s.sessions.NewID(), ext)
	url, err := s.storage.Upload(ctx, path, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	s.logger.Info("landing image uploaded",
		"document_id", session.DocumentID(),
		"tag", tag,
		"bytes", len(data),
	)
	return session.SetImages(map[string]string{tag: url})
}

// ExtractHTML reads fields out of a client-edited page
func (s *landingService) ExtractHTML(_ context.Context, p models.Principal, sessionID, html string) (map[string]string, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	return session.ExtractHTML(html)
}

// RenderSession returns the session surface HTML
func (s *landingService) RenderSession(_ context.Context, p models.Principal, sessionID string) (string, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return "", err
	}
	return session.HTML()
}

// SaveSession persists the session snapshot and publishes the save.
func (s *landingService) SaveSession(ctx context.Context, p models.Principal, sessionID string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	page, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	s.publishSaved(ctx, p, page)
	return session.View(), nil
}

// DiscardSession drops local edits
func (s *landingService) DiscardSession(ctx context.Context, p models.Principal, sessionID string) (*landingModels.SessionView, error) {
	session, err := s.session(p, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Discard(ctx); err != nil {
		return nil, err
	}
	return session.View(), nil
}

// Leave ends a session once unsaved changes are resolved.
func (s *landingService) Leave(ctx context.Context, p models.Principal, sessionID string, decision landingModels.LeaveDecision) error {
	session, err := s.session(p, sessionID)
	if err != nil {
		return err
	}

	page, err := session.Leave(ctx, decision)
	if err != nil {
		return err
	}
	s.sessions.Remove(sessionID)

	if page != nil {
		s.publishSaved(ctx, p, page)
	}
	return nil
}

// CloseSession ends a session without saving
func (s *landingService) CloseSession(_ context.Context, p models.Principal, sessionID string) error {
	if _, err := s.session(p, sessionID); err != nil {
		return err
	}
	s.sessions.Remove(sessionID)
	return nil
}

// session fetches a live session owned by p. Admins may act on any session.
func (s *landingService) session(p models.Principal, sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID() != p.UserID && !p.IsAdmin() {
		// Don't reveal other users' session ids
		return nil, fmt.Errorf("editor session %s: %w", sessionID, domain.ErrNotFound)
	}
	return session, nil
}

func (s *landingService) publishSaved(ctx context.Context, p models.Principal, page *landingModels.Page) {
	events.PublishQuietly(ctx, s.publisher, s.logger, events.LandingPageSaved, events.LandingPageSavedData{
		DocumentID: page.DocumentID,
		Layout:     page.Layout,
		SavedBy:    p.UserID,
		Fields:     len(page.Fields),
		Images:     len(page.Images),
	})
}
