package landing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mentorx/internal/config"
	"mentorx/internal/domain"
	models "mentorx/internal/domain/models/landing"
	"mentorx/internal/layouts"
	"mentorx/internal/surface"
	"mentorx/internal/surface/htmlsurface"
)

// generation tags asynchronous loads so only the latest one is applied.
type generation struct {
	n atomic.Uint64
}

func (g *generation) next() uint64 { return g.n.Add(1) }

func (g *generation) latest(token uint64) bool { return g.n.Load() == token }

// Session is one mentor's editing context for a landing page. All editor
// state lives here and changes only through its methods:
//
//	Viewing -> Editing   Activate
//	Editing -> Dirty     first edit
//	Dirty   -> Saving    Save
//	Saving  -> Viewing   save succeeded
//	Saving  -> Dirty     save failed, error kept in LastError
//	Dirty   -> Viewing   Discard reloads the persisted snapshot
type Session struct {
	id         string
	documentID string
	ownerID    string

	adapter   *Adapter
	catalogue *layouts.Catalogue
	logger    *slog.Logger
	loads     generation

	mu          sync.Mutex
	layout      *layouts.Layout
	doc         *htmlsurface.Document
	fields      *FieldStore
	images      *ImageStore
	controller  *Controller
	layoutDirty bool
	saveFailed  bool
	saving      bool
	closed      bool
	lastErr     string
	savedAt     *time.Time
	lastUsed    time.Time
}

// NewSession mounts snap on its layout template in the Viewing state.
func NewSession(
	id, documentID, ownerID string,
	snap *models.Snapshot,
	adapter *Adapter,
	catalogue *layouts.Catalogue,
	logger *slog.Logger,
) (*Session, error) {
	layout, err := catalogue.Resolve(snap.Layout)
	if err != nil {
		return nil, err
	}

	fields := NewFieldStore()
	fields.LoadSnapshot(snap.Fields)
	images := NewImageStore(layout.Images)
	images.LoadSnapshot(snap.Images)

	s := &Session{
		id:         id,
		documentID: documentID,
		ownerID:    ownerID,
		adapter:    adapter,
		catalogue:  catalogue,
		logger:     logger.With("session_id", id, "document_id", documentID),
		layout:     layout,
		fields:     fields,
		images:     images,
		controller: NewController(fields, images),
		lastUsed:   time.Now(),
	}
	if err := s.mount(false); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// DocumentID returns the edited document
func (s *Session) DocumentID() string { return s.documentID }

// OwnerID returns the user who opened the session
func (s *Session) OwnerID() string { return s.ownerID }

// State returns the current editor state.
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() models.State {
	switch {
	case s.saving:
		return models.StateSaving
	case s.dirty():
		return models.StateDirty
	case s.controller.Active(s.doc):
		return models.StateEditing
	default:
		return models.StateViewing
	}
}

func (s *Session) dirty() bool {
	return s.fields.Dirty() || s.images.Dirty() || s.layoutDirty || s.saveFailed
}

// View returns what API clients see of the session.
func (s *Session) View() *models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() *models.SessionView {
	return &models.SessionView{
		ID:         s.id,
		DocumentID: s.documentID,
		State:      s.state(),
		Dirty:      s.dirty(),
		Layout:     s.layout.Name,
		Fields:     s.fields.Snapshot(),
		Images:     s.images.All(),
		LastError:  s.lastErr,
		SavedAt:    s.savedAt,
	}
}

// Activate makes the page editable.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writable(); err != nil {
		return err
	}
	s.controller.Activate(s.doc)
	return nil
}

// ApplyEvents replays edit events from the client in order.
func (s *Session) ApplyEvents(events []surface.Event) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return nil, err
	}

	for i, ev := range events {
		if len(ev.Value) > config.MaxFieldValueLength {
			return nil, fmt.Errorf("%w: event %d: value too long", domain.ErrValidation, i)
		}
		if _, err := s.doc.Dispatch(ev); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", domain.ErrValidation, i, err)
		}
	}
	return s.view(), nil
}

// SetFields stores values directly and shows them on the page.
func (s *Session) SetFields(values map[string]string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return nil, err
	}
	if err := validateKeys("fields", values); err != nil {
		return nil, err
	}
	for id, v := range values {
		if len(v) > config.MaxFieldValueLength {
			return nil, fmt.Errorf("%w: field %q too long", domain.ErrValidation, id)
		}
	}

	for id, v := range values {
		s.fields.Set(id, v)
		s.doc.WriteText(id, v)
	}
	return s.view(), nil
}

// SetImages overrides background images by tag. An empty URL removes the
// override so the layout default applies again.
func (s *Session) SetImages(urls map[string]string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return nil, err
	}
	if err := validateKeys("images", urls); err != nil {
		return nil, err
	}
	for tag, url := range urls {
		if err := validateImageURL(url); err != nil {
			return nil, fmt.Errorf("%w: image %q: %v", domain.ErrValidation, tag, err)
		}
	}

	for tag, url := range urls {
		if url == "" {
			s.images.Unset(tag)
		} else {
			s.images.Set(tag, url)
		}
		if cfg, ok := s.images.Resolved(tag); ok && cfg.URL != "" {
			s.doc.WriteImage(tag, cfg.URL)
		}
	}
	return s.view(), nil
}

// SetLayout switches the template. Stored fields and image overrides are
// kept and re-applied to the new template.
func (s *Session) SetLayout(name string) (*models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return nil, err
	}

	layout, err := s.catalogue.Get(name)
	if err != nil {
		return nil, err
	}
	if layout.Name == s.layout.Name {
		return s.view(), nil
	}

	// Keep on-screen edits that only live in the surface
	for id, v := range s.controller.Extract(s.doc) {
		if cur, ok := s.fields.Get(id); !ok || cur != v {
			s.fields.Set(id, v)
		}
	}

	active := s.controller.Active(s.doc)
	s.controller.Deactivate(s.doc)
	s.layout = layout
	s.images.SetDefaults(layout.Images)
	s.layoutDirty = true
	if err := s.mount(active); err != nil {
		return nil, err
	}
	return s.view(), nil
}

// ExtractHTML reads fields and background images out of a full page
// edited client-side and stores every value that differs from the
// session. Tags absent from the current layout are ignored. Returns the
// extracted field text.
func (s *Session) ExtractHTML(html string) (map[string]string, error) {
	posted, err := htmlsurface.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return nil, err
	}

	knownImages := make(map[string]bool)
	for _, tag := range s.doc.Images() {
		knownImages[tag] = true
	}
	changedImages := make(map[string]string)
	for tag, url := range s.controller.ExtractImages(posted) {
		if !knownImages[tag] {
			continue
		}
		if cfg, ok := s.images.Resolved(tag); ok && cfg.URL == url {
			continue
		}
		if err := validateImageURL(url); err != nil {
			return nil, fmt.Errorf("%w: image %q: %v", domain.ErrValidation, tag, err)
		}
		changedImages[tag] = url
	}

	known := make(map[string]bool)
	for _, id := range s.doc.Fields() {
		known[id] = true
	}

	extracted := s.controller.Extract(posted)
	for id, v := range extracted {
		if !known[id] {
			delete(extracted, id)
			continue
		}
		current, ok := s.fields.Get(id)
		if !ok {
			if raw, found := s.doc.ReadField(id); found {
				current = htmlsurface.StripMarkup(raw)
			}
		}
		if current != v {
			s.fields.Set(id, v)
			s.doc.WriteText(id, v)
		}
	}

	for tag, url := range changedImages {
		s.images.Set(tag, url)
		s.doc.WriteImage(tag, url)
	}
	return extracted, nil
}

// HTML renders the current surface, including edit markers when active.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", domain.ErrSessionClosed
	}
	return s.doc.HTML()
}

// Save persists the full snapshot. Only one save runs at a time; edits
// are rejected while it is in flight. Starting a save supersedes any
// reload still in flight.
func (s *Session) Save(ctx context.Context) (*models.Page, error) {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.saving = true
	s.loads.next()
	snap := s.snapshot()
	s.mu.Unlock()

	page, err := s.adapter.Save(ctx, s.documentID, snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	if err != nil {
		s.saveFailed = true
		s.lastErr = err.Error()
		s.logger.Warn("landing page save failed", "error", err)
		return nil, err
	}

	s.fields.LoadSnapshot(snap.Fields)
	s.images.LoadSnapshot(snap.Images)
	s.layoutDirty = false
	s.saveFailed = false
	s.lastErr = ""
	savedAt := page.UpdatedAt
	s.savedAt = &savedAt
	s.controller.Deactivate(s.doc)
	return page, nil
}

// snapshot merges the store with the text currently on the page. Caller
// holds mu.
func (s *Session) snapshot() *models.Snapshot {
	fields := s.fields.Snapshot()
	for id, v := range s.controller.Extract(s.doc) {
		fields[id] = v
	}
	return &models.Snapshot{
		Layout: s.layout.Name,
		Fields: fields,
		Images: s.images.Snapshot(),
	}
}

// Discard drops local changes, reloads the persisted snapshot and returns
// to Viewing. A reload overtaken by a newer reload or by a save returns
// ErrStaleLoad, or ErrSaveInProgress while that save is still running.
func (s *Session) Discard(ctx context.Context) error {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return err
	}
	token := s.loads.next()
	s.mu.Unlock()

	snap, err := s.adapter.Load(ctx, s.documentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return domain.ErrSaveInProgress
	}
	if !s.loads.latest(token) {
		return domain.ErrStaleLoad
	}
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	if s.closed {
		return domain.ErrSessionClosed
	}

	layout, err := s.catalogue.Resolve(snap.Layout)
	if err != nil {
		return err
	}

	s.controller.Deactivate(s.doc)
	s.layout = layout
	s.fields.LoadSnapshot(snap.Fields)
	s.images.SetDefaults(layout.Images)
	s.images.LoadSnapshot(snap.Images)
	s.layoutDirty = false
	s.saveFailed = false
	s.lastErr = ""
	return s.mount(false)
}

// Leave ends the session. A dirty session needs a decision: without one
// ErrUnsavedChanges is returned and nothing changes. The saved page is
// returned when the decision was to save.
func (s *Session) Leave(ctx context.Context, decision models.LeaveDecision) (*models.Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if s.saving {
		s.mu.Unlock()
		return nil, domain.ErrSaveInProgress
	}
	dirty := s.dirty()
	s.mu.Unlock()

	var page *models.Page
	if dirty {
		switch decision {
		case models.LeaveSave:
			saved, err := s.Save(ctx)
			if err != nil {
				return nil, err
			}
			page = saved
		case models.LeaveDiscard:
			if err := s.Discard(ctx); err != nil {
				return nil, err
			}
		case models.LeaveUndecided:
			return nil, domain.ErrUnsavedChanges
		default:
			return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
		}
	}

	s.Close()
	return page, nil
}

// Close removes edit affordances and ends the session without saving.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.controller.Deactivate(s.doc)
	s.closed = true
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty()
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// CheckEditing returns the error an edit would fail with right now, or
// nil when the session takes edits.
func (s *Session) CheckEditing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing()
}

// editing additionally requires an activated surface. Caller holds mu.
func (s *Session) editing() error {
	if err := s.writable(); err != nil {
		return err
	}
	if !s.controller.Active(s.doc) {
		return fmt.Errorf("%w: session is not in edit mode", domain.ErrConflict)
	}
	return nil
}

// writable rejects mutations on closed or saving sessions. Caller holds mu.
func (s *Session) writable() error {
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.saving {
		return domain.ErrSaveInProgress
	}
	return nil
}

// mount renders the layout into a fresh surface and projects the stores
// onto it. Caller holds mu.
func (s *Session) mount(activate bool) error {
	doc, err := htmlsurface.Parse(s.layout.HTML)
	if err != nil {
		return fmt.Errorf("render layout %s: %w", s.layout.Name, err)
	}
	s.controller.ApplySnapshot(doc)
	s.controller.ApplyImages(doc)
	s.doc = doc
	if activate {
		s.controller.Activate(doc)
	}
	return nil
}

func validateImageURL(url string) error {
	switch {
	case url == "":
		return nil
	case len(url) > config.MaxImageURLLength:
		return fmt.Errorf("url too long")
	case !imageURLPattern.MatchString(url):
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}
