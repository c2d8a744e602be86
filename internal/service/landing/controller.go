package landing

import (
	"sync"

	"mentorx/internal/sanitizer"
	"mentorx/internal/surface"
)

// Controller makes the tagged elements of a surface editable in place and
// mirrors edits into a FieldStore. It never saves: the dirty flag stays set
// until the session persists or discards.
type Controller struct {
	fields *FieldStore
	images *ImageStore

	mu       sync.Mutex
	active   map[surface.Surface]func()
	baseline map[surface.Surface]map[string]string // text at activation
}

// NewController binds a controller to its stores
func NewController(fields *FieldStore, images *ImageStore) *Controller {
	return &Controller{
		fields:   fields,
		images:   images,
		active:   make(map[surface.Surface]func()),
		baseline: make(map[surface.Surface]map[string]string),
	}
}

// Activate enables editing on every tagged field of s and subscribes to
// its edit events. Activating an active surface does nothing.
func (c *Controller) Activate(s surface.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[s]; ok {
		return
	}
	for _, id := range s.Fields() {
		s.SetEditable(id, true)
	}
	c.baseline[s] = c.Extract(s)
	c.active[s] = s.Subscribe(func(ev surface.Event) bool {
		return c.handle(s, ev)
	})
}

// Deactivate removes edit affordances and handlers from s. The field
// store is left as is.
func (c *Controller) Deactivate(s surface.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cancel, ok := c.active[s]
	if !ok {
		return
	}
	cancel()
	delete(c.active, s)
	delete(c.baseline, s)
	for _, id := range s.Fields() {
		s.SetEditable(id, false)
	}
}

// Active reports whether s is being edited through this controller.
func (c *Controller) Active(s surface.Surface) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[s]
	return ok
}

// ApplySnapshot writes every stored value into its tagged element as
// plain text. Elements without a stored value keep the template text.
func (c *Controller) ApplySnapshot(s surface.Surface) {
	for _, id := range s.Fields() {
		if v, ok := c.fields.Get(id); ok {
			s.WriteText(id, v)
		}
	}
}

// Extract returns the plain text of every tagged element of s.
func (c *Controller) Extract(s surface.Surface) map[string]string {
	out := make(map[string]string)
	for _, id := range s.Fields() {
		if raw, ok := s.ReadField(id); ok {
			out[id] = sanitizer.PlainText(raw)
		}
	}
	return out
}

// ApplyImages points every image element at its resolved URL.
func (c *Controller) ApplyImages(s surface.Surface) {
	for _, tag := range s.Images() {
		if cfg, ok := c.images.Resolved(tag); ok && cfg.URL != "" {
			s.WriteImage(tag, cfg.URL)
		}
	}
}

// ExtractImages returns the background URL of every image element of s.
func (c *Controller) ExtractImages(s surface.Surface) map[string]string {
	out := make(map[string]string)
	for _, tag := range s.Images() {
		if url, ok := s.ReadImage(tag); ok && url != "" {
			out[tag] = url
		}
	}
	return out
}

// handle applies the editing rules:
//   - input mirrors the new text into the store
//   - every key marks the document dirty
//   - Enter without a modifier commits and leaves the field, no newline
//   - Escape leaves the field
//   - blur syncs the store but never saves
func (c *Controller) handle(s surface.Surface, ev surface.Event) bool {
	switch ev.Type {
	case surface.EventInput:
		c.fields.Set(ev.FieldID, sanitizer.PlainText(ev.Value))
		return false

	case surface.EventKey:
		c.fields.MarkDirty()
		switch {
		case ev.Key == "Enter" && !ev.Modifier:
			c.sync(s, ev.FieldID)
			s.Blur(ev.FieldID)
			return true
		case ev.Key == "Escape":
			s.Blur(ev.FieldID)
			return false
		default:
			c.sync(s, ev.FieldID)
			return false
		}

	case surface.EventBlur:
		c.sync(s, ev.FieldID)
		return false
	}
	return false
}

// sync copies the element text into the store. An unchanged value is not
// rewritten, so a blur alone leaves the store clean.
func (c *Controller) sync(s surface.Surface, fieldID string) {
	raw, ok := s.ReadField(fieldID)
	if !ok {
		return
	}
	text := sanitizer.PlainText(raw)
	current, ok := c.fields.Get(fieldID)
	if !ok {
		c.mu.Lock()
		current = c.baseline[s][fieldID]
		c.mu.Unlock()
	}
	if current == text {
		return
	}
	c.fields.Set(fieldID, text)
}
