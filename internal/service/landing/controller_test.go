package landing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "mentorx/internal/domain/models/landing"
	"mentorx/internal/surface"
	"mentorx/internal/surface/htmlsurface"
)

func newTestSurface(t *testing.T) *htmlsurface.Document {
	t.Helper()
	doc, err := htmlsurface.Parse(heroHTML)
	require.NoError(t, err)
	return doc
}

func newTestController() (*Controller, *FieldStore, *ImageStore) {
	fields := NewFieldStore()
	images := NewImageStore(map[string]models.ImageConfig{
		"hero": {URL: "https://cdn.example.com/default-hero.jpg"},
	})
	return NewController(fields, images), fields, images
}

func dispatch(t *testing.T, doc *htmlsurface.Document, ev surface.Event) bool {
	t.Helper()
	consumed, err := doc.Dispatch(ev)
	require.NoError(t, err)
	return consumed
}

func TestController_ActivateIsIdempotent(t *testing.T) {
	c, _, _ := newTestController()
	doc := newTestSurface(t)

	c.Activate(doc)
	c.Activate(doc)

	assert.Equal(t, 1, doc.Subscribers())
	assert.True(t, c.Active(doc))

	html, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, `contenteditable="true"`)
	assert.Contains(t, html, `data-editing="true"`)
}

func TestController_DeactivateRemovesAffordances(t *testing.T) {
	c, fields, _ := newTestController()
	doc := newTestSurface(t)

	c.Activate(doc)
	dispatch(t, doc, surface.Event{Type: surface.EventInput, FieldID: "title", Value: "Edited"})
	c.Deactivate(doc)

	assert.Equal(t, 0, doc.Subscribers())
	assert.False(t, c.Active(doc))

	html, err := doc.HTML()
	require.NoError(t, err)
	assert.NotContains(t, html, "contenteditable")
	assert.NotContains(t, html, "data-editing")

	// Store untouched by deactivate
	v, ok := fields.Get("title")
	assert.True(t, ok)
	assert.Equal(t, "Edited", v)

	// Events after deactivate are ignored
	assert.False(t, dispatch(t, doc, surface.Event{Type: surface.EventInput, FieldID: "title", Value: "Ignored"}))
	v, _ = fields.Get("title")
	assert.Equal(t, "Edited", v)
}

func TestController_EditingRules(t *testing.T) {
	t.Run("input mirrors plain text and marks dirty", func(t *testing.T) {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		dispatch(t, doc, surface.Event{Type: surface.EventInput, FieldID: "title", Value: "Hi <b>there</b>"})

		v, _ := fields.Get("title")
		assert.Equal(t, "Hi there", v)
		assert.True(t, fields.Dirty())
	})

	t.Run("enter commits and leaves the field", func(t *testing.T) {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		dispatch(t, doc, surface.Event{Type: surface.EventInput, FieldID: "title", Value: "New title"})
		consumed := dispatch(t, doc, surface.Event{Type: surface.EventKey, FieldID: "title", Key: "Enter"})

		assert.True(t, consumed)
		assert.Equal(t, "", doc.Focused())
		raw, _ := doc.ReadField("title")
		assert.NotContains(t, raw, "<br")
		v, _ := fields.Get("title")
		assert.Equal(t, "New title", v)
	})

	t.Run("enter with modifier inserts a newline", func(t *testing.T) {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		consumed := dispatch(t, doc, surface.Event{Type: surface.EventKey, FieldID: "tagline", Key: "Enter", Modifier: true})

		assert.False(t, consumed)
		assert.Equal(t, "tagline", doc.Focused())
		raw, _ := doc.ReadField("tagline")
		assert.Contains(t, raw, "<br")
		assert.True(t, fields.Dirty())
	})

	t.Run("escape leaves the field", func(t *testing.T) {
		c, _, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		consumed := dispatch(t, doc, surface.Event{Type: surface.EventKey, FieldID: "cta", Key: "Escape"})

		assert.False(t, consumed)
		assert.Equal(t, "", doc.Focused())
	})

	t.Run("every keystroke marks dirty", func(t *testing.T) {
		for _, key := range []string{"a", "Enter", "Escape", "Tab"} {
			c, fields, _ := newTestController()
			doc := newTestSurface(t)
			c.Activate(doc)

			dispatch(t, doc, surface.Event{Type: surface.EventKey, FieldID: "cta", Key: key})
			assert.True(t, fields.Dirty(), "key %s", key)

			// The value itself is untouched
			_, stored := fields.Get("cta")
			assert.False(t, stored, "key %s", key)
		}
	})

	t.Run("blur on an untouched field stays clean", func(t *testing.T) {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		dispatch(t, doc, surface.Event{Type: surface.EventBlur, FieldID: "tagline"})
		assert.False(t, fields.Dirty())
	})

	t.Run("blur keeps the dirty flag", func(t *testing.T) {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		c.Activate(doc)

		dispatch(t, doc, surface.Event{Type: surface.EventInput, FieldID: "title", Value: "x"})
		dispatch(t, doc, surface.Event{Type: surface.EventBlur, FieldID: "title"})
		assert.True(t, fields.Dirty())
	})
}

func TestController_ExtractAfterApplySnapshot(t *testing.T) {
	stores := []map[string]string{
		{"title": "Hello"},
		{"title": "Hello <b>World</b> & co", "tagline": "plain"},
		{"title": "<script>alert(1)</script>Safe", "cta": "Join <a href=\"javascript:x\">now</a>"},
		{"title": "if a<b then c"},
		{"title": "Use <b>bold</b> literally", "tagline": "AT&amp;T"},
		{"tagline": ""},
	}

	for _, store := range stores {
		c, fields, _ := newTestController()
		doc := newTestSurface(t)
		fields.LoadSnapshot(store)

		c.ApplySnapshot(doc)
		got := c.Extract(doc)

		for id, v := range store {
			assert.Equal(t, v, got[id], "field %s", id)
		}

		// Stored text never becomes live markup
		html, err := doc.HTML()
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.NotContains(t, html, "<b>")
	}
}

func TestController_ApplySnapshotKeepsTemplateDefaults(t *testing.T) {
	c, fields, _ := newTestController()
	doc := newTestSurface(t)
	fields.LoadSnapshot(map[string]string{"title": "Mine", "not_on_page": "x"})

	c.ApplySnapshot(doc)
	got := c.Extract(doc)

	assert.Equal(t, map[string]string{
		"title":   "Mine",
		"tagline": "Default tagline",
		"cta":     "Enroll",
	}, got)
}

func TestController_Images(t *testing.T) {
	c, _, images := newTestController()
	doc := newTestSurface(t)

	c.ApplyImages(doc)
	assert.Equal(t, map[string]string{"hero": "https://cdn.example.com/default-hero.jpg"}, c.ExtractImages(doc))

	images.Set("hero", "https://cdn.example.com/mine.png")
	c.ApplyImages(doc)
	url, ok := doc.ReadImage("hero")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/mine.png", url)
}
