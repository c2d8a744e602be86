// Package htmlsurface implements surface.Surface over a parsed HTML document.
// API clients drive it by sending the edit events their browser produced,
// which keeps the editing protocol testable without a browser.
package htmlsurface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"mentorx/internal/surface"
)

// Document is a goquery-backed headless surface. Safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	doc      *goquery.Document
	focused  string
	handlers map[int]surface.Handler
	nextID   int
}

var _ surface.Surface = (*Document)(nil)

// Parse builds a Document from rendered layout HTML.
func Parse(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse surface html: %w", err)
	}
	return &Document{
		doc:      doc,
		handlers: make(map[int]surface.Handler),
	}, nil
}

// Fields lists the text field identifiers present, in document order.
func (d *Document) Fields() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tags(surface.FieldAttr)
}

// Images lists the image tags present, in document order.
func (d *Document) Images() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tags(surface.ImageAttr)
}

// ReadField returns the inner HTML of the first element tagged id.
func (d *Document) ReadField(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.find(surface.FieldAttr, id)
	if sel.Length() == 0 {
		return "", false
	}
	html, err := sel.First().Html()
	if err != nil {
		return "", false
	}
	return html, true
}

// writeMarkup sanitises markup and sets it as the content of every element
// tagged id. Caller holds mu.
func (d *Document) writeMarkup(id, markup string) bool {
	sel := d.find(surface.FieldAttr, id)
	if sel.Length() == 0 {
		return false
	}
	sel.SetHtml(Sanitize(markup))
	return true
}

// WriteText sets text as the literal content of every element tagged id.
// Markup characters in text are escaped, not parsed. Duplicate tags in a
// template render the same text.
func (d *Document) WriteText(id, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.find(surface.FieldAttr, id)
	if sel.Length() == 0 {
		return false
	}
	sel.SetText(text)
	return true
}

// ReadImage returns the background image URL of the first element tagged
// tag (the src attribute for <img> elements).
func (d *Document) ReadImage(tag string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.find(surface.ImageAttr, tag)
	if sel.Length() == 0 {
		return "", false
	}
	first := sel.First()
	if goquery.NodeName(first) == "img" {
		src, ok := first.Attr("src")
		return src, ok
	}
	style, _ := first.Attr("style")
	return backgroundURL(style)
}

// WriteImage points every element tagged tag at url.
func (d *Document) WriteImage(tag, url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.find(surface.ImageAttr, tag)
	if sel.Length() == 0 {
		return false
	}
	sel.Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			s.SetAttr("src", url)
			return
		}
		style, _ := s.Attr("style")
		s.SetAttr("style", withBackgroundURL(style, url))
	})
	return true
}

// SetEditable adds or removes the contenteditable affordance on a field.
func (d *Document) SetEditable(id string, editable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := d.find(surface.FieldAttr, id)
	if editable {
		sel.SetAttr("contenteditable", "true")
		sel.SetAttr(surface.EditingAttr, "true")
		return
	}
	sel.RemoveAttr("contenteditable")
	sel.RemoveAttr(surface.EditingAttr)
	if d.focused == id {
		d.focused = ""
	}
}

// Blur moves focus out of id if it has it.
func (d *Document) Blur(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.focused == id {
		d.focused = ""
	}
}

// Focused returns the field currently holding edit focus, or "".
func (d *Document) Focused() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// Subscribe registers h for edit events.
func (d *Document) Subscribe(h surface.Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.handlers[id] = h

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, id)
	}
}

// Subscribers returns the number of registered handlers.
func (d *Document) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

// Dispatch replays one client-side edit event. Input events first mirror
// the new content into the document, as the browser already did. Events
// for fields that are not editable are ignored. Returns whether any
// handler consumed the event.
func (d *Document) Dispatch(ev surface.Event) (bool, error) {
	d.mu.Lock()
	sel := d.find(surface.FieldAttr, ev.FieldID)
	if sel.Length() == 0 {
		d.mu.Unlock()
		return false, fmt.Errorf("unknown field %q", ev.FieldID)
	}
	if _, editable := sel.Attr(surface.EditingAttr); !editable {
		d.mu.Unlock()
		return false, nil
	}

	switch ev.Type {
	case surface.EventInput:
		d.writeMarkup(ev.FieldID, ev.Value)
		d.focused = ev.FieldID
	case surface.EventKey:
		d.focused = ev.FieldID
	case surface.EventBlur:
		if d.focused == ev.FieldID {
			d.focused = ""
		}
	default:
		d.mu.Unlock()
		return false, fmt.Errorf("unknown event type %q", ev.Type)
	}

	handlers := make([]surface.Handler, 0, len(d.handlers))
	for _, h := range d.handlers {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()

	// Handlers call back into the surface, so they run unlocked.
	consumed := false
	for _, h := range handlers {
		if h(ev) {
			consumed = true
		}
	}

	if !consumed && ev.Type == surface.EventKey && ev.Key == "Enter" {
		d.mu.Lock()
		d.find(surface.FieldAttr, ev.FieldID).AppendHtml("<br>")
		d.mu.Unlock()
	}

	return consumed, nil
}

// HTML serialises the current document.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

// tags returns distinct attribute values in document order. Caller holds mu.
func (d *Document) tags(attr string) []string {
	seen := make(map[string]bool)
	out := []string{}
	d.doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	})
	return out
}

// find matches attr == value without building a selector from user input.
func (d *Document) find(attr, value string) *goquery.Selection {
	return d.doc.Find("[" + attr + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(attr)
		return v == value
	})
}
