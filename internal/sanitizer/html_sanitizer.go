// Package sanitizer cleans user-supplied markup before it is stored,
// rendered into a landing page or served to the course player.
package sanitizer

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer removes dangerous elements and attributes from markup.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

var (
	ugc    = NewHTMLSanitizer()
	strict = NewStrictHTMLSanitizer()
)

// NewHTMLSanitizer keeps common formatting (paragraphs, emphasis, lists,
// links, headings) and strips scripts, event handlers and javascript: URLs.
func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.UGCPolicy()}
}

// NewStrictHTMLSanitizer strips every tag.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns the cleaned markup.
func (s *HTMLSanitizer) Sanitize(markup string) string {
	return s.policy.Sanitize(markup)
}

// UGC cleans rich text with the shared user-content policy.
func UGC(markup string) string {
	return ugc.Sanitize(markup)
}

// PlainText strips all markup and decodes entities, so "a &amp; <b>b</b>"
// becomes "a & b".
func PlainText(markup string) string {
	return html.UnescapeString(strict.Sanitize(markup))
}
