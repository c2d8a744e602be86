package htmlsurface

import (
	"strings"

	"mentorx/internal/sanitizer"
)

// Sanitize cleans a value before it is written into the document.
func Sanitize(markup string) string {
	return sanitizer.UGC(markup)
}

// StripMarkup removes every tag and returns the decoded plain text.
func StripMarkup(markup string) string {
	return sanitizer.PlainText(markup)
}

// backgroundURL extracts the url(...) of a background-image declaration.
func backgroundURL(style string) (string, bool) {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "background-image") {
			continue
		}
		value = strings.TrimSpace(value)
		if !strings.HasPrefix(strings.ToLower(value), "url(") || !strings.HasSuffix(value, ")") {
			return "", false
		}
		inner := strings.TrimSpace(value[4 : len(value)-1])
		inner = strings.Trim(inner, `'"`)
		return inner, true
	}
	return "", false
}

// withBackgroundURL replaces (or appends) the background-image declaration.
func withBackgroundURL(style, url string) string {
	decls := []string{}
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(name), "background-image") {
			continue
		}
		decls = append(decls, decl)
	}
	// Quotes would terminate the url() token
	escaped := strings.NewReplacer(`'`, "%27", `"`, "%22").Replace(url)
	decls = append(decls, "background-image: url('"+escaped+"')")
	return strings.Join(decls, "; ")
}
