package course

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies what a leaf carries.
type Kind string

const (
	KindRichText      Kind = "richText"
	KindExternalVideo Kind = "externalVideo"
	KindPDF           Kind = "pdf"
)

// Valid reports whether k is one of the known leaf kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRichText, KindExternalVideo, KindPDF:
		return true
	}
	return false
}

// Leaf is a single content item inside a module.
type Leaf struct {
	ID        string          `json:"id" db:"id"`
	ParentID  string          `json:"module_id" db:"module_id"`
	Title     string          `json:"title" db:"title"`
	Order     int             `json:"order" db:"sort_order"`
	Kind      Kind            `json:"kind" db:"kind"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// RichTextPayload is the payload of a richText leaf.
type RichTextPayload struct {
	HTML string `json:"html"`
}

// VideoPayload is the payload of an externalVideo leaf.
type VideoPayload struct {
	URL      string `json:"url"`
	Provider string `json:"provider"` // "youtube", "vimeo", ...
}

// PDFPayload is the payload of a pdf leaf.
type PDFPayload struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// RichText decodes the payload of a richText leaf.
func (l *Leaf) RichText() (*RichTextPayload, error) {
	if l.Kind != KindRichText {
		return nil, fmt.Errorf("leaf %s is %s, not %s", l.ID, l.Kind, KindRichText)
	}
	var p RichTextPayload
	if err := decodePayload(l.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode rich text payload: %w", err)
	}
	return &p, nil
}

// Video decodes the payload of an externalVideo leaf.
func (l *Leaf) Video() (*VideoPayload, error) {
	if l.Kind != KindExternalVideo {
		return nil, fmt.Errorf("leaf %s is %s, not %s", l.ID, l.Kind, KindExternalVideo)
	}
	var p VideoPayload
	if err := decodePayload(l.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode video payload: %w", err)
	}
	return &p, nil
}

// PDF decodes the payload of a pdf leaf.
func (l *Leaf) PDF() (*PDFPayload, error) {
	if l.Kind != KindPDF {
		return nil, fmt.Errorf("leaf %s is %s, not %s", l.ID, l.Kind, KindPDF)
	}
	var p PDFPayload
	if err := decodePayload(l.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode pdf payload: %w", err)
	}
	return &p, nil
}

// SetPayload encodes v as the leaf payload.
func (l *Leaf) SetPayload(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	l.Payload = raw
	return nil
}

func decodePayload(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
