package landing

import (
	"time"
)

// Page is the persisted landing page record of one course. Fields maps
// field identifiers to plain text; Images maps image tags to background
// image URLs. Both are stored as JSONB and always written whole.
type Page struct {
	DocumentID string            `json:"document_id" db:"document_id"`
	Layout     string            `json:"layout" db:"layout"`
	Fields     map[string]string `json:"fields" db:"fields"`
	Images     map[string]string `json:"images" db:"images"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// Snapshot is a full copy of a document's field and image maps.
type Snapshot struct {
	Layout string            `json:"layout"`
	Fields map[string]string `json:"fields"`
	Images map[string]string `json:"images"`
}

// EmptySnapshot returns a snapshot with initialized, empty maps.
func EmptySnapshot(layout string) *Snapshot {
	return &Snapshot{
		Layout: layout,
		Fields: map[string]string{},
		Images: map[string]string{},
	}
}

// CloneMap copies a string map; nil becomes an empty map.
func CloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ImageConfig is the built-in default for one image tag of a layout.
type ImageConfig struct {
	URL      string `json:"url" yaml:"url"`
	Position string `json:"position,omitempty" yaml:"position"`
	Size     string `json:"size,omitempty" yaml:"size"`
}
