package landing

import (
	"context"
	"time"

	"mentorx/internal/domain/models/landing"
)

// PageRepository defines data access for landing page records.
type PageRepository interface {
	// GetByDocumentID returns the record for a document.
	// Returns nil (and no error) when no record exists yet.
	GetByDocumentID(ctx context.Context, documentID string) (*landing.Page, error)

	// Upsert overwrites the whole record unconditionally (last writer wins)
	// and returns the updated_at it replaced, nil for a new record.
	Upsert(ctx context.Context, page *landing.Page) (previous *time.Time, err error)
}
