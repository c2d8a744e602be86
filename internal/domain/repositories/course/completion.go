package course

import (
	"context"

	"mentorx/internal/domain/models/course"
)

// CompletionRepository defines data access for completion marks.
type CompletionRepository interface {
	// ListByCourse returns every mark a user holds in a course
	ListByCourse(ctx context.Context, userID, courseID string) ([]course.CompletionMark, error)

	// Insert writes one mark. Inserting an existing (user, content) pair
	// returns a *domain.ConflictError.
	Insert(ctx context.Context, mark *course.CompletionMark) error

	// Delete removes the mark for (user, content). Deleting a missing mark
	// is not an error.
	Delete(ctx context.Context, userID, contentID string) error
}
