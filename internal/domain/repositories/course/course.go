package course

import (
	"context"

	"mentorx/internal/domain/models/course"
)

// CourseRepository defines read access to courses and their content trees.
// Course/module/content CRUD lives in the hosted dashboard; the backend only
// reads what the player and the landing editor need.
type CourseRepository interface {
	// GetByID retrieves a course by ID
	GetByID(ctx context.Context, id string) (*course.Course, error)

	// GetTree loads all modules and leaves of a course, each level sorted by
	// order ascending (ties broken by creation time, then id)
	GetTree(ctx context.Context, courseID string) (*course.Tree, error)

	// IsEnrolled reports whether a user is enrolled in a course
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}
