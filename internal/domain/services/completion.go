package services

import (
	"context"

	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
)

// CompletionService records which leaves a user has completed.
type CompletionService interface {
	// Toggle flips the completion mark of one leaf and returns the new
	// state. Toggling a content id that is not in the course is a no-op.
	Toggle(ctx context.Context, p models.Principal, req *ToggleCompletionRequest) (*ToggleCompletionResult, error)

	// List returns the caller's marks in a course
	List(ctx context.Context, p models.Principal, courseID string) ([]course.CompletionMark, error)
}

// ToggleCompletionRequest identifies the leaf to toggle
type ToggleCompletionRequest struct {
	CourseID  string `json:"course_id"`
	ContentID string `json:"content_id"`
}

// ToggleCompletionResult is the state after a toggle
type ToggleCompletionResult struct {
	ContentID string          `json:"content_id"`
	Completed bool            `json:"completed"`
	Changed   bool            `json:"changed"` // false when the content id was unknown
	Progress  course.Progress `json:"progress"`
}
