package services

import (
	"context"

	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
)

// CourseAuthorizer checks what a caller may do with a course.
//
// Services call the authorizer before operating on a course, so handlers
// only identify the resource and never decide access themselves.
type CourseAuthorizer interface {
	// CanLearn checks access to the course player: the course mentor, an
	// admin or an enrolled user.
	CanLearn(ctx context.Context, p models.Principal, courseID string) (*course.Course, error)

	// CanEdit checks access to course authoring surfaces such as the
	// landing page: the course mentor or an admin.
	CanEdit(ctx context.Context, p models.Principal, courseID string) (*course.Course, error)
}
