package auth

import (
	"context"
	"fmt"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
	courseRepo "mentorx/internal/domain/repositories/course"
	"mentorx/internal/domain/services"
)

// RoleBasedAuthorizer implements CourseAuthorizer from the caller's
// marketplace role, course ownership and enrollment.
type RoleBasedAuthorizer struct {
	courseRepo courseRepo.CourseRepository
}

var _ services.CourseAuthorizer = (*RoleBasedAuthorizer)(nil)

// NewRoleBasedAuthorizer creates a new role-based authorizer
func NewRoleBasedAuthorizer(courseRepo courseRepo.CourseRepository) *RoleBasedAuthorizer {
	return &RoleBasedAuthorizer{courseRepo: courseRepo}
}

// CanLearn allows the mentor, admins and enrolled users
func (a *RoleBasedAuthorizer) CanLearn(ctx context.Context, p models.Principal, courseID string) (*course.Course, error) {
	c, err := a.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course for auth: %w", err)
	}
	if p.IsAdmin() || c.MentorID == p.UserID {
		return c, nil
	}

	enrolled, err := a.courseRepo.IsEnrolled(ctx, p.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, fmt.Errorf("not enrolled in course %s: %w", courseID, domain.ErrForbidden)
	}
	return c, nil
}

// CanEdit allows the mentor and admins
func (a *RoleBasedAuthorizer) CanEdit(ctx context.Context, p models.Principal, courseID string) (*course.Course, error) {
	c, err := a.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course for auth: %w", err)
	}
	if p.IsAdmin() {
		return c, nil
	}
	if c.MentorID != p.UserID {
		return nil, fmt.Errorf("access denied to course %s: %w", courseID, domain.ErrForbidden)
	}
	return c, nil
}
