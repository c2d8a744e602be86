package completion

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
	courseRepo "mentorx/internal/domain/repositories/course"
	"mentorx/internal/domain/services"
	"mentorx/internal/events"
	"mentorx/internal/service/player"
)

type completionService struct {
	courseRepo     courseRepo.CourseRepository
	completionRepo courseRepo.CompletionRepository
	authorizer     services.CourseAuthorizer
	publisher      events.Publisher
	logger         *slog.Logger
}

// NewService creates a new completion service
func NewService(
	courseRepo courseRepo.CourseRepository,
	completionRepo courseRepo.CompletionRepository,
	authorizer services.CourseAuthorizer,
	publisher events.Publisher,
	logger *slog.Logger,
) services.CompletionService {
	return &completionService{
		courseRepo:     courseRepo,
		completionRepo: completionRepo,
		authorizer:     authorizer,
		publisher:      publisher,
		logger:         logger,
	}
}

// Toggle flips one completion mark and publishes the change.
func (s *completionService) Toggle(ctx context.Context, p models.Principal, req *services.ToggleCompletionRequest) (*services.ToggleCompletionResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.CourseID, validation.Required),
		validation.Field(&req.ContentID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanLearn(ctx, p, req.CourseID); err != nil {
		return nil, err
	}

	tree, err := s.courseRepo.GetTree(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("load course tree: %w", err)
	}

	ledger := NewLedger(s.completionRepo)
	if err := ledger.Load(ctx, p.UserID, req.CourseID); err != nil {
		return nil, err
	}
	leafIDs := contentIDs(tree)

	pos, ok := player.Locate(tree, req.ContentID)
	if !ok {
		s.logger.Debug("toggle for content outside course ignored",
			"course_id", req.CourseID,
			"content_id", req.ContentID,
		)
		return &services.ToggleCompletionResult{
			ContentID: req.ContentID,
			Progress:  course.NewProgress(ledger.Count(p.UserID, leafIDs), len(leafIDs)),
		}, nil
	}
	moduleID := tree.Modules[pos.Module].ID

	completed, err := ledger.Toggle(ctx, p.UserID, req.CourseID, moduleID, req.ContentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("completion toggled",
		"user_id", p.UserID,
		"course_id", req.CourseID,
		"content_id", req.ContentID,
		"completed", completed,
	)
	events.PublishQuietly(ctx, s.publisher, s.logger, events.CompletionToggled, events.CompletionToggledData{
		UserID:    p.UserID,
		CourseID:  req.CourseID,
		ModuleID:  moduleID,
		ContentID: req.ContentID,
		Completed: completed,
	})

	return &services.ToggleCompletionResult{
		ContentID: req.ContentID,
		Completed: completed,
		Changed:   true,
		Progress:  course.NewProgress(ledger.Count(p.UserID, leafIDs), len(leafIDs)),
	}, nil
}

// List returns the caller's marks in a course
func (s *completionService) List(ctx context.Context, p models.Principal, courseID string) ([]course.CompletionMark, error) {
	if _, err := s.authorizer.CanLearn(ctx, p, courseID); err != nil {
		return nil, err
	}

	ledger := NewLedger(s.completionRepo)
	if err := ledger.Load(ctx, p.UserID, courseID); err != nil {
		return nil, err
	}
	return ledger.Marks(p.UserID, courseID), nil
}

func contentIDs(tree *course.Tree) []string {
	leaves := player.Leaves(tree)
	ids := make([]string, len(leaves))
	for i, l := range leaves {
		ids[i] = l.ID
	}
	return ids
}
