package player

import (
	"context"
	"fmt"
	"log/slog"

	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
	courseRepo "mentorx/internal/domain/repositories/course"
	"mentorx/internal/domain/services"
	"mentorx/internal/sanitizer"
)

type playerService struct {
	courseRepo     courseRepo.CourseRepository
	completionRepo courseRepo.CompletionRepository
	authorizer     services.CourseAuthorizer
	logger         *slog.Logger
}

// NewService creates a new player service
func NewService(
	courseRepo courseRepo.CourseRepository,
	completionRepo courseRepo.CompletionRepository,
	authorizer services.CourseAuthorizer,
	logger *slog.Logger,
) services.PlayerService {
	return &playerService{
		courseRepo:     courseRepo,
		completionRepo: completionRepo,
		authorizer:     authorizer,
		logger:         logger,
	}
}

// GetPlayer returns the sanitised tree, completion state and the leaf to
// resume from.
func (s *playerService) GetPlayer(ctx context.Context, p models.Principal, courseID string) (*services.PlayerView, error) {
	c, err := s.authorizer.CanLearn(ctx, p, courseID)
	if err != nil {
		return nil, err
	}

	tree, err := s.courseRepo.GetTree(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course tree: %w", err)
	}
	s.sanitizeTree(tree)

	marks, err := s.completionRepo.ListByCourse(ctx, p.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	marked := make(map[string]bool, len(marks))
	for _, m := range marks {
		marked[m.ContentID] = true
	}

	// Marks for leaves deleted since completion are not counted
	completed := make([]string, 0, len(marks))
	resumeID := ""
	for _, leaf := range Leaves(tree) {
		if marked[leaf.ID] {
			completed = append(completed, leaf.ID)
			continue
		}
		if resumeID == "" {
			resumeID = leaf.ID
		}
	}
	// Fully completed courses resume at the first leaf
	cursor := NewCursor(tree, resumeID)

	s.logger.Debug("player loaded",
		"course_id", courseID,
		"user_id", p.UserID,
		"leaves", tree.LeafCount(),
		"completed", len(completed),
	)

	return &services.PlayerView{
		Course:    c,
		Tree:      tree,
		Completed: completed,
		Progress:  course.NewProgress(len(completed), tree.LeafCount()),
		Current:   cursor.Current(),
	}, nil
}

// Neighbors resolves previous/next around contentID.
func (s *playerService) Neighbors(ctx context.Context, p models.Principal, courseID, contentID string) (*services.Neighbors, error) {
	if _, err := s.authorizer.CanLearn(ctx, p, courseID); err != nil {
		return nil, err
	}

	tree, err := s.courseRepo.GetTree(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course tree: %w", err)
	}
	s.sanitizeTree(tree)

	cursor := NewCursor(tree, contentID)
	current := cursor.Current()
	if current == nil || current.ID != contentID {
		return &services.Neighbors{}, nil
	}

	n := &services.Neighbors{Current: current}
	if cursor.Retreat() {
		n.Previous = cursor.Current()
		cursor.Seek(contentID)
	}
	if cursor.Advance() {
		n.Next = cursor.Current()
	}
	return n, nil
}

// sanitizeTree cleans rich text payloads in place. Mentors author them in
// the dashboard, so they are untrusted by the time a mentee renders them.
func (s *playerService) sanitizeTree(tree *course.Tree) {
	for _, leaf := range Leaves(tree) {
		if leaf.Kind != course.KindRichText {
			continue
		}
		payload, err := leaf.RichText()
		if err != nil {
			s.logger.Warn("dropping undecodable rich text payload", "content_id", leaf.ID, "error", err)
			payload = &course.RichTextPayload{}
		}
		payload.HTML = sanitizer.UGC(payload.HTML)
		if err := leaf.SetPayload(payload); err != nil {
			s.logger.Warn("re-encode rich text payload", "content_id", leaf.ID, "error", err)
		}
	}
}
