// Package seed inserts demo marketplace data for local development.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mentorx/internal/domain/models/course"
	"mentorx/internal/domain/models/landing"
	"mentorx/internal/repository/postgres"
)

// Fixed ids keep reseeding idempotent.
const (
	DemoCourseID = "11111111-1111-1111-1111-111111111111"

	moduleBasicsID   = "22222222-2222-2222-2222-222222222221"
	moduleProjectsID = "22222222-2222-2222-2222-222222222222"

	leafWelcomeID  = "33333333-3333-3333-3333-333333333331"
	leafTourID     = "33333333-3333-3333-3333-333333333332"
	leafWorkbookID = "33333333-3333-3333-3333-333333333333"
)

// DemoCourse is everything the seeder writes for one course.
type DemoCourse struct {
	Course  course.Course
	Tree    course.Tree
	Landing landing.Snapshot
}

// NewDemoCourse builds a published two-module course owned by mentorID.
// Leaves cover every content kind.
func NewDemoCourse(mentorID string) *DemoCourse {
	payload := func(v any) json.RawMessage {
		raw, _ := json.Marshal(v)
		return raw
	}

	return &DemoCourse{
		Course: course.Course{
			ID:          DemoCourseID,
			MentorID:    mentorID,
			Title:       "Practical Go for Backend Engineers",
			Description: "Six weeks of pairing on real services.",
			Published:   true,
		},
		Tree: course.Tree{
			CourseID: DemoCourseID,
			Modules: []course.Module{
				{
					ID:       moduleBasicsID,
					CourseID: DemoCourseID,
					Title:    "Getting started",
					Order:    0,
					Children: []course.Leaf{
						{
							ID:       leafWelcomeID,
							ParentID: moduleBasicsID,
							Title:    "Welcome",
							Order:    0,
							Kind:     course.KindRichText,
							Payload:  payload(course.RichTextPayload{HTML: "<p>Glad you're here. Start with the <strong>tour</strong>.</p>"}),
						},
						{
							ID:       leafTourID,
							ParentID: moduleBasicsID,
							Title:    "Codebase tour",
							Order:    1,
							Kind:     course.KindExternalVideo,
							Payload:  payload(course.VideoPayload{URL: "https://www.youtube.com/watch?v=YS4e4q9oBaU", Provider: "youtube"}),
						},
					},
				},
				{
					ID:       moduleProjectsID,
					CourseID: DemoCourseID,
					Title:    "First project",
					Order:    1,
					Children: []course.Leaf{
						{
							ID:       leafWorkbookID,
							ParentID: moduleProjectsID,
							Title:    "Workbook",
							Order:    0,
							Kind:     course.KindPDF,
							Payload:  payload(course.PDFPayload{URL: "https://example.com/workbook.pdf", Filename: "workbook.pdf"}),
						},
					},
				},
			},
		},
		Landing: landing.Snapshot{
			Layout: "classic",
			Fields: map[string]string{
				"hero_title":    "Ship production Go in six weeks",
				"hero_subtitle": "Weekly 1:1 pairing with a staff engineer",
				"mentor_name":   "Demo Mentor",
				"cta_label":     "Apply now",
			},
			Images: map[string]string{},
		},
	}
}

// CourseSeeder writes demo courses straight to the tables. The read-only
// course repository has no write path, so rows are inserted here.
type CourseSeeder struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCourseSeeder creates a new course seeder
func NewCourseSeeder(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *CourseSeeder {
	return &CourseSeeder{
		pool:   pool,
		tables: tables,
		logger: logger,
	}
}

// SeedCourse inserts the course, its tree and the given enrollments in one
// transaction. Existing rows with the same ids are left alone.
func (s *CourseSeeder) SeedCourse(ctx context.Context, demo *DemoCourse, enrolledUserIDs ...string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	c := demo.Course

	_, err = tx.Exec(ctx, `INSERT INTO `+s.tables.Courses+` (id, mentor_id, title, description, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.MentorID, c.Title, c.Description, c.Published, now)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}

	for _, m := range demo.Tree.Modules {
		if err := s.insertModule(ctx, tx, m, now); err != nil {
			return err
		}
	}

	for _, userID := range enrolledUserIDs {
		_, err = tx.Exec(ctx, `INSERT INTO `+s.tables.Enrollments+` (user_id, course_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, course_id) DO NOTHING`,
			userID, c.ID, now)
		if err != nil {
			return fmt.Errorf("insert enrollment for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}

	s.logger.Info("course seeded",
		"course_id", c.ID,
		"modules", len(demo.Tree.Modules),
		"leaves", demo.Tree.LeafCount(),
		"enrollments", len(enrolledUserIDs),
	)
	return nil
}

func (s *CourseSeeder) insertModule(ctx context.Context, tx pgx.Tx, m course.Module, now time.Time) error {
	_, err := tx.Exec(ctx, `INSERT INTO `+s.tables.Modules+` (id, course_id, title, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		m.ID, m.CourseID, m.Title, m.Order, now)
	if err != nil {
		return fmt.Errorf("insert module %s: %w", m.ID, err)
	}

	for _, l := range m.Children {
		_, err := tx.Exec(ctx, `INSERT INTO `+s.tables.Contents+` (id, module_id, title, sort_order, kind, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			l.ID, m.ID, l.Title, l.Order, string(l.Kind), []byte(l.Payload), now)
		if err != nil {
			return fmt.Errorf("insert content %s: %w", l.ID, err)
		}
	}
	return nil
}

// ClearData deletes every row, keeping the schema.
func (s *CourseSeeder) ClearData(ctx context.Context) error {
	for _, table := range s.tables.All() {
		if _, err := s.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
