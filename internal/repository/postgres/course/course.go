package course

import (
	"context"
	"fmt"
	"log/slog"

	"mentorx/internal/domain"
	models "mentorx/internal/domain/models/course"
	courseRepo "mentorx/internal/domain/repositories/course"
	"mentorx/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCourseRepository implements the CourseRepository interface
type PostgresCourseRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(config *postgres.RepositoryConfig) courseRepo.CourseRepository {
	return &PostgresCourseRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a course by ID
func (r *PostgresCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`
		SELECT id, mentor_id, title, description, published, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Courses)

	var c models.Course
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.MentorID,
		&c.Title,
		&c.Description,
		&c.Published,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	return &c, nil
}

// GetTree loads modules and leaves with two ordered queries and nests the
// leaves under their modules. Orphan leaves cannot exist (FK cascade) and
// are skipped if a concurrent delete races the second query.
func (r *PostgresCourseRepository) GetTree(ctx context.Context, courseID string) (*models.Tree, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	moduleQuery := fmt.Sprintf(`
		SELECT id, course_id, title, sort_order, created_at
		FROM %s
		WHERE course_id = $1
		ORDER BY sort_order ASC, created_at ASC, id ASC
	`, r.tables.Modules)

	rows, err := executor.Query(ctx, moduleQuery, courseID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	tree := &models.Tree{CourseID: courseID, Modules: []models.Module{}}
	index := make(map[string]int)
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Order, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		m.Children = []models.Leaf{}
		index[m.ID] = len(tree.Modules)
		tree.Modules = append(tree.Modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}

	if len(tree.Modules) == 0 {
		return tree, nil
	}

	leafQuery := fmt.Sprintf(`
		SELECT c.id, c.module_id, c.title, c.sort_order, c.kind, c.payload, c.created_at
		FROM %s c
		JOIN %s m ON m.id = c.module_id
		WHERE m.course_id = $1
		ORDER BY c.sort_order ASC, c.created_at ASC, c.id ASC
	`, r.tables.Contents, r.tables.Modules)

	leafRows, err := executor.Query(ctx, leafQuery, courseID)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer leafRows.Close()

	for leafRows.Next() {
		var l models.Leaf
		var payload []byte
		if err := leafRows.Scan(&l.ID, &l.ParentID, &l.Title, &l.Order, &l.Kind, &payload, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		l.Payload = payload

		i, ok := index[l.ParentID]
		if !ok {
			r.logger.Warn("content without module skipped", "content_id", l.ID, "module_id", l.ParentID)
			continue
		}
		tree.Modules[i].Children = append(tree.Modules[i].Children, l)
	}
	if err := leafRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contents: %w", err)
	}

	return tree, nil
}

// IsEnrolled reports whether a user is enrolled in a course
func (r *PostgresCourseRepository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND course_id = $2)
	`, r.tables.Enrollments)

	var enrolled bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, courseID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return enrolled, nil
}
