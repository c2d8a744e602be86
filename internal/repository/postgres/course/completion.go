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

// PostgresCompletionRepository implements the CompletionRepository interface
type PostgresCompletionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(config *postgres.RepositoryConfig) courseRepo.CompletionRepository {
	return &PostgresCompletionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListByCourse returns every mark a user holds in a course
func (r *PostgresCompletionRepository) ListByCourse(ctx context.Context, userID, courseID string) ([]models.CompletionMark, error) {
	query := fmt.Sprintf(`
		SELECT user_id, course_id, module_id, content_id, completed_at
		FROM %s
		WHERE user_id = $1 AND course_id = $2
		ORDER BY completed_at ASC
	`, r.tables.Completions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	marks := []models.CompletionMark{}
	for rows.Next() {
		var m models.CompletionMark
		if err := rows.Scan(&m.UserID, &m.CourseID, &m.ModuleID, &m.ContentID, &m.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}

	return marks, nil
}

// Insert writes one completion mark
func (r *PostgresCompletionRepository) Insert(ctx context.Context, mark *models.CompletionMark) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, course_id, module_id, content_id, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING completed_at
	`, r.tables.Completions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		mark.UserID,
		mark.CourseID,
		mark.ModuleID,
		mark.ContentID,
		mark.CompletedAt,
	).Scan(&mark.CompletedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("content %s already completed", mark.ContentID),
				ResourceType: "completion",
				ResourceID:   mark.ContentID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("content %s: %w", mark.ContentID, domain.ErrNotFound)
		}
		return fmt.Errorf("insert completion: %w", err)
	}

	return nil
}

// Delete removes the mark for (user, content)
func (r *PostgresCompletionRepository) Delete(ctx context.Context, userID, contentID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND content_id = $2
	`, r.tables.Completions)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, userID, contentID)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug("completion already absent", "user_id", userID, "content_id", contentID)
	}

	return nil
}
