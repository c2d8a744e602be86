package landing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mentorx/internal/domain"
	models "mentorx/internal/domain/models/landing"
	landingRepo "mentorx/internal/domain/repositories/landing"
	"mentorx/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPageRepository implements the PageRepository interface
type PostgresPageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewPageRepository creates a new landing page repository
func NewPageRepository(config *postgres.RepositoryConfig) landingRepo.PageRepository {
	return &PostgresPageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByDocumentID retrieves the landing page record of a document.
// Returns nil, nil when the document has no record yet.
func (r *PostgresPageRepository) GetByDocumentID(ctx context.Context, documentID string) (*models.Page, error) {
	query := fmt.Sprintf(`
		SELECT document_id, layout, fields, images, updated_at
		FROM %s
		WHERE document_id = $1
	`, r.tables.LandingPages)

	var page models.Page
	var rawFields, rawImages []byte
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, documentID).Scan(
		&page.DocumentID,
		&page.Layout,
		&rawFields,
		&rawImages,
		&page.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get landing page: %w", err)
	}

	var fieldIssues, imageIssues []string
	page.Fields, fieldIssues = models.DecodeStringMap(rawFields)
	page.Images, imageIssues = models.DecodeStringMap(rawImages)
	if len(fieldIssues) > 0 || len(imageIssues) > 0 {
		r.logger.Warn("landing page record normalised",
			"document_id", documentID,
			"field_issues", fieldIssues,
			"image_issues", imageIssues,
		)
	}

	return &page, nil
}

// Upsert overwrites the landing page record in a single statement, so
// fields, images and layout are written together or not at all. The
// RETURNING subquery reads the statement snapshot, i.e. the replaced row.
func (r *PostgresPageRepository) Upsert(ctx context.Context, page *models.Page) (*time.Time, error) {
	fields, err := json.Marshal(nonNil(page.Fields))
	if err != nil {
		return nil, fmt.Errorf("%w: encode fields: %v", domain.ErrValidation, err)
	}
	images, err := json.Marshal(nonNil(page.Images))
	if err != nil {
		return nil, fmt.Errorf("%w: encode images: %v", domain.ErrValidation, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, layout, fields, images, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id) DO UPDATE SET
			layout = EXCLUDED.layout,
			fields = EXCLUDED.fields,
			images = EXCLUDED.images,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at, (SELECT prev.updated_at FROM %s prev WHERE prev.document_id = $1)
	`, r.tables.LandingPages, r.tables.LandingPages)

	var previous *time.Time
	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		page.DocumentID,
		page.Layout,
		fields,
		images,
		page.UpdatedAt,
	).Scan(&page.UpdatedAt, &previous)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return nil, fmt.Errorf("document %s: %w", page.DocumentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("upsert landing page: %w", err)
	}

	return previous, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
