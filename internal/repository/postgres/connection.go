package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"mentorx/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Courses      string
	Modules      string
	Contents     string
	Enrollments  string
	Completions  string
	LandingPages string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Courses:      fmt.Sprintf("%scourses", prefix),
		Modules:      fmt.Sprintf("%scourse_modules", prefix),
		Contents:     fmt.Sprintf("%scourse_contents", prefix),
		Enrollments:  fmt.Sprintf("%scourse_enrollments", prefix),
		Completions:  fmt.Sprintf("%scontent_completions", prefix),
		LandingPages: fmt.Sprintf("%slanding_pages", prefix),
	}
}

// All returns every table, children before parents (safe drop order).
func (t *TableNames) All() []string {
	return []string{
		t.Completions,
		t.Enrollments,
		t.LandingPages,
		t.Contents,
		t.Modules,
		t.Courses,
	}
}

// CreateConnectionPool creates a pgx pool against the hosted Postgres.
//
// Supabase's transaction pooler (port 6543) does not support prepared
// statements. For that port the pool switches to QueryExecModeCacheDescribe,
// which keeps the extended protocol (needed to encode maps into JSONB) while
// only caching statement descriptions. An explicit default_query_exec_mode
// in the connection string takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx if any, otherwise the pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
