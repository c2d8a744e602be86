package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunSchema creates all tables and indexes if they don't exist.
func RunSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Courses + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			mentor_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Modules + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			course_id UUID NOT NULL REFERENCES ` + tables.Courses + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Contents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			module_id UUID NOT NULL REFERENCES ` + tables.Modules + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			kind TEXT NOT NULL CHECK (kind IN ('richText', 'externalVideo', 'pdf')),
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Enrollments + ` (
			user_id UUID NOT NULL,
			course_id UUID NOT NULL REFERENCES ` + tables.Courses + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, course_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Completions + ` (
			user_id UUID NOT NULL,
			course_id UUID NOT NULL REFERENCES ` + tables.Courses + `(id) ON DELETE CASCADE,
			module_id UUID NOT NULL REFERENCES ` + tables.Modules + `(id) ON DELETE CASCADE,
			content_id UUID NOT NULL REFERENCES ` + tables.Contents + `(id) ON DELETE CASCADE,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, content_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.LandingPages + ` (
			document_id UUID PRIMARY KEY REFERENCES ` + tables.Courses + `(id) ON DELETE CASCADE,
			layout TEXT NOT NULL,
			fields JSONB NOT NULL DEFAULT '{}'::jsonb,
			images JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `modules_course ON ` + tables.Modules + `(course_id, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `contents_module ON ` + tables.Contents + `(module_id, sort_order)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `completions_user_course ON ` + tables.Completions + `(user_id, course_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops every table, children first.
func DropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
