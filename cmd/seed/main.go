package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"mentorx/internal/auth"
	"mentorx/internal/config"
	"mentorx/internal/domain/models"
	"mentorx/internal/layouts"
	"mentorx/internal/repository/postgres"
	postgresLanding "mentorx/internal/repository/postgres/landing"
	"mentorx/internal/seed"
	serviceLanding "mentorx/internal/service/landing"

	"github.com/joho/godotenv"
)

const (
	demoMentorEmail = "mentor@example.com"
	demoMenteeEmail = "mentee@example.com"

	// Used when demo users aren't created through Supabase
	fallbackMentorID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa1"
	fallbackMenteeID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa2"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Delete all rows (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// Destructive operations never run against production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run -drop-tables or -clear-data in production")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	seeder := seed.NewCourseSeeder(pool, tables, logger)

	logger.Info("seed starting",
		"environment", cfg.Environment,
		"table_prefix", cfg.TablePrefix,
		"drop_tables", *dropTables,
		"schema_only", *schemaOnly,
		"clear_data", *clearData,
	)

	if *dropTables {
		if err := postgres.DropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		logger.Info("tables dropped")
	}

	if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	logger.Info("schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		if err := seeder.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("data cleared")
		return
	}

	mentorID, menteeID := fallbackMentorID, fallbackMenteeID
	if os.Getenv("SEED_CREATE_USERS") == "true" {
		mentorID, menteeID = createDemoUsers(ctx, cfg)
	}

	demo := seed.NewDemoCourse(mentorID)
	if err := seeder.SeedCourse(ctx, demo, menteeID); err != nil {
		log.Fatalf("Failed to seed course: %v", err)
	}

	// The landing page goes through the persistence adapter so seeded
	// records pass the same validation as saves.
	catalogue, err := layouts.Load()
	if err != nil {
		log.Fatalf("Failed to load layouts: %v", err)
	}
	adapter := serviceLanding.NewAdapter(
		postgresLanding.NewPageRepository(&postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}),
		postgres.NewTransactionManager(pool, logger),
		catalogue,
		logger,
	)
	if _, err := adapter.Save(ctx, demo.Course.ID, &demo.Landing); err != nil {
		log.Fatalf("Failed to seed landing page: %v", err)
	}

	logger.Info("seeding complete",
		"course_id", demo.Course.ID,
		"mentor_id", mentorID,
		"mentee_id", menteeID,
	)
}

// createDemoUsers recreates the demo mentor and mentee in Supabase Auth.
func createDemoUsers(ctx context.Context, cfg *config.Config) (string, string) {
	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		log.Fatalf("SEED_USER_PASSWORD is required with SEED_CREATE_USERS=true")
	}

	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

	ids := make([]string, 0, 2)
	for _, u := range []struct{ email, role string }{
		{demoMentorEmail, models.RoleMentor},
		{demoMenteeEmail, models.RoleMentee},
	} {
		if err := admin.DeleteUserByEmail(ctx, u.email); err != nil {
			log.Fatalf("Failed to remove existing %s: %v", u.email, err)
		}
		id, err := admin.CreateUser(ctx, u.email, password, u.role)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", u.email, err)
		}
		ids = append(ids, id)
	}
	return ids[0], ids[1]
}
