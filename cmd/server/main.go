package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mentorx/internal/auth"
	"mentorx/internal/config"
	"mentorx/internal/events"
	"mentorx/internal/handler"
	"mentorx/internal/layouts"
	"mentorx/internal/middleware"
	"mentorx/internal/repository/postgres"
	postgresCourse "mentorx/internal/repository/postgres/course"
	postgresLanding "mentorx/internal/repository/postgres/landing"
	serviceAuth "mentorx/internal/service/auth"
	serviceCompletion "mentorx/internal/service/completion"
	serviceLanding "mentorx/internal/service/landing"
	servicePlayer "mentorx/internal/service/player"
	"mentorx/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	catalogue, err := layouts.Load()
	if err != nil {
		log.Fatalf("Failed to load layout catalogue: %v", err)
	}
	logger.Info("layouts loaded", "layouts", catalogue.Names(), "default", catalogue.Default().Name)

	// Change events go to Redis when configured
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisAddr != "" {
		redisPublisher, err := events.NewRedisPublisher(cfg.RedisAddr, cfg.RedisChannel, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		publisher = redisPublisher
		logger.Info("event publishing enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}
	defer publisher.Close()

	objectStorage := storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket, logger)

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	courseRepo := postgresCourse.NewCourseRepository(repoConfig)
	completionRepo := postgresCourse.NewCompletionRepository(repoConfig)
	pageRepo := postgresLanding.NewPageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	authorizer := serviceAuth.NewRoleBasedAuthorizer(courseRepo)
	playerService := servicePlayer.NewService(courseRepo, completionRepo, authorizer, logger)
	completionService := serviceCompletion.NewService(courseRepo, completionRepo, authorizer, publisher, logger)

	sessions := serviceLanding.NewSessionManager(cfg.EditorSessionIdle, logger)
	defer sessions.CloseAll()
	adapter := serviceLanding.NewAdapter(pageRepo, txManager, catalogue, logger)
	landingService := serviceLanding.NewService(
		adapter,
		sessions,
		catalogue,
		authorizer,
		courseRepo,
		objectStorage,
		publisher,
		logger,
	)

	// Handlers
	healthHandler := handler.NewHealthHandler(pool, logger)
	layoutHandler := handler.NewLayoutHandler(catalogue)
	playerHandler := handler.NewPlayerHandler(playerService, logger)
	completionHandler := handler.NewCompletionHandler(completionService, logger)
	landingHandler := handler.NewLandingHandler(landingService, logger)
	sessionHandler := handler.NewEditorSessionHandler(landingService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.HandleFunc("GET /pages/{id}", landingHandler.Render)

	mux.HandleFunc("GET /api/layouts", layoutHandler.ListLayouts)

	// Course player
	mux.HandleFunc("GET /api/courses/{id}/player", playerHandler.GetPlayer)
	mux.HandleFunc("GET /api/courses/{id}/contents/{contentId}/neighbors", playerHandler.GetNeighbors)
	mux.HandleFunc("POST /api/courses/{id}/contents/{contentId}/completion", completionHandler.Toggle)
	mux.HandleFunc("GET /api/courses/{id}/completions", completionHandler.List)

	// Landing pages
	mux.HandleFunc("GET /api/landing-pages/{id}", landingHandler.Load)
	mux.HandleFunc("PUT /api/landing-pages/{id}", landingHandler.Save)
	mux.HandleFunc("POST /api/landing-pages/{id}/sessions", sessionHandler.Open)

	// Editor sessions
	mux.HandleFunc("GET /api/editor-sessions/{sid}", sessionHandler.Get)
	mux.HandleFunc("DELETE /api/editor-sessions/{sid}", sessionHandler.Close)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/activate", sessionHandler.Activate)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/events", sessionHandler.ApplyEvents)
	mux.HandleFunc("PATCH /api/editor-sessions/{sid}/fields", sessionHandler.SetFields)
	mux.HandleFunc("PATCH /api/editor-sessions/{sid}/images", sessionHandler.SetImages)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/images/{tag}", sessionHandler.UploadImage)
	mux.HandleFunc("PATCH /api/editor-sessions/{sid}/layout", sessionHandler.SetLayout)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/extract", sessionHandler.Extract)
	mux.HandleFunc("GET /api/editor-sessions/{sid}/render", sessionHandler.Render)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/save", sessionHandler.Save)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/discard", sessionHandler.Discard)
	mux.HandleFunc("POST /api/editor-sessions/{sid}/leave", sessionHandler.Leave)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLog → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(jwtVerifier, logger)(h)
	h = middleware.RequestLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down", "open_sessions", sessions.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
