package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// Landing page images
	StorageBucket string
	// Change events (empty RedisAddr disables publishing)
	RedisAddr    string
	RedisChannel string
	// Editor sessions idle longer than this are dropped on next access
	EditorSessionIdle time.Duration
	// Optional file logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		SupabaseURL:       supabaseURL,
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:     getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:   jwksURL,
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:       tablePrefix,
		StorageBucket:     getEnv("STORAGE_BUCKET", "landing-images"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisChannel:      getEnv("REDIS_CHANNEL", "mentorx-events"),
		EditorSessionIdle: getDuration("EDITOR_SESSION_IDLE", 30*time.Minute),
		LogDir:            getEnv("LOG_DIR", ""),
		LogMaxFiles:       getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
