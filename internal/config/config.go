package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the API needs to talk to its backing services.
type Config struct {
	Port        string
	WSPort      string
	AppEnv      string
	LogLevel    string
	JWTSecret   string
	DatabaseURL string
	RedisURL    string

	RunMigrations  bool
	MigrationsPath string

	Supabase SupabaseConfig
	Mapbox   MapboxConfig
}

// SupabaseConfig configures the Supabase Storage gateway.
type SupabaseConfig struct {
	ProjectURL   string
	ServiceKey   string
	AvatarBucket string
	ItemBucket   string
}

// MapboxConfig configures the Mapbox geocoding gateway.
type MapboxConfig struct {
	AccessToken string
	BaseURL     string
}

// LoadConfig reads the environment (optionally from .env) into a Config.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("PGUSER", "truekeo"),
			getEnv("PGPASSWORD", "truekeo"),
			getEnv("PGHOST", "localhost"),
			getEnv("PGPORT", "5432"),
			getEnv("PGDATABASE", "truekeo"),
			getEnv("PGSSLMODE", "disable"))
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		WSPort:         getEnv("WS_PORT", "8081"),
		AppEnv:         getEnv("APP_ENV", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DatabaseURL:    dbURL,
		RedisURL:       getEnv("REDIS_URL", ""),
		RunMigrations:  getEnv("RUN_MIGRATIONS", "false") == "true",
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		Supabase: SupabaseConfig{
			ProjectURL:   getEnv("SUPABASE_URL", ""),
			ServiceKey:   getEnv("SUPABASE_SERVICE_KEY", ""),
			AvatarBucket: getEnv("SUPABASE_AVATAR_BUCKET", "avatars"),
			ItemBucket:   getEnv("SUPABASE_ITEM_BUCKET", "item-photos"),
		},
		Mapbox: MapboxConfig{
			AccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
			BaseURL:     getEnv("MAPBOX_BASE_URL", "https://api.mapbox.com"),
		},
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return cfg
}

// getEnv returns an environment variable or the given default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
