package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Demo credentials. Not a security boundary.
	CoachEmail      string
	CoachPassword   string
	StudentPassword string

	SessionSecret   string
	SessionDuration time.Duration

	LogLevel string

	SESRegion    string
	SESFromEmail string
	SESFromName  string

	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3UsePathStyle bool
	S3AccessKey    string
	S3SecretKey    string
	S3URLExpiry    time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./swimschool.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		CoachEmail:      getEnv("COACH_EMAIL", "coach@demo.swim"),
		CoachPassword:   getEnv("COACH_PASSWORD", "demo1234"),
		StudentPassword: getEnv("STUDENT_PASSWORD", "swim123"),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-session-secret"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SESRegion:       getEnv("SES_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "Swim School"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3UsePathStyle:  strings.EqualFold(getEnv("S3_USE_PATH_STYLE", "false"), "true"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3URLExpiry:     getDuration("S3_URL_EXPIRY", 15*time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
