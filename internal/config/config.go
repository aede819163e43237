package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"webar-backend/internal/logutils"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Cloudinary
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Public viewer
	ViewBaseURL string

	// Bootstrap admin
	AdminEmail           string
	AdminDefaultPassword string

	// Optional public-view cache
	RedisAddr string

	DefaultProjectLimit int
}

func Load() (*Config, error) {
	// Load .env if present; in production the environment is already set.
	if err := godotenv.Load(); err != nil {
		logutils.Log.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		ViewBaseURL: getEnv("VIEW_BASE_URL", "https://webar.scanmee.io"),

		AdminEmail:           getEnv("ADMIN_EMAIL", "roberto@stringnet.pe"),
		AdminDefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		DefaultProjectLimit: getEnvAsInt("DEFAULT_PROJECT_LIMIT", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DefaultProjectLimit < 0 {
		return fmt.Errorf("DEFAULT_PROJECT_LIMIT must be >= 0")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logutils.Log.Warnf("invalid integer for %s, using default %d", key, defaultValue)
		return defaultValue
	}

	return value
}
