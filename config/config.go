package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime parameters of the service.
type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	CleanupInterval    time.Duration
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables, optionally seeded from
// a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cleanupInterval := 10 * time.Minute
	if intervalStr := os.Getenv("CLEANUP_INTERVAL"); intervalStr != "" {
		cleanupInterval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CLEANUP_INTERVAL environment variable: %w", err)
		}
		if cleanupInterval <= 0 {
			return nil, fmt.Errorf("CLEANUP_INTERVAL must be positive, got %s", cleanupInterval)
		}
	}

	origins := []string{"*"}
	if originsStr := os.Getenv("CORS_ALLOWED_ORIGINS"); originsStr != "" {
		origins = strings.Split(originsStr, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	return &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		CleanupInterval:    cleanupInterval,
		CORSAllowedOrigins: origins,
	}, nil
}
