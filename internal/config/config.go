// Package config reads settings for the invoicer client and the billing
// server from the environment. An optional .env file in the working directory
// is loaded first; variables already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/invoicer/pkg/logging"
)

// devSecret signs tokens when JWT_SECRET is unset. Never use it in production.
const devSecret = "invoicer-dev-secret"

// Client configures the terminal client.
type Client struct {
	// ServerURL is the API root, e.g. http://localhost:8080/api.
	ServerURL string

	// SessionDB is the SQLite file holding the saved session.
	SessionDB string

	Timeout  time.Duration
	LogLevel slog.Level
}

// Server configures the billing server.
type Server struct {
	Port      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  slog.Level

	// DevSecret is true when JWTSecret fell back to the built-in default.
	DevSecret bool
}

// LoadEnv loads the .env file at path, if present.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// LoadClient reads the client configuration.
func LoadClient() (*Client, error) {
	if err := LoadEnv(".env"); err != nil {
		return nil, err
	}

	timeout, err := getDuration("INVOICER_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	sessionDB := os.Getenv("INVOICER_SESSION_DB")
	if sessionDB == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		sessionDB = filepath.Join(home, ".invoicer", "session.db")
	}

	return &Client{
		ServerURL: getEnv("INVOICER_SERVER", "http://localhost:8080/api"),
		SessionDB: sessionDB,
		Timeout:   timeout,
		LogLevel:  logging.ParseLevel(getEnv("LOG_LEVEL", "warn")),
	}, nil
}

// LoadServer reads the server configuration.
func LoadServer() (*Server, error) {
	if err := LoadEnv(".env"); err != nil {
		return nil, err
	}

	ttl, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	cfg := &Server{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "./data/invoicer.db"),
		JWTSecret: secret,
		TokenTTL:  ttl,
		LogLevel:  logging.ParseLevel(os.Getenv("LOG_LEVEL")),
	}
	if secret == "" {
		cfg.JWTSecret = devSecret
		cfg.DevSecret = true
	}
	return cfg, nil
}
