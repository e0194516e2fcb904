package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	MaxUploadSize  int64

	// DatabasePath is the SQLite file backing the analysis history.
	DatabasePath string

	// Plate OCR; requires a Tesseract installation when enabled.
	OCREnabled  bool
	OCRLanguage string

	// Azure Blob archive of accepted uploads. Archiving is active only
	// when all three values are set.
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

// ArchiveEnabled reports whether uploads should be copied to blob
// storage.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != "" && c.AzureContainer != ""
}

func LoadFromEnv() (*Config, error) {
	// A .env file is a convenience for local runs; its absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		Port:             getEnvOrDefault("PORT", "8000"),
		RequestTimeout:   parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxUploadSize:    parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
		DatabasePath:     getEnvOrDefault("DATABASE_PATH", "analysis.db"),
		OCREnabled:       parseBoolOrDefault("OCR_ENABLED", false),
		OCRLanguage:      getEnvOrDefault("OCR_LANGUAGE", "eng"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:   os.Getenv("AZURE_CONTAINER"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.RequestTimeout)
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
