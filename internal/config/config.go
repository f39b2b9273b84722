// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DataDir      string
	Port         int
	LogLevel     string
	DevMode      bool

	// Alpha Vantage company-name lookups (optional; lookups degrade to the
	// bare symbol without a key)
	AlphaVantageAPIKey string

	// S3-compatible backup target (optional; backups are skipped without a
	// bucket)
	BackupBucket    string
	BackupEndpoint  string
	BackupRegion    string
	BackupAccessKey string
	BackupSecretKey string
	BackupSchedule  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "./data/trades.db"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		Port:               getEnvAsInt("PORT", 5005),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		BackupBucket:       getEnv("BACKUP_BUCKET", ""),
		BackupEndpoint:     getEnv("BACKUP_ENDPOINT", ""),
		BackupRegion:       getEnv("BACKUP_REGION", "auto"),
		BackupAccessKey:    getEnv("BACKUP_ACCESS_KEY", ""),
		BackupSecretKey:    getEnv("BACKUP_SECRET_KEY", ""),
		BackupSchedule:     getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.BackupBucket != "" && (c.BackupAccessKey == "" || c.BackupSecretKey == "") {
		return fmt.Errorf("BACKUP_ACCESS_KEY and BACKUP_SECRET_KEY are required when BACKUP_BUCKET is set")
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
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
