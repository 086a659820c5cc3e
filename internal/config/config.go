// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// SourceKind names the record source backing the engine.
type SourceKind string

const (
	SourceCSV    SourceKind = "csv"
	SourceSQLite SourceKind = "sqlite"
)

// Config holds application configuration
type Config struct {
	DataDir        string     // Base directory for data files (always absolute)
	Source         SourceKind // Record source: csv or sqlite
	DataFile       string     // CSV file with alternative records
	DatabasePath   string     // SQLite database path (sqlite source)
	Port           int        // HTTP port (server mode)
	LogLevel       string
	DevMode        bool
	Workers        int     // Batch runner fan-out, 0 = one per CPU
	Budget         float64 // Default budget; < 0 disables selection
	RiskWeight     float64 // Combined objective weights
	PriorityWeight float64
	RefreshCron    string // Cron spec for periodic re-evaluation, empty = disabled
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("CAPALLOC_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Source:         SourceKind(getEnv("CAPALLOC_SOURCE", string(SourceCSV))),
		DataFile:       getEnv("CAPALLOC_DATA_FILE", filepath.Join(absDataDir, "assets.csv")),
		DatabasePath:   getEnv("CAPALLOC_DB_PATH", filepath.Join(absDataDir, "assets.db")),
		Port:           getEnvAsInt("CAPALLOC_PORT", 8010),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		Workers:        getEnvAsInt("CAPALLOC_WORKERS", 0),
		Budget:         getEnvAsFloat("CAPALLOC_BUDGET", -1),
		RiskWeight:     getEnvAsFloat("CAPALLOC_RISK_WEIGHT", 0.6),
		PriorityWeight: getEnvAsFloat("CAPALLOC_PRIORITY_WEIGHT", 0.4),
		RefreshCron:    getEnv("CAPALLOC_REFRESH_CRON", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV, SourceSQLite:
	default:
		return fmt.Errorf("unknown record source %q (expected csv or sqlite)", c.Source)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Helper functions
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
