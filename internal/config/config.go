package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// Scan defaults
	IndexSet         string // sp500, nasdaq, etf, both, all
	PoolLimit        int    // 0 means scan the full candidate pool
	TopN             int
	ScanWorkers      int
	MinHistoryPoints int
	SMAWindow        int
	UpsideThreshold  float64 // percent
	CacheTTL         time.Duration
	RescanSchedule   string // cron spec, empty disables the background rescan

	// News feed
	NewsDelay time.Duration // fixed pause between per-symbol news fetches

	// Optional third-party API keys, forwarded as request headers when set
	MarketDataAPIKey string
	NewsAPIKey       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/snapshots.db"),

		IndexSet:         getEnv("SCAN_INDEX_SET", "all"),
		PoolLimit:        getEnvAsInt("SCAN_POOL_LIMIT", 0),
		TopN:             getEnvAsInt("SCAN_TOP_N", 30),
		ScanWorkers:      getEnvAsInt("SCAN_WORKERS", 8),
		MinHistoryPoints: getEnvAsInt("SCAN_MIN_HISTORY_POINTS", 50),
		SMAWindow:        getEnvAsInt("SCAN_SMA_WINDOW", 50),
		UpsideThreshold:  getEnvAsFloat("SCAN_UPSIDE_THRESHOLD_PCT", 10.0),
		CacheTTL:         getEnvAsDuration("SCAN_CACHE_TTL", time.Hour),
		RescanSchedule:   getEnv("SCAN_RESCAN_SCHEDULE", "@hourly"),

		NewsDelay: getEnvAsDuration("NEWS_FETCH_DELAY", 200*time.Millisecond),

		MarketDataAPIKey: getEnv("MARKETDATA_API_KEY", ""),
		NewsAPIKey:       getEnv("NEWS_API_KEY", ""),
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

	if c.TopN <= 0 {
		return fmt.Errorf("SCAN_TOP_N must be positive, got %d", c.TopN)
	}

	if c.ScanWorkers <= 0 {
		return fmt.Errorf("SCAN_WORKERS must be positive, got %d", c.ScanWorkers)
	}

	if c.SMAWindow <= 0 {
		return fmt.Errorf("SCAN_SMA_WINDOW must be positive, got %d", c.SMAWindow)
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
