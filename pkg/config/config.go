package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/optionscout/optionscout/internal/engine"
)

// Config holds all configuration for the application. Environment variables
// are read here and nowhere else.
type Config struct {
	// Server
	Port            string
	Env             string // development, staging, production
	ShutdownTimeout time.Duration

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External services
	Massive MassiveConfig
	Movers  MoversConfig
	Insight InsightConfig

	// Screening
	Screener  ScreenerConfig
	Watchlist WatchlistConfig
	Scheduler SchedulerConfig

	// HTTP API surface
	API APIConfig

	// Digest archive
	Archive ArchiveConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MassiveConfig holds Massive market-data API configuration
type MassiveConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Limit      int // snapshot rows per request
	RatePerSec int // in-process limiter refill rate
	Burst      int
}

// MoversConfig holds the most-active underlyings page configuration
type MoversConfig struct {
	BaseURL string
	Timeout time.Duration
}

// InsightConfig holds explanation generator configuration
type InsightConfig struct {
	Provider string // "template" or "model"
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// ScreenerConfig holds screening defaults
type ScreenerConfig struct {
	TopN     int
	Side     string // call, put, all
	Profile  string // conservative, balanced, aggressive
	CacheTTL time.Duration
	Weights  *engine.WeightConfig // operator override for the default profile, nil when unset
}

// WatchlistConfig holds watchlist file configuration
type WatchlistConfig struct {
	Path string
	TopK int // symbols kept on a movers refresh
}

// SchedulerConfig holds cron expressions (with seconds field)
type SchedulerConfig struct {
	DigestCron    string
	WatchlistCron string
}

// APIConfig holds caller-facing gate configuration
type APIConfig struct {
	Keys       []string // accepted X-API-Key values; empty disables the gate
	RatePerMin int
}

// ArchiveConfig toggles digest persistence
type ArchiveConfig struct {
	Enabled       bool
	RetentionDays int // digests older than this are pruned; 0 keeps everything
}

// Load reads configuration from environment variables. Only this function
// calls os.Getenv.
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port:            getEnv("PORT", "8090"),
		Env:             getEnv("ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "10s"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External services
		Massive: MassiveConfig{
			APIKey:     getEnv("MASSIVE_API_KEY", ""),
			BaseURL:    getEnv("MASSIVE_BASE_URL", "https://api.massive.com"),
			Timeout:    getEnvAsDuration("MASSIVE_TIMEOUT", "8s"),
			Limit:      getEnvAsInt("MASSIVE_LIMIT", 250),
			RatePerSec: getEnvAsInt("MASSIVE_RATE_PER_SEC", 4),
			Burst:      getEnvAsInt("MASSIVE_BURST", 8),
		},

		Movers: MoversConfig{
			BaseURL: getEnv("MOVERS_BASE_URL", "https://finance.massive.com"),
			Timeout: getEnvAsDuration("MOVERS_TIMEOUT", "10s"),
		},

		Insight: InsightConfig{
			Provider: getEnv("INSIGHT_PROVIDER", "template"),
			APIKey:   getEnv("INSIGHT_API_KEY", ""),
			BaseURL:  getEnv("INSIGHT_BASE_URL", "https://api.openai.com/v1"),
			Model:    getEnv("INSIGHT_MODEL", "gpt-4o-mini"),
			Timeout:  getEnvAsDuration("INSIGHT_TIMEOUT", "20s"),
		},

		// Screening
		Screener: ScreenerConfig{
			TopN:     getEnvAsInt("SCREENER_TOP_N", 5),
			Side:     getEnv("SCREENER_SIDE", "call"),
			Profile:  getEnv("SCREENER_PROFILE", "balanced"),
			CacheTTL: getEnvAsDuration("SCREENER_CACHE_TTL", "5m"),
		},

		Watchlist: WatchlistConfig{
			Path: getEnv("WATCHLIST_PATH", "symbols.txt"),
			TopK: getEnvAsInt("WATCHLIST_TOP_K", 10),
		},

		Scheduler: SchedulerConfig{
			DigestCron:    getEnv("DIGEST_CRON", "0 */30 13-20 * * 1-5"),
			WatchlistCron: getEnv("WATCHLIST_CRON", "0 15 12 * * 1-5"),
		},

		// HTTP API surface
		API: APIConfig{
			Keys:       getEnvAsSlice("API_KEYS", nil),
			RatePerMin: getEnvAsInt("API_RATE_PER_MIN", 60),
		},

		Archive: ArchiveConfig{
			Enabled:       getEnvAsBool("ARCHIVE_ENABLED", true),
			RetentionDays: getEnvAsInt("ARCHIVE_RETENTION_DAYS", 90),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Malformed weight overrides must not fall back silently; a typo here
	// would change every default-profile screen.
	weights, err := parseWeights(os.Getenv("SCREENER_WEIGHTS"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.Screener.Weights = weights

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Massive.APIKey == "" {
		return fmt.Errorf("MASSIVE_API_KEY is required")
	}

	// The archive is the only database consumer
	if c.Archive.Enabled && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required unless ARCHIVE_ENABLED=false")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Screener.Side {
	case "call", "put", "all":
	default:
		return fmt.Errorf("SCREENER_SIDE must be one of: call, put, all")
	}

	switch c.Screener.Profile {
	case "conservative", "balanced", "aggressive":
	default:
		return fmt.Errorf("SCREENER_PROFILE must be one of: conservative, balanced, aggressive")
	}

	if c.Screener.TopN < 1 {
		return fmt.Errorf("SCREENER_TOP_N must be at least 1")
	}

	if c.Screener.Weights != nil && !c.Screener.Weights.ValidateWeights() {
		return fmt.Errorf("SCREENER_WEIGHTS must be non-negative and sum to 1.0")
	}

	switch c.Insight.Provider {
	case "template":
	case "model":
		if c.Insight.APIKey == "" {
			return fmt.Errorf("INSIGHT_API_KEY is required when INSIGHT_PROVIDER=model")
		}
	default:
		return fmt.Errorf("INSIGHT_PROVIDER must be one of: template, model")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// parseWeights parses a "volume,oi,iv,premium,delta" weight override.
func parseWeights(raw string) (*engine.WeightConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 5 {
		return nil, fmt.Errorf("SCREENER_WEIGHTS must be five comma-separated values: volume,oi,iv,premium,delta")
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("SCREENER_WEIGHTS: invalid value %q", strings.TrimSpace(p))
		}
		vals[i] = f
	}

	return &engine.WeightConfig{
		Volume:       vals[0],
		OpenInterest: vals[1],
		IV:           vals[2],
		Premium:      vals[3],
		Delta:        vals[4],
	}, nil
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
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
