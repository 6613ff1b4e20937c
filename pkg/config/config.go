package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the pipeline
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (dashboard)
	Port string
	Env  string // development, staging, production

	// Pipeline artifacts
	Paths PathsConfig

	// Embedded store + optional Postgres mirror
	Database DatabaseConfig

	// Upstream provider
	Yahoo YahooConfig

	// Universe override (YAML), empty = built-in NIFTY 50 list
	UniverseFile string

	// Optional exports
	ExportParquet bool
	ExportXLSX    bool

	// Scheduler
	Schedule string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// PathsConfig holds the on-disk layout of every stage's artifacts
type PathsConfig struct {
	Root        string
	RawDir      string
	CleanedDir  string
	AnalysisDir string
	ChartsDir   string
}

// DatabaseConfig holds the SQLite path and the optional PostgreSQL mirror
type DatabaseConfig struct {
	Path string // SQLite file
	URL  string // DATABASE_URL, empty = no mirror

	// Connection Pool (mirror only)
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL  string
	Range    string
	Interval string
	Pause     time.Duration // fixed pause between symbols
	Timeout   time.Duration
	UserAgent string // empty keeps the client default
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	root := getEnv("DATA_DIR", ".")

	cfg := &Config{
		Port: getEnv("PORT", "8501"),
		Env:  getEnv("ENV", "development"),

		Paths: PathsConfig{
			Root:        root,
			RawDir:      resolve(root, getEnv("RAW_DIR", "data")),
			CleanedDir:  resolve(root, getEnv("CLEANED_DIR", "cleaned")),
			AnalysisDir: resolve(root, getEnv("ANALYSIS_DIR", "analysis_outputs")),
			ChartsDir:   resolve(root, getEnv("CHARTS_DIR", "charts")),
		},

		Database: DatabaseConfig{
			Path:            resolve(root, getEnv("DB_PATH", "nifty50.db")),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Range:     getEnv("FETCH_RANGE", "1y"),
			Interval:  getEnv("FETCH_INTERVAL", "1d"),
			Pause:     getEnvAsDuration("FETCH_PAUSE", "500ms"),
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			UserAgent: getEnv("HTTP_USER_AGENT", ""),
		},

		UniverseFile: getEnv("UNIVERSE_FILE", ""),

		ExportParquet: getEnvAsBool("EXPORT_PARQUET", false),
		ExportXLSX:    getEnvAsBool("EXPORT_XLSX", false),

		Schedule: getEnv("SCHEDULE", "0 30 18 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	dirs := map[string]string{
		"RAW_DIR":      c.Paths.RawDir,
		"CLEANED_DIR":  c.Paths.CleanedDir,
		"ANALYSIS_DIR": c.Paths.AnalysisDir,
		"CHARTS_DIR":   c.Paths.ChartsDir,
		"DB_PATH":      c.Database.Path,
	}
	for key, dir := range dirs {
		if dir == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	if c.Yahoo.Pause <= 0 {
		return fmt.Errorf("FETCH_PAUSE must be positive")
	}
	if c.Yahoo.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}

// MirrorEnabled reports whether the loader should also write to PostgreSQL
func (c *Config) MirrorEnabled() bool {
	return c.Database.URL != ""
}

// Helper functions (private, only used within this file)

// resolve joins relative paths onto the data root
func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

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
