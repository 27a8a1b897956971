package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by STATE_BACKEND.
const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName string
	API     APIConfig
	Breaker BreakerConfig
	State   StateConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Report  ReportConfig
	Session SessionConfig
	Context ContextConfig
	Logger  LoggerConfig
}

type APIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	MaxConns int
}

type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

type StateConfig struct {
	Backend  string
	BoltPath string
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
	// SessionTTL expires the stored session; zero keeps it until logout.
	SessionTTL time.Duration
}

type CatalogConfig struct {
	PageSize int
}

type ReportConfig struct {
	ScanPageSize int
	ConfirmTTL   time.Duration
}

type SessionConfig struct {
	ValidateInterval time.Duration
}

type ContextConfig struct {
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
	Output   string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults that work against a local API.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName: getString("APP_NAME", "stockdesk"),
		API: APIConfig{
			BaseURL:  strings.TrimRight(getString("API_BASE_URL", "http://localhost:5000/api"), "/"),
			Timeout:  getDuration("API_TIMEOUT", 10*time.Second),
			MaxConns: getInt("API_MAX_CONNS", 16),
		},
		Breaker: BreakerConfig{
			MaxRequests:  uint32(getInt("BREAKER_MAX_REQUESTS", 1)),
			Interval:     getDuration("BREAKER_INTERVAL", 60*time.Second),
			Timeout:      getDuration("BREAKER_TIMEOUT", 30*time.Second),
			MinRequests:  uint32(getInt("BREAKER_MIN_REQUESTS", 5)),
			FailureRatio: getFloat("BREAKER_FAILURE_RATIO", 0.6),
		},
		State: StateConfig{
			Backend:  strings.ToLower(getString("STATE_BACKEND", BackendBolt)),
			BoltPath: getString("BOLTDB_PATH", "./data/stockdesk.db"),
		},
		Redis: RedisConfig{
			URL:        getString("REDIS_URL", "redis://localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         getInt("REDIS_DB", 0),
			KeyPrefix:  getString("REDIS_KEY_PREFIX", "stockdesk:"),
			SessionTTL: getDuration("REDIS_SESSION_TTL", 0),
		},
		Catalog: CatalogConfig{
			PageSize: getInt("CATALOG_PAGE_SIZE", 10),
		},
		Report: ReportConfig{
			ScanPageSize: getInt("REPORT_SCAN_PAGE_SIZE", 1000),
			ConfirmTTL:   getDuration("REPORT_CONFIRM_TTL", 8*time.Second),
		},
		Session: SessionConfig{
			ValidateInterval: getDuration("SESSION_VALIDATE_INTERVAL", 5*time.Minute),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "warn"),
			Encoding: getString("LOG_ENCODING", "console"),
			Output:   getString("LOG_OUTPUT", "stderr"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.State.Backend {
	case BackendBolt, BackendRedis:
	default:
		return fmt.Errorf("unsupported STATE_BACKEND %q", c.State.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Report.ScanPageSize <= 0 {
		return fmt.Errorf("REPORT_SCAN_PAGE_SIZE must be positive, got %d", c.Report.ScanPageSize)
	}
	return nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
