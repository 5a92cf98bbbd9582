package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Reddit    RedditConfig
	Providers ProvidersConfig

	// Engine
	Insight    InsightConfig
	Thresholds ThresholdsConfig
	Weights    WeightsConfig
	Store      StoreConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	SentryDSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// RedditConfig holds Reddit API credentials.
// Username/Password switch the client to the script-app password grant.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	BaseURL      string
	AuthURL      string
}

// ProvidersConfig holds price provider keys and daily call ceilings (0 = unlimited)
type ProvidersConfig struct {
	YahooBaseURL   string
	YahooDailyLimit int

	AlphaVantageKey        string
	AlphaVantageBaseURL    string
	AlphaVantageDailyLimit int

	PolygonKey        string
	PolygonBaseURL    string
	PolygonDailyLimit int

	QuoteCacheTTL time.Duration
	Workers       int
}

// InsightConfig holds refresh-cycle tuning
type InsightConfig struct {
	Forums              []string
	MaxForums           int
	PostsPerForum       int
	MaxPosts            int
	CommentsPerPost     int
	MinKarma            int
	MinTrendingMentions int
	MaxTrending         int
	MaxPriceTickers     int
	TopN                int
	ForumWorkers        int

	RefreshInterval    time.Duration
	DiscoveryInterval  time.Duration
	CycleTimeout       time.Duration
	MentionTimeout     time.Duration
	PriceTimeout       time.Duration
	QuotaResetInterval time.Duration

	SkipColdStart bool
	LexiconFile   string
}

// ThresholdsConfig holds stage classifier thresholds
type ThresholdsConfig struct {
	MinMentions       int
	PeakPct           float64
	RisingPct         float64
	EarlyWindowDays   int
	DroppingPct       float64
	SevereDropPct     float64
	NegativeSentiment float64
}

// WeightsConfig holds composite impact score weights (must sum to 1.0)
type WeightsConfig struct {
	Volume    float64
	Sentiment float64
	Momentum  float64
}

// StoreConfig selects the persisted key-value backend
type StoreConfig struct {
	Backend    string // memory, postgres, redis, sqlite
	SQLitePath string
}

// Store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
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

		// External APIs
		Reddit: RedditConfig{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			Username:     getEnv("REDDIT_USERNAME", ""),
			Password:     getEnv("REDDIT_PASSWORD", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "memestock:insight:v1.0"),
			BaseURL:      getEnv("REDDIT_BASE_URL", "https://oauth.reddit.com"),
			AuthURL:      getEnv("REDDIT_AUTH_URL", "https://www.reddit.com/api/v1/access_token"),
		},

		Providers: ProvidersConfig{
			YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			YahooDailyLimit: getEnvAsInt("YAHOO_DAILY_LIMIT", 0),

			AlphaVantageKey:        getEnv("ALPHA_VANTAGE_API_KEY", ""),
			AlphaVantageBaseURL:    getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
			AlphaVantageDailyLimit: getEnvAsInt("ALPHA_VANTAGE_DAILY_LIMIT", 500),

			PolygonKey:        getEnv("POLYGON_API_KEY", ""),
			PolygonBaseURL:    getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			PolygonDailyLimit: getEnvAsInt("POLYGON_DAILY_LIMIT", 5000),

			QuoteCacheTTL: getEnvAsDuration("QUOTE_CACHE_TTL", "24h"),
			Workers:       getEnvAsInt("PRICE_WORKERS", 4),
		},

		// Engine
		Insight: InsightConfig{
			Forums:              getEnvAsList("FORUMS", []string{"wallstreetbets", "stocks", "investing"}),
			MaxForums:           getEnvAsInt("MAX_FORUMS", 5),
			PostsPerForum:       getEnvAsInt("POSTS_PER_FORUM", 30),
			MaxPosts:            getEnvAsInt("MAX_POSTS", 100),
			CommentsPerPost:     getEnvAsInt("COMMENTS_PER_POST", 10),
			MinKarma:            getEnvAsInt("MIN_KARMA", 0),
			MinTrendingMentions: getEnvAsInt("MIN_TRENDING_MENTIONS", 2),
			MaxTrending:         getEnvAsInt("MAX_TRENDING", 15),
			MaxPriceTickers:     getEnvAsInt("MAX_PRICE_TICKERS", 10),
			TopN:                getEnvAsInt("TOP_N", 3),
			ForumWorkers:        getEnvAsInt("FORUM_WORKERS", 3),

			RefreshInterval:    getEnvAsDuration("REFRESH_INTERVAL", "5m"),
			DiscoveryInterval:  getEnvAsDuration("DISCOVERY_INTERVAL", "168h"),
			CycleTimeout:       getEnvAsDuration("CYCLE_TIMEOUT", "90s"),
			MentionTimeout:     getEnvAsDuration("MENTION_TIMEOUT", "60s"),
			PriceTimeout:       getEnvAsDuration("PRICE_TIMEOUT", "25s"),
			QuotaResetInterval: getEnvAsDuration("QUOTA_RESET_INTERVAL", "24h"),

			SkipColdStart: getEnvAsBool("SKIP_COLD_START", true),
			LexiconFile:   getEnv("LEXICON_FILE", ""),
		},

		Thresholds: ThresholdsConfig{
			MinMentions:       getEnvAsInt("STAGE_MIN_MENTIONS", 5),
			PeakPct:           getEnvAsFloat("STAGE_PEAK_PCT", 10.0),
			RisingPct:         getEnvAsFloat("STAGE_RISING_PCT", 5.0),
			EarlyWindowDays:   getEnvAsInt("STAGE_EARLY_WINDOW_DAYS", 14),
			DroppingPct:       getEnvAsFloat("STAGE_DROPPING_PCT", -5.0),
			SevereDropPct:     getEnvAsFloat("STAGE_SEVERE_DROP_PCT", -15.0),
			NegativeSentiment: getEnvAsFloat("STAGE_NEGATIVE_SENTIMENT", -0.1),
		},

		Weights: WeightsConfig{
			Volume:    getEnvAsFloat("WEIGHT_VOLUME", 0.5),
			Sentiment: getEnvAsFloat("WEIGHT_SENTIMENT", 0.3),
			Momentum:  getEnvAsFloat("WEIGHT_MOMENTUM", 0.2),
		},

		Store: StoreConfig{
			Backend:    getEnv("STORE_BACKEND", StoreSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "memestock.db"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
	}

	// Validate configuration
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

	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StoreSQLite:
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: memory, postgres, redis, sqlite")
	}

	if c.Store.Backend == StoreRedis && !c.Redis.Enabled {
		return fmt.Errorf("REDIS_ENABLED must be true for the redis store backend")
	}

	if len(c.Insight.Forums) == 0 {
		return fmt.Errorf("FORUMS must list at least one forum")
	}

	if c.Insight.RefreshInterval <= 0 || c.Insight.DiscoveryInterval <= 0 || c.Insight.QuotaResetInterval <= 0 {
		return fmt.Errorf("refresh, discovery and quota reset intervals must be positive")
	}

	if c.Insight.MentionTimeout >= c.Insight.CycleTimeout || c.Insight.PriceTimeout >= c.Insight.CycleTimeout {
		return fmt.Errorf("MENTION_TIMEOUT and PRICE_TIMEOUT must be smaller than CYCLE_TIMEOUT")
	}

	if err := c.Weights.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks that the weights form a convex combination
func (w WeightsConfig) Validate() error {
	if w.Volume < 0 || w.Sentiment < 0 || w.Momentum < 0 {
		return fmt.Errorf("score weights must not be negative")
	}
	sum := w.Volume + w.Sentiment + w.Momentum
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("score weights must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
