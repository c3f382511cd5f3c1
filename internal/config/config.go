package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Auth       AuthConfig
	Moderation ModerationConfig
	Feed       FeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr     string
	RateLimitDur time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Backend   string // "memory" or "redis"
	TTL       time.Duration
	RedisAddr string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ModerationConfig holds image moderation settings.
type ModerationConfig struct {
	Enabled          bool
	AWSRegion        string
	RejectConfidence float64
	Timeout          time.Duration
	PendingUploadTTL time.Duration
}

// FeedConfig holds the home feed composition tunables. All values have
// working defaults; environment overrides exist mainly so operators can
// rebalance the feed without a deploy.
type FeedConfig struct {
	// Bucket percentages. They do not have to sum to 100; the feed
	// composer renormalizes them before computing quotas.
	FollowedPercent         float64
	UltraNewPercent         float64
	PopularPercent          float64
	CreatorDiscoveryPercent float64
	BlogsPercent            float64
	RandomPercent           float64

	CandidateRecentDays       int
	CandidateTopLiked         int
	CandidateMax              int
	UltraNewWindowHours       int
	PopularityThreshold       int
	AllowViewedIfInsufficient bool
	DefaultLimit              int
	MaxLimit                  int
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	// Define flags with defaults
	httpAddr := flag.String("http", ":8080", "HTTP server address")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "Cache TTL for profile summaries")
	cacheBackend := flag.String("cache-backend", "memory", "Cache backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	rateLimitDur := flag.Duration("rate-limit", time.Second, "Minimum delay between auth attempts per client")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "fotoblog", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")

	flag.Parse()

	// Apply environment variable overrides
	applyEnvOverrides(httpAddr, cacheTTL, cacheBackend, redisAddr, rateLimitDur, logLevel, dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	cfg.Server = ServerConfig{
		HTTPAddr:     *httpAddr,
		RateLimitDur: *rateLimitDur,
	}

	cfg.Cache = CacheConfig{
		Backend:   *cacheBackend,
		TTL:       *cacheTTL,
		RedisAddr: *redisAddr,
	}

	cfg.Database = DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		Database: *dbName,
		SSLMode:  *dbSSLMode,
	}

	cfg.Logging = LoggingConfig{
		Level: *logLevel,
	}

	cfg.Auth = loadAuthConfig()
	cfg.Moderation = loadModerationConfig()
	cfg.Feed = loadFeedConfig()

	return cfg
}

func loadAuthConfig() AuthConfig {
	accessTTL := 15 * time.Minute
	if v := os.Getenv("AUTH_ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			accessTTL = d
		}
	}

	refreshTTL := 7 * 24 * time.Hour // 7 days
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			refreshTTL = d
		}
	}

	return AuthConfig{
		JWTSecret:       getEnvOrDefault("AUTH_JWT_SECRET", "change-me-in-production"),
		JWTIssuer:       getEnvOrDefault("AUTH_JWT_ISSUER", "fotoblog"),
		JWTAudience:     getEnvOrDefault("AUTH_JWT_AUDIENCE", "fotoblog-users"),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}

func loadModerationConfig() ModerationConfig {
	rejectConfidence := 70.0
	if v := os.Getenv("MODERATION_REJECT_CONFIDENCE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rejectConfidence = parsed
		}
	}

	timeout := 5 * time.Second
	if v := os.Getenv("MODERATION_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	pendingTTL := 10 * time.Minute
	if v := os.Getenv("MODERATION_PENDING_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			pendingTTL = parsed
		}
	}

	enabled := true
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("IMAGE_MODERATION_ENABLED"))); v == "false" || v == "0" {
		enabled = false
	}

	return ModerationConfig{
		Enabled:          enabled,
		AWSRegion:        os.Getenv("AWS_REGION"),
		RejectConfidence: rejectConfidence,
		Timeout:          timeout,
		PendingUploadTTL: pendingTTL,
	}
}

func loadFeedConfig() FeedConfig {
	cfg := FeedConfig{
		FollowedPercent:           35,
		UltraNewPercent:           15,
		PopularPercent:            15,
		CreatorDiscoveryPercent:   10,
		BlogsPercent:              10,
		RandomPercent:             15,
		CandidateRecentDays:       30,
		CandidateTopLiked:         200,
		CandidateMax:              500,
		UltraNewWindowHours:       48,
		PopularityThreshold:       10,
		AllowViewedIfInsufficient: true,
		DefaultLimit:              20,
		MaxLimit:                  500,
	}

	envFloat := func(key string, target *float64) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
				*target = parsed
			}
		}
	}
	envInt := func(key string, target *int) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				*target = parsed
			}
		}
	}

	envFloat("FEED_FOLLOWED_PERCENT", &cfg.FollowedPercent)
	envFloat("FEED_ULTRA_NEW_PERCENT", &cfg.UltraNewPercent)
	envFloat("FEED_POPULAR_PERCENT", &cfg.PopularPercent)
	envFloat("FEED_CREATOR_DISCOVERY_PERCENT", &cfg.CreatorDiscoveryPercent)
	envFloat("FEED_BLOGS_PERCENT", &cfg.BlogsPercent)
	envFloat("FEED_RANDOM_PERCENT", &cfg.RandomPercent)

	envInt("FEED_CANDIDATE_RECENT_DAYS", &cfg.CandidateRecentDays)
	envInt("FEED_CANDIDATE_TOP_LIKED", &cfg.CandidateTopLiked)
	envInt("FEED_CANDIDATE_MAX", &cfg.CandidateMax)
	envInt("FEED_ULTRA_NEW_WINDOW_HOURS", &cfg.UltraNewWindowHours)
	envInt("FEED_POPULARITY_THRESHOLD", &cfg.PopularityThreshold)
	envInt("FEED_DEFAULT_LIMIT", &cfg.DefaultLimit)
	envInt("FEED_MAX_LIMIT", &cfg.MaxLimit)

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("FEED_ALLOW_VIEWED_IF_INSUFFICIENT"))); v == "false" || v == "0" {
		cfg.AllowViewedIfInsufficient = false
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func applyEnvOverrides(
	httpAddr *string,
	cacheTTL *time.Duration,
	cacheBackend *string,
	redisAddr *string,
	rateLimitDur *time.Duration,
	logLevel *string,
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		*cacheBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*rateLimitDur = d
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
}
