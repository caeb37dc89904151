// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8000"`

	// Dataset source
	DatasetURL   string        `env:"ECB_HIST_URL" envDefault:"https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.xml"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`

	// On-disk dataset cache. The container mounts a volume here; when the
	// directory is absent or empty the dataset is re-downloaded on restart.
	CacheDir string `env:"CACHE_DIR" envDefault:"/data"`

	// Refresh schedule
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1h"`

	// Optional durable rate archive (PostgreSQL). Empty disables it.
	DatabaseURL string `env:"DATABASE_URL"`

	// Optional cache/rate-limit backend (Redis). Empty disables it.
	RedisURL string `env:"REDIS_URL"`

	// Argon2id hash of the admin API key. Empty disables admin endpoints.
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per client IP, requires Redis)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Response caching (requires Redis)
	ResponseCacheTTL time.Duration `env:"RESPONSE_CACHE_TTL" envDefault:"5m"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB; request bodies are
	// tiny JSON conversion queries)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether the Redis layer is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// ArchiveEnabled reports whether the PostgreSQL archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

// AdminEnabled reports whether the admin endpoints are configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminKeyHash != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
