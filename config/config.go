// Package config provides configuration management for the layout service.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Upstream UpstreamConfig
	Layout   LayoutConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	LogFormat      string // "json" (default) or "pretty"
	RequestTimeout time.Duration
}

// CacheConfig holds cache backend and TTL configuration.
type CacheConfig struct {
	RedisURL     string // empty = in-memory store
	OrderTTL     time.Duration
	DimensionTTL time.Duration
	FallbackTTL  time.Duration
}

// UpstreamConfig selects the submission data source. Exactly one of
// DatabaseURL (direct Postgres reads) or BaseURL (internal CRUD API) is used;
// DatabaseURL wins when both are set.
type UpstreamConfig struct {
	DatabaseURL string
	BaseURL     string
	MaxConns    int
}

// LayoutConfig holds the ordering algorithm tunables.
type LayoutConfig struct {
	WideThreshold float64
}

// MetricsConfig holds Prometheus exposure configuration.
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from .env and environment variables.
func Load() (*Config, error) {
	// Load .env if present (optional, won't fail if not found)
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("ORDER_CACHE_TTL", "1h")
	viper.SetDefault("DIMENSION_CACHE_TTL", "24h")
	viper.SetDefault("FALLBACK_TTL", "24h")
	viper.SetDefault("MASONRY_WIDE_THRESHOLD", 2.0)
	viper.SetDefault("UPSTREAM_MAX_CONNS", 10)
	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("METRICS_ENDPOINT", "/metrics")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           viper.GetString("PORT"),
			LogFormat:      viper.GetString("LOG_FORMAT"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Cache: CacheConfig{
			RedisURL:     viper.GetString("REDIS_URL"),
			OrderTTL:     viper.GetDuration("ORDER_CACHE_TTL"),
			DimensionTTL: viper.GetDuration("DIMENSION_CACHE_TTL"),
			FallbackTTL:  viper.GetDuration("FALLBACK_TTL"),
		},
		Upstream: UpstreamConfig{
			DatabaseURL: viper.GetString("DATABASE_URL"),
			BaseURL:     viper.GetString("UPSTREAM_URL"),
			MaxConns:    viper.GetInt("UPSTREAM_MAX_CONNS"),
		},
		Layout: LayoutConfig{
			WideThreshold: viper.GetFloat64("MASONRY_WIDE_THRESHOLD"),
		},
		Metrics: MetricsConfig{
			Enabled:  viper.GetBool("METRICS_ENABLED"),
			Endpoint: viper.GetString("METRICS_ENDPOINT"),
		},
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Upstream.DatabaseURL == "" && c.Upstream.BaseURL == "" {
		return fmt.Errorf("either DATABASE_URL or UPSTREAM_URL must be set")
	}
	if c.Layout.WideThreshold <= 0 {
		return fmt.Errorf("MASONRY_WIDE_THRESHOLD must be positive, got %f", c.Layout.WideThreshold)
	}
	return nil
}
