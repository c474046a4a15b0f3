// Package config loads client SDK settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends for the persisted session slots.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds every tunable of the client SDK.
type Config struct {
	// Remote access
	APIBaseURL        string        `mapstructure:"OLYMPUS_API_BASE_URL"`
	RequestTimeout    time.Duration `mapstructure:"OLYMPUS_REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `mapstructure:"OLYMPUS_REQUESTS_PER_SECOND"`
	RequestBurst      int           `mapstructure:"OLYMPUS_REQUEST_BURST"`

	// Local store
	StorageBackend string `mapstructure:"OLYMPUS_STORAGE_BACKEND"`
	SQLitePath     string `mapstructure:"OLYMPUS_SQLITE_PATH"`
	RedisAddr      string `mapstructure:"OLYMPUS_REDIS_ADDR"`
	RedisPassword  string `mapstructure:"OLYMPUS_REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"OLYMPUS_REDIS_DB"`

	// Session
	RefreshLeeway     time.Duration `mapstructure:"OLYMPUS_REFRESH_LEEWAY"`
	BackgroundRefresh bool          `mapstructure:"OLYMPUS_BACKGROUND_REFRESH"`
	RetryUnauthorized bool          `mapstructure:"OLYMPUS_RETRY_UNAUTHORIZED"`

	// Logging
	LogLevel  string `mapstructure:"OLYMPUS_LOG_LEVEL"`
	LogFormat string `mapstructure:"OLYMPUS_LOG_FORMAT"`
}

// Load reads configuration from the environment. A .env file is honored
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("OLYMPUS_API_BASE_URL", "http://localhost:8080/api/v1")
	v.SetDefault("OLYMPUS_REQUEST_TIMEOUT", "30s")
	v.SetDefault("OLYMPUS_REQUESTS_PER_SECOND", 0.0)
	v.SetDefault("OLYMPUS_REQUEST_BURST", 1)
	v.SetDefault("OLYMPUS_STORAGE_BACKEND", StorageSQLite)
	v.SetDefault("OLYMPUS_SQLITE_PATH", "olympus.db")
	v.SetDefault("OLYMPUS_REDIS_ADDR", "localhost:6379")
	v.SetDefault("OLYMPUS_REDIS_PASSWORD", "")
	v.SetDefault("OLYMPUS_REDIS_DB", 0)
	v.SetDefault("OLYMPUS_REFRESH_LEEWAY", "2m")
	v.SetDefault("OLYMPUS_BACKGROUND_REFRESH", true)
	v.SetDefault("OLYMPUS_RETRY_UNAUTHORIZED", true)
	v.SetDefault("OLYMPUS_LOG_LEVEL", "info")
	v.SetDefault("OLYMPUS_LOG_FORMAT", "text")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the SDK cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("OLYMPUS_API_BASE_URL is required")
	}
	switch c.StorageBackend {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageSQLite && c.SQLitePath == "" {
		return fmt.Errorf("OLYMPUS_SQLITE_PATH is required for sqlite storage")
	}
	if c.StorageBackend == StorageRedis && c.RedisAddr == "" {
		return fmt.Errorf("OLYMPUS_REDIS_ADDR is required for redis storage")
	}
	return nil
}
