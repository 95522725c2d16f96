package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	YouTube   YouTubeConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	Enabled   bool          `envconfig:"CACHE_ENABLED" default:"true"`
	TTL       time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	MaxSize   int           `envconfig:"CACHE_MAX_SIZE" default:"1000"`
	Backend   string        `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
}

type YouTubeConfig struct {
	Timeout   time.Duration `envconfig:"YOUTUBE_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"YOUTUBE_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
}

type RateLimitConfig struct {
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
