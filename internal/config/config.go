// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	AppURL    string `env:"APP_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	MaxViewers         int64   `env:"MAX_VIEWERS" default:"10000"`
	MaxViewersPerIP    int     `env:"MAX_VIEWERS_PER_IP" default:"32"`
	ViewerConnectRate  float64 `env:"VIEWER_CONNECT_RATE" default:"10"`
	ViewerConnectBurst int     `env:"VIEWER_CONNECT_BURST" default:"20"`

	MaxFrameBytes int64   `env:"MAX_FRAME_BYTES" default:"8388608"` // 8 MiB
	PublishRate   float64 `env:"PUBLISH_RATE" default:"30"`
	PublishBurst  int     `env:"PUBLISH_BURST" default:"10"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MaxViewers <= 0 {
		return fmt.Errorf("MAX_VIEWERS must be positive, got %d", cfg.MaxViewers)
	}
	if cfg.MaxViewersPerIP <= 0 {
		return fmt.Errorf("MAX_VIEWERS_PER_IP must be positive, got %d", cfg.MaxViewersPerIP)
	}
	if cfg.ViewerConnectRate <= 0 {
		return fmt.Errorf("VIEWER_CONNECT_RATE must be positive, got %g", cfg.ViewerConnectRate)
	}
	if cfg.ViewerConnectBurst <= 0 {
		return fmt.Errorf("VIEWER_CONNECT_BURST must be positive, got %d", cfg.ViewerConnectBurst)
	}
	if cfg.MaxFrameBytes <= 0 {
		return fmt.Errorf("MAX_FRAME_BYTES must be positive, got %d", cfg.MaxFrameBytes)
	}
	if cfg.PublishRate <= 0 {
		return fmt.Errorf("PUBLISH_RATE must be positive, got %g", cfg.PublishRate)
	}
	if cfg.PublishBurst <= 0 {
		return fmt.Errorf("PUBLISH_BURST must be positive, got %d", cfg.PublishBurst)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
