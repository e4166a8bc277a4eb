package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Landmark provider
	ProviderType string `envconfig:"PROVIDER_TYPE" default:"mock"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Emoji catalog; empty means the embedded default catalog
	CatalogPath string `envconfig:"CATALOG_PATH" default:""`

	// Streaming
	TargetFPS      int `envconfig:"TARGET_FPS" default:"30"`
	MaxConcurrency int `envconfig:"MAX_CONCURRENCY" default:"8"`

	// Batch jobs
	JobTTL time.Duration `envconfig:"JOB_TTL" default:"30m"`

	// Per-device frame rate limit (frames per window; 0 disables)
	FrameRateLimit  int           `envconfig:"FRAME_RATE_LIMIT" default:"0"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// FrameInterval returns the minimum interval between accepted stream frames.
func (c *Config) FrameInterval() time.Duration {
	fps := c.TargetFPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
