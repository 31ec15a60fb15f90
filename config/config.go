package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Points        PointsConfig        `yaml:"points"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL        string `yaml:"url" env:"NATS_URL"`
	QueueGroup string `yaml:"queue_group" env:"NATS_QUEUE_GROUP"`
}

// HTTPConfig holds the HTTP API listener settings.
type HTTPConfig struct {
	Addr      string  `yaml:"addr" env:"HTTP_ADDR"`
	RateLimit float64 `yaml:"rate_limit" env:"HTTP_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"HTTP_RATE_BURST"`
}

// PointsConfig tunes the points engine.
type PointsConfig struct {
	DefaultDecayStrategy string `yaml:"default_decay_strategy" env:"POINTS_DEFAULT_DECAY_STRATEGY"`
	LeaderboardPageSize  int    `yaml:"leaderboard_page_size" env:"POINTS_LEADERBOARD_PAGE_SIZE"`
	ArchivePageSize      int    `yaml:"archive_page_size" env:"POINTS_ARCHIVE_PAGE_SIZE"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string  `yaml:"service_name" env:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" env:"ENV"`
	LogLevel       string  `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddress string  `yaml:"metrics_address" env:"METRICS_ADDRESS"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate     float64 `yaml:"sample_rate" env:"TRACE_SAMPLE_RATE"`
}

func defaults() Config {
	return Config{
		NATS: NATSConfig{QueueGroup: "points"},
		HTTP: HTTPConfig{Addr: ":8080", RateLimit: 10, RateBurst: 20},
		Points: PointsConfig{
			DefaultDecayStrategy: pointsdomain.GlobalAttendanceKey,
			LeaderboardPageSize:  50,
			ArchivePageSize:      20,
		},
		Observability: ObservabilityConfig{
			ServiceName: "poker-points",
			Environment: "production",
			LogLevel:    "info",
			SampleRate:  1,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file means environment-only configuration.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// environment only
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn not set (DATABASE_URL)")
	}

	c.Points.DefaultDecayStrategy = strings.TrimSpace(c.Points.DefaultDecayStrategy)
	decay := pointsdomain.NewDecayRegistry()
	if c.Points.DefaultDecayStrategy != "" && !decay.Has(c.Points.DefaultDecayStrategy) {
		return fmt.Errorf("unknown decay strategy %q, registered: %s",
			c.Points.DefaultDecayStrategy, strings.Join(decay.Keys(), ", "))
	}
	if c.Points.LeaderboardPageSize < 0 || c.Points.ArchivePageSize < 0 {
		return fmt.Errorf("page sizes must not be negative")
	}
	if c.HTTP.RateLimit < 0 || c.HTTP.RateBurst < 0 {
		return fmt.Errorf("http rate limit and burst must not be negative")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		return fmt.Errorf("http rate burst must be at least 1 when rate limiting is enabled")
	}
	if c.Observability.SampleRate < 0 || c.Observability.SampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1, got %v", c.Observability.SampleRate)
	}
	return nil
}
