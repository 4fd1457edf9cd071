// Package config provides the configuration system for the Feishu notifier.
// Configuration is loaded once by the caller and handed to the notifier.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/kart-io/feishu-notifier/pkg/config/platforms"
)

// FeishuConfig is the webhook configuration consumed by the notifier.
type FeishuConfig = platforms.FeishuConfig

// History backends
const (
	HistoryDisabled = ""
	HistoryMemory   = "memory"
	HistoryRedis    = "redis"
)

// Config represents the full configuration of the notifier process.
type Config struct {
	Feishu    FeishuConfig    `json:"feishu" yaml:"feishu" mapstructure:"feishu"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
	Logger    LoggerConfig    `json:"logger" yaml:"logger" mapstructure:"logger"`
}

// HistoryConfig configures the delivery history recorder.
type HistoryConfig struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	Size    int    `json:"size" yaml:"size" mapstructure:"size" default:"100"`

	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr" default:"localhost:6379"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	RedisKey      string `json:"redis_key" yaml:"redis_key" mapstructure:"redis_key" default:"feishu:notifications"`
	// TTL of the redis list; zero keeps it forever.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// TelemetryConfig configures OpenTelemetry tracing and metrics.
type TelemetryConfig struct {
	Enabled        bool              `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	ServiceName    string            `json:"service_name" yaml:"service_name" mapstructure:"service_name" default:"feishu-notifier"`
	ServiceVersion string            `json:"service_version" yaml:"service_version" mapstructure:"service_version" default:"1.0.0"`
	Environment    string            `json:"environment" yaml:"environment" mapstructure:"environment" default:"development"`
	OTLPEndpoint   string            `json:"otlp_endpoint" yaml:"otlp_endpoint" mapstructure:"otlp_endpoint" default:"localhost:4318"`
	OTLPHeaders    map[string]string `json:"otlp_headers" yaml:"otlp_headers" mapstructure:"otlp_headers"`
	Insecure       bool              `json:"insecure" yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64           `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate" default:"1.0"`
}

// RateLimitConfig throttles sends on the client side. The defaults match
// the limits Feishu applies to a single custom bot.
type RateLimitConfig struct {
	Enabled   bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	PerSecond int  `json:"per_second" yaml:"per_second" mapstructure:"per_second" default:"5"`
	PerMinute int  `json:"per_minute" yaml:"per_minute" mapstructure:"per_minute" default:"100"`
	Burst     int  `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// LoggerConfig configures logging behavior
type LoggerConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" default:"info"`
	Format string `json:"format" yaml:"format" mapstructure:"format" default:"text"`
}

// Option defines a functional option for configuration
type Option func(*Config) error

// New creates a configuration with defaults applied, then opts.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}
	if err := SetDefaults(cfg); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SetDefaults fills zero-valued fields from their `default` tags.
func SetDefaults(cfg *Config) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return nil
}

// LoadFile reads a YAML file, applies defaults, then environment overrides.
// A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := SetDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnvironment(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Feishu.Validate(); err != nil {
		return fmt.Errorf("feishu: %w", err)
	}

	switch c.History.Backend {
	case HistoryDisabled, HistoryMemory, HistoryRedis:
	default:
		return fmt.Errorf("history: unsupported backend %q", c.History.Backend)
	}
	if c.History.Size < 0 {
		return fmt.Errorf("history: size cannot be negative")
	}

	if c.RateLimit.PerSecond < 0 || c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit: values cannot be negative")
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample_rate must be between 0 and 1")
	}

	return nil
}
