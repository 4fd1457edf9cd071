// Functional options for notifier configuration
package config

import (
	"fmt"
	"time"
)

// WithFeishu replaces the Feishu section, keeping defaults for zero fields.
func WithFeishu(feishu FeishuConfig) Option {
	return func(c *Config) error {
		if feishu.Timeout == 0 {
			feishu.Timeout = c.Feishu.Timeout
		}
		if feishu.Locale == "" {
			feishu.Locale = c.Feishu.Locale
		}
		if feishu.UserAgent == "" {
			feishu.UserAgent = c.Feishu.UserAgent
		}
		c.Feishu = feishu
		return nil
	}
}

// WithWebhook sets the webhook URL and signing secret
func WithWebhook(webhookURL, secret string) Option {
	return func(c *Config) error {
		c.Feishu.WebhookURL = webhookURL
		c.Feishu.Secret = secret
		return nil
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return fmt.Errorf("timeout cannot be negative")
		}
		c.Feishu.Timeout = timeout
		return nil
	}
}

// WithLocale sets the content.post language key
func WithLocale(locale string) Option {
	return func(c *Config) error {
		c.Feishu.Locale = locale
		return nil
	}
}

// WithMemoryHistory keeps the last size results in process memory
func WithMemoryHistory(size int) Option {
	return func(c *Config) error {
		c.History.Backend = HistoryMemory
		c.History.Size = size
		return nil
	}
}

// WithRedisHistory records results in a redis list
func WithRedisHistory(addr, key string, size int) Option {
	return func(c *Config) error {
		c.History.Backend = HistoryRedis
		c.History.RedisAddr = addr
		if key != "" {
			c.History.RedisKey = key
		}
		c.History.Size = size
		return nil
	}
}

// WithTelemetry enables OpenTelemetry export to endpoint
func WithTelemetry(endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		if endpoint != "" {
			c.Telemetry.OTLPEndpoint = endpoint
		}
		return nil
	}
}

// WithRateLimit throttles sends to perSecond and perMinute; zero disables a window
func WithRateLimit(perSecond, perMinute int) Option {
	return func(c *Config) error {
		if perSecond < 0 || perMinute < 0 {
			return fmt.Errorf("rate limit cannot be negative")
		}
		c.RateLimit.Enabled = true
		c.RateLimit.PerSecond = perSecond
		c.RateLimit.PerMinute = perMinute
		return nil
	}
}

// WithLogLevel sets the log level name
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logger.Level = level
		return nil
	}
}
