// Package platforms provides platform-specific configuration structures
package platforms

import (
	"fmt"
	"strings"
	"time"
)

// FeishuConfig represents configuration for a Feishu custom-bot webhook.
// WebhookURL may be empty here; sending reports it as a configuration error.
type FeishuConfig struct {
	WebhookURL string `json:"webhook_url" yaml:"webhook_url" mapstructure:"webhook_url"`
	Secret     string `json:"secret" yaml:"secret" mapstructure:"secret"`

	// Connection settings
	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" default:"30s"`
	UserAgent string        `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent" default:"feishu-notifier/1.0"`

	// Locale is the language key under content.post.
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale" default:"zh_cn"`
}

// HasWebhook reports whether a webhook URL is configured.
func (c *FeishuConfig) HasWebhook() bool {
	return c.WebhookURL != ""
}

// HasSecret reports whether a signing secret is configured.
func (c *FeishuConfig) HasSecret() bool {
	return c.Secret != ""
}

// Validate checks the connection settings. The webhook URL is not checked
// here; a missing or unusable URL is reported by the send itself.
func (c *FeishuConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	if strings.TrimSpace(c.Locale) == "" {
		return fmt.Errorf("locale cannot be empty")
	}

	return nil
}
