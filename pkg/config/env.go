package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvWebhookURL     = "FEISHU_BOT_URL"
	EnvSecret         = "FEISHU_BOT_SECRET"
	EnvTimeout        = "FEISHU_BOT_TIMEOUT"
	EnvLocale         = "FEISHU_BOT_LOCALE"
	EnvHistoryBackend = "FEISHU_HISTORY_BACKEND"
	EnvHistoryRedis   = "FEISHU_HISTORY_REDIS_ADDR"
	EnvOTLPEndpoint   = "FEISHU_OTLP_ENDPOINT"
	EnvLogLevel       = "FEISHU_LOG_LEVEL"
)

// LoadFromEnvironment creates a Config from defaults and environment variables.
func LoadFromEnvironment() (*Config, error) {
	cfg := &Config{}
	if err := SetDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvironment overrides cfg with the environment variables that are set.
// Env vars take precedence over file values.
func ApplyEnvironment(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvWebhookURL); ok {
		cfg.Feishu.WebhookURL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvSecret); ok {
		cfg.Feishu.Secret = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Feishu.Timeout = timeout
	}
	if v := os.Getenv(EnvLocale); v != "" {
		cfg.Feishu.Locale = v
	}
	if v := os.Getenv(EnvHistoryBackend); v != "" {
		cfg.History.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvHistoryRedis); v != "" {
		cfg.History.RedisAddr = v
		if cfg.History.Backend == HistoryDisabled {
			cfg.History.Backend = HistoryRedis
		}
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
		cfg.Telemetry.Enabled = true
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logger.Level = v
	}
	return nil
}

// parseTimeout accepts Go durations ("5s") or plain seconds ("5").
func parseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	return time.Duration(secs) * time.Second, nil
}
