// Package cli implements the feishu-notify commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kart-io/feishu-notifier/pkg/config"
	"github.com/kart-io/feishu-notifier/pkg/logger"
)

// EnvConfigFile names the config file when --config is not given.
const EnvConfigFile = "FEISHU_CONFIG"

// app holds what the sub-commands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger logger.Logger
}

type flagSpec struct {
	Name, Description string
	Short             string
}

var rootFlags = []flagSpec{
	{Name: "config", Short: "c", Description: "path to a YAML configuration file (env " + EnvConfigFile + ")"},
	{Name: "webhook-url", Short: "w", Description: "Feishu bot webhook URL (overrides " + config.EnvWebhookURL + ")"},
	{Name: "secret", Short: "s", Description: "Feishu bot signing secret (overrides " + config.EnvSecret + ")"},
	{Name: "timeout", Description: "request timeout, e.g. 10s (overrides " + config.EnvTimeout + ")"},
	{Name: "locale", Description: "post content locale (overrides " + config.EnvLocale + ")"},
	{Name: "redis-addr", Description: "record history in Redis at this address"},
	{Name: "otlp-endpoint", Description: "export traces to this OTLP/HTTP endpoint"},
	{Name: "log-level", Description: "silent, error, warn, info or debug"},
	{Name: "log-format", Description: "text or json"},
}

// New returns the root command.
func New() *cobra.Command {
	return newRootCommand(viper.New(), os.Stderr)
}

func newRootCommand(v *viper.Viper, logOut io.Writer) *cobra.Command {
	a := &app{v: v}

	cmd := &cobra.Command{
		Use:           "feishu-notify",
		Short:         "Send signed post messages to a Feishu custom bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = buildLogger(cfg.Logger, logOut)
			return nil
		},
	}

	for _, f := range rootFlags {
		if f.Short == "" {
			cmd.PersistentFlags().String(f.Name, "", f.Description)
		} else {
			cmd.PersistentFlags().StringP(f.Name, f.Short, "", f.Description)
		}
		_ = v.BindPFlag(f.Name, cmd.PersistentFlags().Lookup(f.Name))
	}
	_ = v.BindEnv("config", EnvConfigFile)

	cmd.AddCommand(
		a.sendCommand(),
		a.signCommand(),
		a.historyCommand(),
	)
	return cmd
}

// loadConfig reads the file (if any), then the environment, then flags.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := a.v.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.LoadFromEnvironment()
	}
	if err != nil {
		return nil, err
	}

	if a.v.IsSet("webhook-url") {
		cfg.Feishu.WebhookURL = strings.TrimSpace(a.v.GetString("webhook-url"))
	}
	if a.v.IsSet("secret") {
		cfg.Feishu.Secret = a.v.GetString("secret")
	}
	if a.v.IsSet("timeout") {
		timeout := a.v.GetDuration("timeout")
		if timeout <= 0 {
			return nil, fmt.Errorf("invalid --timeout %q", a.v.GetString("timeout"))
		}
		cfg.Feishu.Timeout = timeout
	}
	if a.v.IsSet("locale") {
		cfg.Feishu.Locale = a.v.GetString("locale")
	}
	if a.v.IsSet("redis-addr") {
		cfg.History.Backend = config.HistoryRedis
		cfg.History.RedisAddr = a.v.GetString("redis-addr")
	}
	if a.v.IsSet("otlp-endpoint") {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.OTLPEndpoint = a.v.GetString("otlp-endpoint")
	}
	if a.v.IsSet("log-level") {
		cfg.Logger.Level = a.v.GetString("log-level")
	}
	if a.v.IsSet("log-format") {
		cfg.Logger.Format = a.v.GetString("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildLogger(cfg config.LoggerConfig, out io.Writer) logger.Logger {
	level := logger.ParseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "json") {
		return logger.NewJSONLogger(out, level)
	}
	return logger.NewStandardLogger(log.New(out, "", log.LstdFlags), level, "[feishu]")
}
