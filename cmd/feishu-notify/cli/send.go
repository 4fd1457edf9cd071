package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kart-io/feishu-notifier/observability"
	"github.com/kart-io/feishu-notifier/pkg/history"
	"github.com/kart-io/feishu-notifier/pkg/platforms/feishu"
	"github.com/kart-io/feishu-notifier/pkg/ratelimit"
)

const shutdownTimeout = 5 * time.Second

func (a *app) sendCommand() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a post message and print the response",
		Long: "Send a signed post message to the configured webhook and print the\n" +
			"response body as JSON. Local failures print {\"error\": \"...\"}.\n" +
			"The exit status is non-zero unless Feishu accepted the message.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			tp, err := observability.NewTelemetryProvider(a.cfg.Telemetry)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := tp.Shutdown(sctx); err != nil {
					a.logger.Warn("Telemetry shutdown failed", "error", err)
				}
			}()

			opts := []feishu.Option{
				feishu.WithLogger(a.logger),
				feishu.WithTelemetry(tp),
				feishu.WithRateLimiter(ratelimit.New(a.cfg.RateLimit)),
			}
			recorder, err := history.NewRecorder(a.cfg.History, a.logger)
			if err != nil {
				a.logger.Warn("History recording disabled", "error", err)
			} else if recorder != nil {
				defer func() { _ = recorder.Close() }()
				opts = append(opts, feishu.WithRecorder(recorder))
			}

			result := feishu.SendNotification(ctx, a.cfg.Feishu, title, content, opts...)
			if err := writeJSON(cmd.OutOrStdout(), result.Map()); err != nil {
				return err
			}
			return result.AsError()
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "message title")
	cmd.Flags().StringVarP(&content, "content", "m", "", "message text")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
