package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kart-io/feishu-notifier/pkg/platforms/feishu"
)

func (a *app) signCommand() *cobra.Command {
	var (
		timestamp int64
		mask      bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the timestamp and signature a send would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at := time.Now()
			if timestamp > 0 {
				at = time.Unix(timestamp, 0)
			}

			ts, sign := feishu.NewSigner(a.cfg.Feishu.Secret).SignAt(at)
			out := map[string]interface{}{
				"timestamp":  ts,
				"sign":       sign,
				"has_secret": a.cfg.Feishu.HasSecret(),
			}
			if mask {
				out["sign"] = feishu.MaskSignature(sign)
				out["webhook"] = feishu.MaskWebhookURL(a.cfg.Feishu.WebhookURL)
				out["secret"] = feishu.MaskSecret(a.cfg.Feishu.Secret)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "unix seconds to sign instead of now")
	cmd.Flags().BoolVar(&mask, "mask", false, "mask the signature and show masked webhook and secret")
	return cmd
}
