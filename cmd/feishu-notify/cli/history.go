package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kart-io/feishu-notifier/pkg/config"
	"github.com/kart-io/feishu-notifier/pkg/history"
)

func (a *app) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recently recorded sends, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.History.Backend != config.HistoryRedis {
				return fmt.Errorf("history needs the redis backend: set --redis-addr or %s", config.EnvHistoryRedis)
			}

			recorder, err := history.NewRecorder(a.cfg.History, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = recorder.Close() }()

			entries, err := recorder.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if err := writeJSON(cmd.OutOrStdout(), e); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries, 0 for all")
	return cmd
}
