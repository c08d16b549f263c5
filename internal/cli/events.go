package cli

import (
	"context"
	"encoding/json"
	"sync"

	"cafe-media/internal/app"
	"cafe-media/internal/domain"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func newEventsCmd(logger *zlog.Zerolog) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print photo events from Kafka as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var mu sync.Mutex
			enc := json.NewEncoder(cmd.OutOrStdout())

			return app.RunEvents(cfg, logger, concurrency, func(_ context.Context, event domain.PhotoEvent) error {
				mu.Lock()
				defer mu.Unlock()
				return enc.Encode(event)
			})
		},
	}

	cmd.Flags().Int("concurrency", 1, "Events handled in parallel")

	return cmd
}
