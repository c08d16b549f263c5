package cli

import (
	"fmt"

	"cafe-media/internal/app"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func newServeCmd(logger *zlog.Zerolog) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the development photo backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			application, err := app.NewApp(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create app: %w", err)
			}

			return application.Run()
		},
	}
}
