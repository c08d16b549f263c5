// Package cli is the cafemedia command line: the dev backend, batch uploads
// and gallery edits against a running backend.
package cli

import (
	"fmt"
	"os"

	"cafe-media/internal/config"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func NewRootCmd(logger *zlog.Zerolog) *cobra.Command {
	root := &cobra.Command{
		Use:           "cafemedia",
		Short:         "Upload and manage cafe photos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (overrides CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(logger),
		newUploadCmd(logger),
		newPhotosCmd(logger),
		newEventsCmd(logger),
	)

	return root
}

func Execute(logger *zlog.Zerolog) error {
	return NewRootCmd(logger).Execute()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		if err := os.Setenv("CONFIG_PATH", path); err != nil {
			return nil, fmt.Errorf("failed to set config path: %w", err)
		}
	}
	return config.Load()
}
