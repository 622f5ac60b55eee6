package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lowlife.exe.dev/srv"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "lowlifectl",
		Short:         "Maintenance tasks for the Lowlife Society bot",
		SilenceUsage:  true,
		Version:       srv.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(
		newReleaseCmd(),
		newPostUpdateCmd(),
		newRegisterCmd(),
		newItemsCmd(),
	)
	return root
}

// openServer builds a server from the environment for one-shot commands.
func openServer() (*srv.Server, error) {
	cfg, err := srv.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return srv.New(cfg, srv.WithMarkers(srv.NewMarkerClient()))
}
