package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPostUpdateCmd() *cobra.Command {
	var (
		changelog string
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "post-update",
		Short: "Post the newest changelog entry unless it already went out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := openServer()
			if err != nil {
				return err
			}
			defer server.Close()

			path := server.Config.ChangelogPath
			if changelog != "" {
				path = changelog
			}
			status, err := server.Poster.PostFile(cmd.Context(), path, force)
			if err != nil {
				return fmt.Errorf("post %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().StringVar(&changelog, "changelog", "", "changelog to read (default UPDATES_CHANGELOG_PATH)")
	cmd.Flags().BoolVar(&force, "force", false, "post even if this version was already announced")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var guild string
	cmd := &cobra.Command{
		Use:   "register-commands",
		Short: "Sync the slash commands with Discord",
		Long:  "Registers /duel and /inv. Guild commands update instantly; global ones can take an hour.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := openServer()
			if err != nil {
				return err
			}
			defer server.Close()
			return server.RegisterCommands(cmd.Context(), guild)
		},
	}
	cmd.Flags().StringVar(&guild, "guild", "", "guild id to register to (default: global)")
	return cmd
}
