package main

import (
	"github.com/spf13/cobra"

	"lowlife.exe.dev/release"
)

func newReleaseCmd() *cobra.Command {
	var (
		repoPath  string
		dataDir   string
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Queue new commits and cut a version once enough have piled up",
		Long: `Reads commit subjects since the last run, queues them, and once the
queue reaches the threshold bumps the minor version and writes release notes
to the data directory for the bot to post.`,
		Example: `  # Run against the current checkout
  lowlifectl release

  # Release after every 3 commits
  lowlifectl release --threshold 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := release.EnvOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				opts.DataDir = dataDir
			}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}
			opts.Out = cmd.OutOrStdout()

			repo, err := release.OpenRepo(repoPath)
			if err != nil {
				return err
			}
			_, err = release.Run(repo, opts)
			return err
		},
	}
	cmd.Flags().StringVar(&repoPath, "repo", "", "git repository (default: working directory)")
	cmd.Flags().StringVar(&dataDir, "data", "data", "directory holding release state and notes")
	cmd.Flags().IntVar(&threshold, "threshold", release.DefaultThreshold, "changes per release (default from LOWLIFE_CHANGE_THRESHOLD)")
	return cmd
}
