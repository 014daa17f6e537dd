package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sderosiaux/gong-to-github/internal/infrastructure/external/gong"
	"github.com/sderosiaux/gong-to-github/internal/infrastructure/storage"
	syncsvc "github.com/sderosiaux/gong-to-github/internal/usecase/sync"
)

func newSyncGitHubCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var repoFlag string
	var branchFlag string
	var stateFile string
	var fullSync bool
	var updateExisting bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync-github",
		Short: "Sync transcripts to a GitHub repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateFlag(fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDateFlag(toFlag)
			if err != nil {
				return err
			}
			if repoFlag != "" {
				ctx.cfg.GitHub.Repo = repoFlag
			}
			if branchFlag != "" {
				ctx.cfg.GitHub.Branch = branchFlag
			}
			if stateFile == "" {
				stateFile = ctx.cfg.Sync.StateFile
			}
			if err := ctx.cfg.RequireGitHub(); err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "[DRY RUN] No changes will be pushed to GitHub")
			}

			target, err := storage.NewGitHubTarget(cmd.Context(), &ctx.cfg.GitHub, ctx.logger)
			if err != nil {
				return err
			}

			service := syncsvc.NewService(callFetcher(ctx.client), target, ctx.logger)
			result, err := service.Run(cmd.Context(), syncsvc.Options{
				From:           from,
				To:             to,
				Scope:          gong.DefaultScope,
				StateFile:      stateFile,
				FullSync:       fullSync,
				UpdateExisting: updateExisting,
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d new, %d already existed -> %s\n",
				result.Synced, result.Skipped, ctx.cfg.GitHub.Repo)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&repoFlag, "repo", "", "GitHub repository (owner/repo)")
	cmd.Flags().StringVar(&branchFlag, "branch", "", "GitHub branch")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "State file for incremental sync")
	cmd.Flags().BoolVar(&fullSync, "full-sync", false, "Ignore state and sync all calls")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without pushing to GitHub")

	return cmd
}
