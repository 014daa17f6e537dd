package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sderosiaux/gong-to-github/internal/infrastructure/external/gong"
	"github.com/sderosiaux/gong-to-github/internal/infrastructure/storage"
	syncsvc "github.com/sderosiaux/gong-to-github/internal/usecase/sync"
)

func newSyncLocalCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var outputDir string
	var stateFile string
	var fullSync bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "sync-local",
		Short: "Sync transcripts to a local directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateFlag(fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDateFlag(toFlag)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = ctx.cfg.Sync.OutputDir
			}
			if stateFile == "" {
				stateFile = ctx.cfg.Sync.StateFile
			}

			target, err := storage.NewLocalTarget(outputDir)
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
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d new, %d already existed -> %s\n",
				result.Synced, result.Skipped, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to-date", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for markdown files")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "State file for incremental sync")
	cmd.Flags().BoolVar(&fullSync, "full-sync", false, "Ignore state and sync all calls")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing files")

	return cmd
}
