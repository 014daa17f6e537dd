package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sderosiaux/gong-to-github/internal/infrastructure/external/gong"
	syncsvc "github.com/sderosiaux/gong-to-github/internal/usecase/sync"
	"github.com/sderosiaux/gong-to-github/pkg/config"
)

const dateFlagLayout = "2006-01-02"

// commandContext carries lazily initialized shared dependencies between
// commands.
type commandContext struct {
	cfg    *config.Config
	logger *zap.Logger
	client *gong.Client
}

func (c *commandContext) ensure() error {
	if c.client != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logger *zap.Logger
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	c.client = gong.NewClient(&cfg.Gong, logger)
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "gong-to-github",
		Short:         "Sync Gong call transcripts to GitHub as Markdown files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.ensure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newSyncLocalCommand(ctx))
	rootCmd.AddCommand(newSyncGitHubCommand(ctx))
	rootCmd.AddCommand(newListCallsCommand(ctx))
	rootCmd.AddCommand(newListUsersCommand(ctx))

	return rootCmd
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means unset.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFlagLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// callFetcher adapts the gong client to the sync service's stream contract.
func callFetcher(client *gong.Client) syncsvc.FetchFunc {
	return func(ctx context.Context, from, to *time.Time, scope string) syncsvc.CallStream {
		return client.GetFullCalls(ctx, from, to, scope)
	}
}
