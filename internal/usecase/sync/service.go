// Package sync orchestrates a full export run: stream assembled calls from
// Gong, group them by client, render markdown and write it to a sync target,
// then advance the watermark.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/sderosiaux/gong-to-github/errors"
	"github.com/sderosiaux/gong-to-github/internal/adapter/markdown"
	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
	"github.com/sderosiaux/gong-to-github/internal/infrastructure/state"
)

// CallStream is a pull-based stream of assembled calls
type CallStream interface {
	Next() bool
	Call() entities.Call
	Err() error
}

// FetchFunc opens a call stream for the given date range and scope
type FetchFunc func(ctx context.Context, from, to *time.Time, scope string) CallStream

// Target receives rendered markdown documents
type Target interface {
	SyncTranscript(ctx context.Context, clientFolder, filename, content string, updateExisting bool) (bool, error)
	SyncClientIndex(ctx context.Context, clientFolder, content string) error
	ListExistingTranscripts(ctx context.Context, clientFolder string) ([]string, error)
}

// Options control a single sync run
type Options struct {
	From           *time.Time
	To             *time.Time
	Scope          string
	StateFile      string
	FullSync       bool
	UpdateExisting bool
	DryRun         bool
}

// Result summarizes a completed run
type Result struct {
	Calls   int
	Clients int
	Synced  int
	Skipped int
}

// Service runs sync operations against a target
type Service struct {
	fetch  FetchFunc
	target Target
	logger *zap.Logger
}

// NewService creates a sync service
func NewService(fetch FetchFunc, target Target, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetch: fetch, target: target, logger: logger}
}

// Run executes one sync run. The watermark is advanced and persisted only
// after every document has been written; a dry run writes nothing and leaves
// the watermark alone.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := s.logger.With(zap.String("run_id", uuid.NewString()))

	var st state.State
	if !opts.FullSync {
		st = state.Load(opts.StateFile)
	}

	from := opts.From
	if from == nil && st.LastSyncTimestamp != nil && !opts.FullSync {
		from = st.LastSyncTimestamp
		logger.Info("resuming from last sync", zap.Time("from", *from))
	}

	logger.Info("fetching calls from Gong")

	// Group calls by client folder, preserving first-seen order.
	grouped := make(map[string][]entities.Call)
	var folders []string
	callCount := 0

	stream := s.fetch(ctx, from, opts.To, opts.Scope)
	for stream.Next() {
		call := stream.Call()
		callCount++
		folder := markdown.GenerateClientFolderName(&call)
		if _, seen := grouped[folder]; !seen {
			folders = append(folders, folder)
		}
		grouped[folder] = append(grouped[folder], call)

		if callCount%10 == 0 {
			logger.Info("fetched calls", zap.Int("count", callCount))
		}
	}
	if err := stream.Err(); err != nil {
		return nil, apperrors.ErrGongAPIFailed("get full calls", err)
	}

	logger.Info("calls fetched",
		zap.Int("calls", callCount),
		zap.Int("clients", len(folders)),
	)

	result := &Result{Calls: callCount, Clients: len(folders)}

	for _, folder := range folders {
		calls := grouped[folder]
		logger.Info("syncing client",
			zap.String("client", folder),
			zap.Int("calls", len(calls)),
		)

		// Known files are skipped up front so the target is not asked about
		// each one individually.
		existing := make(map[string]bool)
		if !opts.DryRun && !opts.UpdateExisting {
			names, err := s.target.ListExistingTranscripts(ctx, folder)
			if err != nil {
				return nil, apperrors.ErrStorageFailed("list transcripts", err).
					WithDetail("client", folder)
			}
			for _, name := range names {
				existing[name] = true
			}
		}

		for i := range calls {
			call := &calls[i]
			filename := markdown.GenerateFilename(call)

			if existing[filename] {
				result.Skipped++
				continue
			}

			if opts.DryRun {
				logger.Info("would sync",
					zap.String("client", folder),
					zap.String("file", filename),
				)
				result.Synced++
				continue
			}

			content := markdown.CallToMarkdown(call)
			written, err := s.target.SyncTranscript(ctx, folder, filename, content, opts.UpdateExisting)
			if err != nil {
				return nil, apperrors.ErrStorageFailed("sync transcript", err).
					WithDetail("file", folder+"/"+filename)
			}
			if written {
				result.Synced++
			} else {
				result.Skipped++
			}
		}

		if !opts.DryRun {
			index := markdown.GenerateClientIndex(markdown.ClientDisplayName(folder), calls)
			if err := s.target.SyncClientIndex(ctx, folder, index); err != nil {
				return nil, apperrors.ErrStorageFailed("sync client index", err).
					WithDetail("client", folder)
			}
		}
	}

	if !opts.DryRun {
		st.Touch()
		if err := state.Save(st, opts.StateFile); err != nil {
			return nil, apperrors.ErrStateFailed("save", err)
		}
	}

	logger.Info("sync complete",
		zap.Int("synced", result.Synced),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
