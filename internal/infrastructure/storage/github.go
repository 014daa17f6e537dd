package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sderosiaux/gong-to-github/pkg/config"
)

// GitHubTarget commits markdown files to a GitHub repository through the
// contents API.
type GitHubTarget struct {
	repos  repositoriesService
	owner  string
	repo   string
	branch string
	logger *zap.Logger
}

// repositoriesService is the slice of go-github's repositories API the
// target uses; narrowed for test fakes.
type repositoriesService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
}

// NewGitHubTarget creates a GitHub sync target for an "owner/repo" slug.
func NewGitHubTarget(ctx context.Context, cfg *config.GitHubConfig, logger *zap.Logger) (*GitHubTarget, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github repo must be in owner/repo format, got %q", cfg.Repo)
	}

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	return &GitHubTarget{
		repos:  client.Repositories,
		owner:  owner,
		repo:   repo,
		branch: branch,
		logger: logger,
	}, nil
}

// fileSHA returns the blob SHA of an existing file, or "" when the path does
// not exist on the branch.
func (t *GitHubTarget) fileSHA(ctx context.Context, path string) (string, error) {
	file, _, resp, err := t.repos.GetContents(ctx, t.owner, t.repo, path, &github.RepositoryContentGetOptions{Ref: t.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	if file == nil {
		// Path resolves to a directory.
		return "", nil
	}
	return file.GetSHA(), nil
}

func (t *GitHubTarget) createOrUpdateFile(ctx context.Context, path, content, commitMessage string, updateExisting bool) (bool, error) {
	existingSHA, err := t.fileSHA(ctx, path)
	if err != nil {
		return false, err
	}

	if existingSHA != "" && !updateExisting {
		return false, nil
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(commitMessage),
		Content: []byte(content),
		Branch:  github.String(t.branch),
	}

	if existingSHA != "" {
		opts.SHA = github.String(existingSHA)
		_, _, err = t.repos.UpdateFile(ctx, t.owner, t.repo, path, opts)
	} else {
		_, _, err = t.repos.CreateFile(ctx, t.owner, t.repo, path, opts)
	}
	if err != nil {
		return false, fmt.Errorf("failed to create/update file %s: %w", path, err)
	}

	t.logger.Debug("pushed file", zap.String("path", path), zap.Bool("updated", existingSHA != ""))
	return true, nil
}

// SyncTranscript commits one transcript file. Existing files are skipped
// unless updateExisting is set.
func (t *GitHubTarget) SyncTranscript(ctx context.Context, clientFolder, filename, content string, updateExisting bool) (bool, error) {
	path := fmt.Sprintf("%s/%s/%s", transcriptsDir, clientFolder, filename)
	commitMessage := fmt.Sprintf("Add transcript: %s/%s", clientFolder, filename)
	return t.createOrUpdateFile(ctx, path, content, commitMessage, updateExisting)
}

// SyncClientIndex commits a client's README index, always overwriting
func (t *GitHubTarget) SyncClientIndex(ctx context.Context, clientFolder, content string) error {
	path := fmt.Sprintf("%s/%s/README.md", transcriptsDir, clientFolder)
	commitMessage := fmt.Sprintf("Update index: %s", clientFolder)
	_, err := t.createOrUpdateFile(ctx, path, content, commitMessage, true)
	return err
}

// ListExistingTranscripts lists transcript filenames already committed for a
// client, excluding the index.
func (t *GitHubTarget) ListExistingTranscripts(ctx context.Context, clientFolder string) ([]string, error) {
	path := fmt.Sprintf("%s/%s", transcriptsDir, clientFolder)
	_, dir, resp, err := t.repos.GetContents(ctx, t.owner, t.repo, path, &github.RepositoryContentGetOptions{Ref: t.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range dir {
		name := entry.GetName()
		if !strings.HasSuffix(name, ".md") || name == "README.md" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
