// Package storage provides the sync targets markdown documents are written
// to: a local directory tree or a GitHub repository.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

const transcriptsDir = "transcripts"

// LocalTarget writes markdown files to a local directory tree
type LocalTarget struct {
	outputDir string
}

// NewLocalTarget creates a local sync target rooted at outputDir
func NewLocalTarget(outputDir string) (*LocalTarget, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalTarget{outputDir: outputDir}, nil
}

// SyncTranscript writes one transcript file. An existing file is left alone
// unless updateExisting is set; the returned bool reports whether the file
// was written.
func (t *LocalTarget) SyncTranscript(_ context.Context, clientFolder, filename, content string, updateExisting bool) (bool, error) {
	folder := filepath.Join(t.outputDir, transcriptsDir, clientFolder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return false, err
	}

	path := filepath.Join(folder, filename)
	if _, err := os.Stat(path); err == nil && !updateExisting {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// SyncClientIndex writes a client's README index, always overwriting
func (t *LocalTarget) SyncClientIndex(_ context.Context, clientFolder, content string) error {
	folder := filepath.Join(t.outputDir, transcriptsDir, clientFolder)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(folder, "README.md"), []byte(content), 0o644)
}

// ListExistingTranscripts lists transcript filenames already synced for a
// client, excluding the index.
func (t *LocalTarget) ListExistingTranscripts(_ context.Context, clientFolder string) ([]string, error) {
	folder := filepath.Join(t.outputDir, transcriptsDir, clientFolder)
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") || name == "README.md" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
