// Package state persists the sync watermark between runs.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// State is the incremental sync watermark
type State struct {
	LastSyncTimestamp *time.Time `json:"last_sync_timestamp,omitempty"`
}

// Touch moves the watermark to now. Called only after a run completes.
func (s *State) Touch() {
	now := time.Now().UTC()
	s.LastSyncTimestamp = &now
}

// Load reads the state file. A missing, unreadable or corrupt file yields an
// empty state, never an error; the worst case is re-syncing from scratch.
func Load(path string) State {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}
	}
	return s
}

// Save writes the state file, creating parent directories as needed.
func Save(s State, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
