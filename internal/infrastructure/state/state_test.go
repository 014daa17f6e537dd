package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"))
	if s.LastSyncTimestamp != nil {
		t.Fatalf("expected empty state, got %+v", s)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.LastSyncTimestamp != nil {
		t.Fatalf("corrupt file must yield empty state, got %+v", s)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	ts := time.Date(2025, 1, 4, 10, 30, 0, 0, time.UTC)
	if err := Save(State{LastSyncTimestamp: &ts}, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Load(path)
	if loaded.LastSyncTimestamp == nil || !loaded.LastSyncTimestamp.Equal(ts) {
		t.Fatalf("round trip lost timestamp: %+v", loaded.LastSyncTimestamp)
	}
}

func TestTouch(t *testing.T) {
	var s State
	before := time.Now().Add(-time.Second)
	s.Touch()
	if s.LastSyncTimestamp == nil || s.LastSyncTimestamp.Before(before) {
		t.Fatalf("touch did not advance watermark: %+v", s.LastSyncTimestamp)
	}
}
