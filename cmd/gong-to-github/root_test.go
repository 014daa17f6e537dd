package main

import (
	"testing"
	"time"
)

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("2025-03-15")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = parseDateFlag("")
	if err != nil || got != nil {
		t.Fatalf("empty value must mean unset, got %v %v", got, err)
	}

	for _, bad := range []string{"15-03-2025", "2025/03/15", "yesterday"} {
		if _, err := parseDateFlag(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	want := map[string]bool{
		"sync-local":  false,
		"sync-github": false,
		"list-calls":  false,
		"list-users":  false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}

	if !root.SilenceUsage || !root.SilenceErrors {
		t.Error("root command must silence cobra's own error output")
	}
}
