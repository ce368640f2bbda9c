// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRunsHandlerOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	calls := make(chan string, 8)
	w, err := New(path, func(_ context.Context, p string) { calls <- p },
		WithInitialRun(), WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case got := <-calls:
		if got != w.Path() {
			t.Fatalf("initial call path = %s, want %s", got, w.Path())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("initial run not observed")
	}

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"name":"A"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-calls:
		if got != w.Path() {
			t.Fatalf("change call path = %s", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("change not observed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewRejectsNilHandler(t *testing.T) {
	if _, err := New("x.json", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "wf.json"), func(context.Context, string) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
