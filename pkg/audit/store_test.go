// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleRecords() []Record {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []Record{
		{
			RunID: "run-1", Name: "triage", Source: "cli", Format: "json",
			Valid: true, Stage: "done", Errors: []string{},
			StartedAt: start, FinishedAt: start.Add(time.Millisecond),
		},
		{
			RunID: "run-2", Name: "triage", Source: "http", Format: "json",
			Valid: false, Stage: "done", ErrorCount: 1,
			Errors:    []string{`Missing or invalid "edges" array`},
			StartedAt: start.Add(time.Second), FinishedAt: start.Add(time.Second + time.Millisecond),
		},
		{
			RunID: "run-3", Name: "", Source: "mcp", Format: "yaml",
			Valid: false, Stage: "failed", ErrorCount: 1,
			Errors:    []string{"Invalid YAML format: yaml: line 1: did not find expected key"},
			StartedAt: start.Add(2 * time.Second), FinishedAt: start.Add(2*time.Second + time.Millisecond),
		},
	}
}

func runIDs(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.RunID)
	}
	return out
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range sampleRecords() {
		if err := store.Record(ctx, rec); err != nil {
			t.Fatalf("record %s: %v", rec.RunID, err)
		}
	}

	invalid := false
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all newest first", filter: Filter{}, want: []string{"run-3", "run-2", "run-1"}},
		{name: "by name", filter: Filter{Name: "triage"}, want: []string{"run-2", "run-1"}},
		{name: "invalid only", filter: Filter{Valid: &invalid}, want: []string{"run-3", "run-2"}},
		{name: "limit", filter: Filter{Limit: 1}, want: []string{"run-3"}},
		{name: "no match", filter: Filter{Name: "missing"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff(tt.want, runIDs(got)); diff != "" {
				t.Errorf("run ids mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, err := store.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := sampleRecords()[1]
	if diff := cmp.Diff(want.Errors, got[1].Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if got[1].ErrorCount != 1 || got[1].Valid || got[1].Source != "http" {
		t.Errorf("unexpected record: %+v", got[1])
	}
	if !got[1].StartedAt.Equal(want.StartedAt) {
		t.Errorf("started_at = %v, want %v", got[1].StartedAt, want.StartedAt)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	db, err := sql.Open("sqlite", "file:audit_store_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	store, closeFn, err := Open("memory", "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", store)
	}
	_ = closeFn()

	path := filepath.Join(t.TempDir(), "audit.db")
	store, closeFn, err = Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer closeFn()
	if err := store.Record(context.Background(), Record{RunID: "r", Format: "json", Stage: "done", Valid: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	recs, err := store.List(context.Background(), Filter{})
	if err != nil || len(recs) != 1 {
		t.Fatalf("list = %v, %v", recs, err)
	}
	if recs[0].Errors == nil {
		t.Errorf("errors should decode to an empty list")
	}

	if _, _, err := Open("sqlite", ""); err == nil {
		t.Error("expected error for empty dsn")
	}
	if _, _, err := Open("postgres", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestMemoryStoreCopiesErrors(t *testing.T) {
	store := NewMemoryStore()
	errs := []string{"a"}
	_ = store.Record(context.Background(), Record{RunID: "r", Errors: errs})
	errs[0] = "mutated"

	got, _ := store.List(context.Background(), Filter{})
	if got[0].Errors[0] != "a" {
		t.Errorf("stored errors were aliased: %v", got[0].Errors)
	}
}
