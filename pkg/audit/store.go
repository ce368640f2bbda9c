// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit records the outcome of every workflow validation so
// operators can see which definitions were rejected and why.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Record is one audited validation.
type Record struct {
	RunID      string    `json:"run_id"`
	Name       string    `json:"name,omitempty"`
	Source     string    `json:"source,omitempty"`
	Format     string    `json:"format"`
	Valid      bool      `json:"valid"`
	Stage      string    `json:"stage"`
	ErrorCount int       `json:"error_count"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Store persists validation records.
type Store interface {
	Record(ctx context.Context, rec Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// Filter limits record queries. Results are newest first.
type Filter struct {
	Name  string
	Valid *bool
	Limit int
}

func (f Filter) match(rec Record) bool {
	if f.Name != "" && rec.Name != f.Name {
		return false
	}
	if f.Valid != nil && rec.Valid != *f.Valid {
		return false
	}
	return true
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore returns an in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends a record.
func (s *MemoryStore) Record(_ context.Context, rec Record) error {
	rec.StartedAt = normalizeTime(rec.StartedAt)
	rec.FinishedAt = normalizeTime(rec.FinishedAt)
	rec.Errors = cloneErrors(rec.Errors)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns filtered records, newest first.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if !filter.match(rec) {
			continue
		}
		rec.Errors = cloneErrors(rec.Errors)
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Open returns a store for the configured driver: "memory" or "sqlite".
// The returned close function releases the underlying database, if any.
func Open(driver, dsn string) (Store, func() error, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		store, err := OpenSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit driver: %s", driver)
	}
}

func encodeErrors(errs []string) (string, error) {
	if errs == nil {
		errs = []string{}
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeErrors(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneErrors(errs []string) []string {
	return append(make([]string, 0, len(errs)), errs...)
}

// normalizeTime ensures timestamps are in UTC.
func normalizeTime(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return value.UTC()
}
