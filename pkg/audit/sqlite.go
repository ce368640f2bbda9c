// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists validation records in SQLite.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteStore wraps an open database and ensures the schema exists. The
// caller keeps ownership of db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens the database at dsn and ensures the schema exists.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// Close releases the database when the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Record stores a single validation record.
func (s *SQLiteStore) Record(ctx context.Context, rec Record) error {
	errs, err := encodeErrors(rec.Errors)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_validations (
			run_id, name, source, format, valid, stage, error_count, errors_json, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Name,
		rec.Source,
		rec.Format,
		rec.Valid,
		rec.Stage,
		rec.ErrorCount,
		errs,
		normalizeTime(rec.StartedAt),
		normalizeTime(rec.FinishedAt),
	)
	return err
}

// List returns records matching the filter, most recently recorded first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT run_id, name, source, format, valid, stage, error_count, errors_json, started_at, finished_at
		FROM workflow_validations
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Name != "" {
		addFilter("name = ?", filter.Name)
	}
	if filter.Valid != nil {
		addFilter("valid = ?", *filter.Valid)
	}
	query += where + " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec      Record
			errsJSON string
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Name,
			&rec.Source,
			&rec.Format,
			&rec.Valid,
			&rec.Stage,
			&rec.ErrorCount,
			&errsJSON,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		if rec.Errors, err = decodeErrors(errsJSON); err != nil {
			return nil, fmt.Errorf("decode errors for run %s: %w", rec.RunID, err)
		}
		if started.Valid {
			rec.StartedAt = started.Time
		}
		if finished.Valid {
			rec.FinishedAt = finished.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_validations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL,
			valid BOOLEAN NOT NULL,
			stage TEXT NOT NULL,
			error_count INTEGER NOT NULL,
			errors_json TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_validations_name ON workflow_validations(name);
		CREATE INDEX IF NOT EXISTS idx_workflow_validations_valid ON workflow_validations(valid);
	`)
	return err
}
