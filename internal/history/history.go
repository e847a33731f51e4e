// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package history persists one row per dataset load in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/incidentmap/internal/persistence/sqlite"
)

// Status values stored for a load.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 50

// ErrCorrupt is returned by Verify when the integrity check reports problems.
var ErrCorrupt = errors.New("history database failed integrity check")

// Entry is one finished load.
type Entry struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	Records     int       `json:"records"`
	Sources     int       `json:"sources"`
	SkippedRows int       `json:"skippedRows"`
	Error       string    `json:"error,omitempty"`
}

// Duration is the wall time of the load.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store provides SQLite persistence for load history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database and runs migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS loads (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('ok', 'failed', 'canceled')),
		records INTEGER NOT NULL DEFAULT 0,
		sources INTEGER NOT NULL DEFAULT 0,
		skipped_rows INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_loads_started_at ON loads(started_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record inserts a finished load. Recording the same ID twice replaces the row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	query := `
	INSERT INTO loads (id, source, started_at, finished_at, status, records, sources, skipped_rows, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source = excluded.source,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at,
		status = excluded.status,
		records = excluded.records,
		sources = excluded.sources,
		skipped_rows = excluded.skipped_rows,
		error = excluded.error
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Source,
		e.StartedAt.UTC().Format(timeLayout),
		e.FinishedAt.UTC().Format(timeLayout),
		e.Status,
		e.Records,
		e.Sources,
		e.SkippedRows,
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("record load %s: %w", e.ID, err)
	}
	return nil
}

// List returns the most recent loads, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
	SELECT id, source, started_at, finished_at, status, records, sources, skipped_rows, error
	FROM loads
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e                   Entry
			started, finishedAt string
		)
		if err := rows.Scan(&e.ID, &e.Source, &started, &finishedAt, &e.Status,
			&e.Records, &e.Sources, &e.SkippedRows, &e.Error); err != nil {
			return nil, err
		}
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", e.ID, err)
		}
		if e.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Verify runs a quick integrity check.
func (s *Store) Verify(ctx context.Context) error {
	issues, err := sqlite.VerifyIntegrity(ctx, s.db, "quick")
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %v", ErrCorrupt, issues)
	}
	return nil
}
