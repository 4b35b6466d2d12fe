// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records executed commands: a SQLite journal of every
// Result and an in-memory recall ring for the input line.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/commander/internal/commands"
)

// ErrClosed is returned by queries on a closed store.
var ErrClosed = errors.New("history store is closed")

// Schema is the journal layout.
const Schema = `
CREATE TABLE IF NOT EXISTS results (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL,
	command     TEXT NOT NULL,
	status      INTEGER NOT NULL,
	message     TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	executed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_command ON results(command);
`

// Entry is one journaled result.
type Entry struct {
	ID       uuid.UUID
	Input    string
	Command  string
	Status   commands.Status
	Message  string
	Duration time.Duration
	At       time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is a commands.Observer that appends every Result to SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ commands.Observer = (*Store)(nil)

// Open opens or creates the journal at path. ":memory:" gives a private
// in-memory database.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// OnCommandExecuted journals r. Write failures are logged, never raised.
func (s *Store) OnCommandExecuted(r commands.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Append(ctx, r); err != nil {
		s.log.Warn("failed to journal result", zap.String("command", r.Command), zap.Error(err))
	}
}

// Append inserts one result.
func (s *Store) Append(ctx context.Context, r commands.Result) error {
	if s.db == nil {
		return ErrClosed
	}
	id := r.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (id, input, command, status, message, duration_ns, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), r.Input, r.Command, int(r.Status), r.Message, int64(r.ExecutionTime), at.UnixNano())
	return err
}

// Recent returns up to n entries, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, command, status, message, duration_ns, executed_at
		 FROM results ORDER BY rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			id         string
			status     int
			durationNS int64
			atNS       int64
		)
		if err := rows.Scan(&id, &e.Input, &e.Command, &status, &e.Message, &durationNS, &atNS); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt id %q: %w", id, err)
		}
		e.Status = commands.Status(status)
		e.Duration = time.Duration(durationNS)
		e.At = time.Unix(0, atNS)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Count returns the number of journaled results.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep results.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM results WHERE rowid NOT IN (SELECT rowid FROM results ORDER BY rowid DESC LIMIT ?)`, keep)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
