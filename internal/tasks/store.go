// Package tasks stores the label of the task currently being focused on.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoTask indicates no task is marked as focused.
var ErrNoTask = errors.New("no focused task")

// Store wraps SQLite access for the focused task.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open task db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate task db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS focused_task (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		label TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

// FocusedTask returns the current label or ErrNoTask.
func (s *Store) FocusedTask(ctx context.Context) (string, error) {
	var label string
	err := s.db.QueryRowContext(ctx, `SELECT label FROM focused_task WHERE id = 1`).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoTask
	}
	if err != nil {
		return "", fmt.Errorf("read focused task: %w", err)
	}
	return label, nil
}

// SetFocusedTask replaces the label. A blank label clears it.
func (s *Store) SetFocusedTask(ctx context.Context, label string, now time.Time) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.ClearFocusedTask(ctx)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO focused_task (id, label, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label, updated_at = excluded.updated_at`,
		label, now.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write focused task: %w", err)
	}
	return nil
}

// ClearFocusedTask removes the label.
func (s *Store) ClearFocusedTask(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM focused_task WHERE id = 1`); err != nil {
		return fmt.Errorf("clear focused task: %w", err)
	}
	return nil
}
