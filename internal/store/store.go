// Package store persists learning progress.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/shortcut/internal/config"
	"github.com/verte-zerg/shortcut/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrCorrupt marks persisted data that exists but cannot be decoded.
var ErrCorrupt = errors.New("corrupt progress store")

// ProgressStore loads and saves the full progress mapping. Save overwrites
// everything, so callers read, modify, then write the whole mapping.
type ProgressStore interface {
	Load(ctx context.Context) (model.Progress, error)
	Save(ctx context.Context, progress model.Progress) error
	Close() error
}

// Open returns the progress store of a repository for the given backend.
func Open(backend, root string) (ProgressStore, error) {
	switch backend {
	case config.BackendJSON:
		return NewJSONStore(config.JSONProgressPath(root)), nil
	case config.BackendSQLite:
		return OpenSQLite(config.SQLiteProgressPath(root))
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", model.ErrInvalidConfig, backend)
}

// SQLiteStore keeps progress in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			key TEXT PRIMARY KEY,
			app TEXT NOT NULL,
			shortcut TEXT NOT NULL,
			box INTEGER NOT NULL,
			last_reviewed TEXT NOT NULL DEFAULT '',
			correct_count INTEGER NOT NULL,
			incorrect_count INTEGER NOT NULL,
			added_date TEXT NOT NULL DEFAULT '',
			extra TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_progress_app ON progress(app);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads every progress row.
func (s *SQLiteStore) Load(ctx context.Context) (model.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, box, last_reviewed, correct_count, incorrect_count, added_date, extra
		 FROM progress
		 ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.path, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	progress := model.Progress{}
	for rows.Next() {
		var (
			rawKey       string
			entry        model.Entry
			lastReviewed string
			addedDate    string
			extra        string
		)
		if err := rows.Scan(&rawKey, &entry.Box, &lastReviewed, &entry.CorrectCount, &entry.IncorrectCount, &addedDate, &extra); err != nil {
			return nil, err
		}
		key, err := model.ParseKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
		}
		if entry.LastReviewed, err = ParseTimestamp(lastReviewed); err != nil {
			return nil, corruptEntry(s.path, rawKey, err)
		}
		if entry.AddedDate, err = ParseTimestamp(addedDate); err != nil {
			return nil, corruptEntry(s.path, rawKey, err)
		}
		if entry.Extra, err = decodeExtra(extra); err != nil {
			return nil, corruptEntry(s.path, rawKey, err)
		}
		if err := entry.Validate(); err != nil {
			return nil, corruptEntry(s.path, rawKey, err)
		}
		progress[key] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return progress, nil
}

// Save replaces all rows with progress in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, progress model.Progress) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM progress`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO progress (key, app, shortcut, box, last_reviewed, correct_count, incorrect_count, added_date, extra)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, key := range progress.Keys() {
		entry := progress[key]
		if err = entry.Validate(); err != nil {
			return fmt.Errorf("refusing to save %q: %w", key.String(), err)
		}
		extra, err := encodeExtra(entry.Extra)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", key.String(), err)
		}
		if _, err := stmt.ExecContext(ctx,
			key.String(),
			key.App,
			key.Shortcut,
			entry.Box,
			FormatTimestamp(entry.LastReviewed),
			entry.CorrectCount,
			entry.IncorrectCount,
			FormatTimestamp(entry.AddedDate),
			extra,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func corruptEntry(path, key string, err error) error {
	return fmt.Errorf("%w: %s: entry %q: %w", ErrCorrupt, path, key, err)
}
