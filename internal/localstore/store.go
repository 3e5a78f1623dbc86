// Package localstore keeps the client's on-disk state in SQLite: settings
// such as the rest time and the auth token, and the progress-sync outbox.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"

	_ "modernc.org/sqlite"
)

const (
	keyRestSeconds = "rest_seconds"
	keyAuthToken   = "auth_token"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS progress_outbox (
		id              TEXT PRIMARY KEY,
		day             TEXT NOT NULL,
		exercise_index  INTEGER NOT NULL,
		completed       INTEGER NOT NULL,
		attempts        INTEGER NOT NULL DEFAULT 0,
		next_attempt_at INTEGER NOT NULL,
		created_at      INTEGER NOT NULL,
		last_error      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_due ON progress_outbox (next_attempt_at)`,
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) befit.db inside dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "befit.db"))
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}
	// One connection serializes writers; the outbox never holds a cursor while writing.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RestSeconds returns the saved rest time, or the default when none is set.
func (s *Store) RestSeconds(ctx context.Context) (int, error) {
	v, ok, err := s.get(ctx, keyRestSeconds)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.DefaultRestSeconds, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !domain.ValidRestSeconds(n) {
		return domain.DefaultRestSeconds, nil
	}
	return n, nil
}

func (s *Store) SetRestSeconds(ctx context.Context, seconds int) error {
	if !domain.ValidRestSeconds(seconds) {
		return apperrors.Validation("settings.rest", fmt.Sprintf("rest time must be between %d and %d seconds", domain.MinRestSeconds, domain.MaxRestSeconds))
	}
	return s.set(ctx, keyRestSeconds, strconv.Itoa(seconds))
}

// Token returns the saved auth token, empty when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, keyAuthToken)
	return v, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, keyAuthToken)
		return err
	}
	return s.set(ctx, keyAuthToken, token)
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}
