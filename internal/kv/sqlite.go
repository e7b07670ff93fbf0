package kv

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/sqlite"
)

// SQLiteStore persists documents in the app_state table.
type SQLiteStore struct {
	db *sqlite.Database
}

func NewSQLiteStore(db *sqlite.Database) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, userEmail, key string) ([]byte, error) {
	var value []byte
	err := s.db.ReadOnly.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE user_email = ? AND key = ?",
		userEmail, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get document",
			slog.String("key", key))
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, userEmail, key string, value []byte) error {
	_, err := s.db.ReadWrite.ExecContext(ctx, `
INSERT INTO app_state (user_email, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_email, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userEmail, key, value, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "set document", slog.String("key", key))
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userEmail, key string) error {
	_, err := s.db.ReadWrite.ExecContext(ctx,
		"DELETE FROM app_state WHERE user_email = ? AND key = ?", userEmail, key)
	if err != nil {
		return errors.Wrap(err, "delete document", slog.String("key", key))
	}
	return nil
}
