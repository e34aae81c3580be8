package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore keeps blobs in the app_state table. It works against SQLite and
// PostgreSQL; only the placeholder style differs.
type SQLStore struct {
	db       *sql.DB
	getQuery string
	setQuery string
}

// NewSQLite returns a store over a SQLite connection.
func NewSQLite(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		getQuery: `SELECT value FROM app_state WHERE state_key = ?`,
		setQuery: upsert("?", "?"),
	}
}

// NewPostgres returns a store over a PostgreSQL connection.
func NewPostgres(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		getQuery: `SELECT value FROM app_state WHERE state_key = $1`,
		setQuery: upsert("$1", "$2"),
	}
}

func upsert(keyArg, valueArg string) string {
	return fmt.Sprintf(`
		INSERT INTO app_state (state_key, value, updated_at)
		VALUES (%s, %s, CURRENT_TIMESTAMP)
		ON CONFLICT (state_key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, keyArg, valueArg)
}

// Get returns the blob stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query app_state: %w", err)
	}
	return []byte(value), nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, string(value)); err != nil {
		return fmt.Errorf("upsert app_state: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
