package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteBlobs is a key-value store of opaque values kept in the kv_store
// table. Each Put replaces the whole value.
type SQLiteBlobs struct {
	db *sql.DB
}

func NewSQLiteBlobs(db *sql.DB) *SQLiteBlobs {
	return &SQLiteBlobs{db: db}
}

func (s *SQLiteBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, fmt.Errorf("blob key is required")
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteBlobs) Put(ctx context.Context, key string, value []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_store(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("put blob %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobs) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
