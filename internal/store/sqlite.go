package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite keeps collections as rows of the migrated collections table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a store on an open, migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Load(ctx context.Context, collection string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	return []byte(data), nil
}

func (s *SQLite) Save(ctx context.Context, collection string, data []byte) error {
	if err := checkName(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", collection, err)
	}
	return nil
}
