package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore returns a Store over the kv_store table, creating the
// table if it does not exist yet.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (Store, error) {
	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &postgresStore{
		db: db,
	}, nil
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return value, true, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv_store (key, value) 
	VALUES ($1, $2) 
	ON CONFLICT (key) 
	DO UPDATE SET value = $2`
	_, err := s.db.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}
