package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
)

// Store implements port/storage.Store on the prompt_kv table.
// [LSP] Any conforming Store (file, in-memory, SQLite) can substitute.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", portstorage.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM prompt_kv WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying key %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the whole value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO prompt_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upserting key %s: %w", key, err)
	}
	return nil
}
