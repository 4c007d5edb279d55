package storage

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks github.com/alanyang/prompt-manager/internal/port/storage Store

// ErrUnavailable is returned by a backend that cannot be reached at all.
var ErrUnavailable = errors.New("storage: unavailable")

// Store is a key-value text store. Every Set replaces the whole value.
// [DIP] service/prompt depends on this interface, not on any concrete backend.
// [LSP] File, in-memory, Postgres and SQLite backends are all valid substitutes.
type Store interface {
	// Get returns the value under key. ok is false when the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the value under key.
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report availability up front.
type Pinger interface {
	Ping(ctx context.Context) error
}
