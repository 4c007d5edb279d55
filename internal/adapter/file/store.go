package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	portstorage "github.com/alanyang/prompt-manager/internal/port/storage"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var removeFile = os.Remove

// Store keeps each key in its own <dir>/<key>.json file.
// Writes go to a temp file that is renamed over the target, so a reader
// never observes a half-written value.
type Store struct {
	mu  sync.RWMutex
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Ping verifies the directory exists (creating it if needed) and is writable.
func (s *Store) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: ensure data dir: %w", portstorage.ErrUnavailable, err)
	}
	probe, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("%w: data dir not writable: %w", portstorage.ErrUnavailable, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := removeFile(name); err != nil {
		return fmt.Errorf("%w: remove probe file: %w", portstorage.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(path, []byte(value)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// writeAtomic writes to a temp file in the target directory then renames it
// over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
