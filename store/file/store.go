// Package file implements store.Store on a single JSON file.
//
// The whole snapshot is rewritten on every save. Writes go to a temporary
// file in the same directory which is synced and then renamed over the
// target, so readers only ever see a complete previous or complete new file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	housecup "github.com/xraph/housecup"
	"github.com/xraph/housecup/points"
	housecupstore "github.com/xraph/housecup/store"
)

// DefaultPath is the default snapshot file name.
const DefaultPath = "points_data.json"

// compile-time interface check
var _ housecupstore.Store = (*Store)(nil)

// Store implements store.Store on a JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	perm   fs.FileMode
	closed bool
}

// Option configures a file Store.
type Option func(*Store)

// WithPerm sets the permission bits of the written file (default 0o644).
func WithPerm(perm fs.FileMode) Option {
	return func(s *Store) { s.perm = perm }
}

// New creates a store backed by the file at path.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the snapshot file. A missing file yields an empty snapshot.
func (s *Store) Load(_ context.Context) (*points.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, housecup.ErrStoreClosed
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &points.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("housecup/file: read %s: %w", s.path, err)
	}

	snap, err := points.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("housecup/file: %s: %w: %w", s.path, housecup.ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// Save atomically replaces the snapshot file.
func (s *Store) Save(_ context.Context, snap *points.Snapshot) error {
	data, err := points.Encode(snap)
	if err != nil {
		return fmt.Errorf("housecup/file: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return housecup.ErrStoreClosed
	}
	return s.replace(data)
}

func (s *Store) replace(data []byte) (err error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("housecup/file: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()           //nolint:errcheck // already failing
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("housecup/file: write temp: %w", err)
	}
	if err = tmp.Chmod(s.perm); err != nil {
		return fmt.Errorf("housecup/file: chmod temp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("housecup/file: sync temp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("housecup/file: close temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("housecup/file: rename: %w", err)
	}
	return nil
}

// Migrate makes sure the parent directory exists.
func (s *Store) Migrate(_ context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("housecup/file: create %s: %w", dir, err)
	}
	return nil
}

// Ping checks that the parent directory is reachable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return housecup.ErrStoreClosed
	}
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("housecup/file: stat: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("housecup/file: %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// Close marks the store closed. Files are not held open between calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
