// Package memory implements store.Store in process memory.
//
// Snapshots are deep-copied on the way in and out so callers can never
// alias the stored state. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/points"
	housecupstore "github.com/xraph/housecup/store"
)

// compile-time interface check
var _ housecupstore.Store = (*Store)(nil)

// Store is an in-memory store.Store.
type Store struct {
	mu sync.RWMutex

	snap   *points.Snapshot
	saves  int
	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Seed replaces the stored snapshot without counting as a save.
func (s *Store) Seed(snap *points.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = snap.Clone()
}

// Load returns a copy of the last saved snapshot, or an empty one.
func (s *Store) Load(_ context.Context) (*points.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, housecup.ErrStoreClosed
	}
	if s.snap == nil {
		return &points.Snapshot{}, nil
	}
	return s.snap.Clone(), nil
}

// Save replaces the stored snapshot with a copy of snap.
func (s *Store) Save(_ context.Context, snap *points.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return housecup.ErrStoreClosed
	}
	s.snap = snap.Clone()
	s.saves++
	return nil
}

// Saves returns how many snapshots have been saved.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping fails once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return housecup.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Later loads and saves fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
