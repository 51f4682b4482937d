// Package store defines the persistence contract of the points ledger.
package store

import (
	"context"

	"github.com/xraph/housecup/points"
)

// Store persists whole ledger snapshots.
//
// Load returns an empty snapshot and a nil error when nothing has been saved
// yet. Unreadable persisted data is reported with an error wrapping
// housecup.ErrCorruptSnapshot so the ledger can fall back to an empty state.
//
// Save replaces the previous snapshot as a single unit: after a failed Save
// the previously saved snapshot is still the one Load returns.
type Store interface {
	Load(ctx context.Context) (*points.Snapshot, error)
	Save(ctx context.Context, snap *points.Snapshot) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
