// Package plugin provides an extensible plugin system for the points ledger.
// Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/housecup/id"
	"github.com/xraph/housecup/points"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called once the ledger has loaded its snapshot.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the ledger is stopping.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Snapshot hooks
// ──────────────────────────────────────────────────

// OnSnapshotLoaded is called after the persisted snapshot was read at start.
type OnSnapshotLoaded interface {
	Plugin
	OnSnapshotLoaded(ctx context.Context, members int, elapsed time.Duration) error
}

// OnSnapshotCorrupt is called when the persisted snapshot could not be
// decoded and the ledger started empty instead.
type OnSnapshotCorrupt interface {
	Plugin
	OnSnapshotCorrupt(ctx context.Context, cause error) error
}

// ──────────────────────────────────────────────────
// Mutation hooks
// ──────────────────────────────────────────────────

// OnPointsAwarded is called after points were awarded or revoked and persisted.
type OnPointsAwarded interface {
	Plugin
	OnPointsAwarded(ctx context.Context, award *points.Award) error
}

// OnLedgerReset is called after every total was reset and persisted.
type OnLedgerReset interface {
	Plugin
	OnLedgerReset(ctx context.Context, changeID id.ID, clearedMembers int) error
}

// OnPersistFailed is called when a mutation could not be persisted and was
// rolled back. op is "award" or "reset".
type OnPersistFailed interface {
	Plugin
	OnPersistFailed(ctx context.Context, op string, err error) error
}
