package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/points"
	housecupstore "github.com/xraph/housecup/store"
)

// DefaultKey is the row id used when no key is configured.
const DefaultKey = "default"

// compile-time interface check
var _ housecupstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM. Every ledger is a
// single row, so a save is one upsert.
type Store struct {
	db  *grove.DB
	pg  *pgdriver.PgDB
	key string
}

// Option configures a Store.
type Option func(*Store)

// WithKey stores the snapshot under key, so several ledgers can share a table.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		pg:  pgdriver.Unwrap(db),
		key: DefaultKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("housecup/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("housecup/postgres: migration failed: %w", err)
	}
	return nil
}

// Load reads the snapshot row. A missing row is an empty snapshot.
func (s *Store) Load(ctx context.Context) (*points.Snapshot, error) {
	m := new(snapshotModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", s.key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &points.Snapshot{}, nil
		}
		return nil, fmt.Errorf("housecup/postgres: load snapshot: %w", err)
	}

	snap, err := fromSnapshotModel(m)
	if err != nil {
		return nil, fmt.Errorf("housecup/postgres: %s: %w: %w", s.key, housecup.ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// Save upserts the snapshot row.
func (s *Store) Save(ctx context.Context, snap *points.Snapshot) error {
	m, err := toSnapshotModel(s.key, snap)
	if err != nil {
		return fmt.Errorf("housecup/postgres: encode snapshot: %w", err)
	}
	_, err = s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("housecup/postgres: save snapshot: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
