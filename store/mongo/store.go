package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/points"
	housecupstore "github.com/xraph/housecup/store"
)

// Collection name constants.
const (
	colSnapshots = "housecup_snapshots"
)

// DefaultKey is the document id used when no key is configured.
const DefaultKey = "default"

// compile-time interface check
var _ housecupstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM. Every ledger is a
// single document, so a save is one upsert.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
	key string
}

// Option configures a Store.
type Option func(*Store)

// WithKey stores the snapshot under key, so several ledgers can share a
// collection.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
		key: DefaultKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the housecup collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("housecup/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Load reads the snapshot document. A missing document is an empty snapshot.
func (s *Store) Load(ctx context.Context) (*points.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": s.key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return &points.Snapshot{}, nil
		}
		return nil, fmt.Errorf("housecup/mongo: load snapshot: %w", err)
	}

	snap, err := fromSnapshotModel(&m)
	if err != nil {
		return nil, fmt.Errorf("housecup/mongo: %s: %w: %w", s.key, housecup.ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// Save upserts the snapshot document.
func (s *Store) Save(ctx context.Context, snap *points.Snapshot) error {
	m := toSnapshotModel(s.key, snap)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        m.ID,
			"members":    m.Members,
			"houses":     m.Houses,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("housecup/mongo: save snapshot: %w", err)
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

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSnapshots: {
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
	}
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
