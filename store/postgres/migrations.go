package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the housecup store (PostgreSQL).
//
// document is TEXT rather than JSONB: JSONB does not keep object key order,
// and member order is the ranking tie-breaker.
var Migrations = migrate.NewGroup("housecup")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_housecup_snapshots",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS housecup_snapshots (
    id         TEXT PRIMARY KEY,
    document   TEXT NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS housecup_snapshots`)
				return err
			},
		},
	)
}
