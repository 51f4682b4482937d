package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/housecup/points"
)

// snapshotModel is one ledger snapshot. document holds the ordered JSON wire
// format as TEXT so member order survives the round trip.
type snapshotModel struct {
	grove.BaseModel `grove:"table:housecup_snapshots"`

	ID        string    `grove:"id,pk"`
	Document  string    `grove:"document"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toSnapshotModel(key string, snap *points.Snapshot) (*snapshotModel, error) {
	doc, err := points.Encode(snap)
	if err != nil {
		return nil, err
	}
	return &snapshotModel{
		ID:        key,
		Document:  string(doc),
		UpdatedAt: now(),
	}, nil
}

func fromSnapshotModel(m *snapshotModel) (*points.Snapshot, error) {
	return points.Decode([]byte(m.Document))
}

func now() time.Time {
	return time.Now().UTC()
}
