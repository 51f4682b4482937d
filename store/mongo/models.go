package mongo

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/points"
)

// snapshotModel is one ledger snapshot. Members and houses are arrays, not
// sub-documents, so their order is kept exactly.
type snapshotModel struct {
	grove.BaseModel `grove:"table:housecup_snapshots"`

	ID        string        `grove:"id,pk"      bson:"_id"`
	Members   []memberModel `grove:"members"    bson:"members"`
	Houses    []houseModel  `grove:"houses"     bson:"houses"`
	UpdatedAt time.Time     `grove:"updated_at" bson:"updated_at"`
}

type memberModel struct {
	MemberID string `bson:"member_id"`
	Points   int64  `bson:"points"`
}

type houseModel struct {
	House  string `bson:"house"`
	Points int64  `bson:"points"`
}

func toSnapshotModel(key string, snap *points.Snapshot) *snapshotModel {
	m := &snapshotModel{
		ID:        key,
		Members:   make([]memberModel, len(snap.Members)),
		Houses:    make([]houseModel, len(snap.Houses)),
		UpdatedAt: now(),
	}
	for i, mt := range snap.Members {
		m.Members[i] = memberModel{MemberID: mt.MemberID, Points: mt.Points}
	}
	for i, ht := range snap.Houses {
		m.Houses[i] = houseModel{House: string(ht.House), Points: ht.Points}
	}
	return m
}

var errEmptyMemberID = errors.New("empty member id")

func fromSnapshotModel(m *snapshotModel) (*points.Snapshot, error) {
	snap := &points.Snapshot{
		Members: make([]points.MemberTotal, 0, len(m.Members)),
		Houses:  make([]points.HouseTotal, 0, len(m.Houses)),
	}
	for i, mm := range m.Members {
		if mm.MemberID == "" {
			return nil, fmt.Errorf("members[%d]: %w", i, errEmptyMemberID)
		}
		snap.Members = append(snap.Members, points.MemberTotal{MemberID: mm.MemberID, Points: mm.Points})
	}
	for _, hm := range m.Houses {
		snap.Houses = append(snap.Houses, points.HouseTotal{House: house.Name(hm.House), Points: hm.Points})
	}
	return snap, nil
}

func now() time.Time {
	return time.Now().UTC()
}
