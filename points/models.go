// Package points holds the ledger's snapshot model and its wire format.
package points

import (
	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/id"
)

// MemberTotal is one row of the member points table.
type MemberTotal struct {
	MemberID string `json:"member_id"`
	Points   int64  `json:"points"`
}

// HouseTotal is one row of the house points table.
type HouseTotal struct {
	House  house.Name `json:"house"`
	Points int64      `json:"points"`
}

// Award describes a committed point change.
type Award struct {
	ChangeID    id.ID  `json:"change_id"`
	MemberID    string `json:"member_id"`
	Delta       int64  `json:"delta"`
	MemberTotal int64  `json:"member_total"`

	// InHouse is false when none of the member's roles is a known house.
	// The member total still moved; no house did.
	InHouse    bool       `json:"in_house"`
	House      house.Name `json:"house,omitempty"`
	HouseTotal int64      `json:"house_total,omitempty"`
}

// Revoked reports whether the award took points away.
func (a *Award) Revoked() bool { return a.Delta < 0 }
