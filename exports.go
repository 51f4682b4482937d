package housecup

import (
	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/points"
)

// Re-export common types for convenience so users don't have to import the
// points and house packages.

// MemberTotal is re-exported from the points package.
type MemberTotal = points.MemberTotal

// HouseTotal is re-exported from the points package.
type HouseTotal = points.HouseTotal

// Award is re-exported from the points package.
type Award = points.Award

// Snapshot is re-exported from the points package.
type Snapshot = points.Snapshot

// Activity is re-exported from the points package.
type Activity = points.Activity

// HouseName is re-exported from the house package.
type HouseName = house.Name

// Re-export house set constructors
var (
	NewHouseSet   = house.NewSet
	DefaultHouses = house.Default
)
