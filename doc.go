// Package housecup provides a points ledger for community engagement games.
//
// Members earn (and lose) points; every member may belong to one house out
// of a small closed set, and the house collects the same points as its
// member. The ledger keeps both tables in memory, persists every change
// through a pluggable store, and answers ranking queries.
//
// # Quick Start
//
// Create a ledger on top of a store:
//
//	import (
//	    "github.com/xraph/housecup"
//	    "github.com/xraph/housecup/store/file"
//	)
//
//	l := housecup.New(file.New("points_data.json"))
//
//	// Start loads the persisted snapshot. A missing or corrupt file
//	// starts an empty ledger.
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// Award or revoke points for a member, passing the member's roles so the
// ledger can credit their house:
//
//	award, err := l.AwardPoints(ctx, "42", []string{"🦁gryffondor"}, 15)
//	if housecup.IsPersistence(err) {
//	    // Nothing changed; the store write failed.
//	    return err
//	}
//	if !award.InHouse {
//	    // The member has no house; only their own total moved.
//	}
//
// Read rankings:
//
//	top := l.TopMembers(10)
//	houses := l.HouseStandings()
//
// # Consistency
//
// Mutations hold an exclusive lock across the update and the store write.
// When the store write fails the in-memory change is undone, so reloading
// the store always reproduces the ledger's last reported state. Queries
// take a shared lock and never observe a half-applied change.
//
// # Houses
//
// The set of houses is closed and ordered. A member carrying more than one
// house role scores only for the first one in their role list. Ties in
// house standings follow the declared order of the set; ties between
// members follow the order in which members were first seen.
//
// # Stores
//
// store/file keeps a single JSON document and replaces it atomically on
// every change. store/memory is meant for tests. store/sqlite,
// store/postgres and store/mongo keep the same snapshot in a database via
// Grove.
package housecup
