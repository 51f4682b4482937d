// Package leaderboard renders ledger rankings as chat messages.
package leaderboard

import (
	"fmt"
	"strings"

	"github.com/xraph/housecup/points"
)

// Directory resolves member ids to display names.
type Directory interface {
	DisplayName(memberID string) (string, bool)
}

// DirectoryFunc adapts a function to a Directory.
type DirectoryFunc func(memberID string) (string, bool)

// DisplayName implements Directory.
func (f DirectoryFunc) DisplayName(memberID string) (string, bool) { return f(memberID) }

// Names is a fixed id to display name Directory.
type Names map[string]string

// DisplayName implements Directory.
func (n Names) DisplayName(memberID string) (string, bool) {
	name, ok := n[memberID]
	return name, ok
}

// IDs is a Directory that shows every member by id.
var IDs = DirectoryFunc(func(memberID string) (string, bool) { return memberID, true })

// RenderMembers renders ranked member entries, one "name: N pts" line each.
// Members the directory cannot resolve are left out, and the N in the
// header counts only the lines shown.
func RenderMembers(entries []points.MemberTotal, dir Directory) string {
	var body strings.Builder
	shown := 0
	for _, e := range entries {
		name, ok := dir.DisplayName(e.MemberID)
		if !ok {
			continue
		}
		fmt.Fprintf(&body, "\n%s: %d pts", name, e.Points)
		shown++
	}
	return fmt.Sprintf("🏆 **Top %d Members** 🏆", shown) + body.String()
}

// RenderHouses renders house standings, one "house: N pts" line each.
func RenderHouses(standings []points.HouseTotal) string {
	var b strings.Builder
	b.WriteString("🏰 **House Standings** 🏰")
	for _, h := range standings {
		fmt.Fprintf(&b, "\n%s: %d pts", h.House, h.Points)
	}
	return b.String()
}
