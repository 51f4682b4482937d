package points

import "github.com/xraph/housecup/house"

// Snapshot is the full state of a ledger at one point in time.
//
// Members are kept in first-seen order; that order breaks ties in member
// rankings and must survive a save/load cycle. Houses are kept in canonical
// order once normalized.
type Snapshot struct {
	Members []MemberTotal
	Houses  []HouseTotal
}

// Empty returns a snapshot with no members and every house of set at zero.
func Empty(set *house.Set) *Snapshot {
	names := set.Names()
	s := &Snapshot{
		Members: []MemberTotal{},
		Houses:  make([]HouseTotal, len(names)),
	}
	for i, n := range names {
		s.Houses[i] = HouseTotal{House: n}
	}
	return s
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Members: make([]MemberTotal, len(s.Members)),
		Houses:  make([]HouseTotal, len(s.Houses)),
	}
	copy(c.Members, s.Members)
	copy(c.Houses, s.Houses)
	return c
}

// Normalize fits the snapshot to the closed set of houses.
//
// The house table ends up holding exactly the houses of set, in canonical
// order, with absent houses at zero. Houses that are not part of set are
// removed and returned. Repeated member ids collapse into their first
// position, keeping the last value seen.
func (s *Snapshot) Normalize(set *house.Set) []house.Name {
	var dropped []house.Name

	totals := make(map[house.Name]int64, len(s.Houses))
	for _, h := range s.Houses {
		if !set.Contains(h.House) {
			dropped = append(dropped, h.House)
			continue
		}
		totals[h.House] = h.Points
	}

	names := set.Names()
	s.Houses = make([]HouseTotal, len(names))
	for i, n := range names {
		s.Houses[i] = HouseTotal{House: n, Points: totals[n]}
	}

	seen := make(map[string]int, len(s.Members))
	members := make([]MemberTotal, 0, len(s.Members))
	for _, m := range s.Members {
		if i, ok := seen[m.MemberID]; ok {
			members[i].Points = m.Points
			continue
		}
		seen[m.MemberID] = len(members)
		members = append(members, m)
	}
	s.Members = members

	return dropped
}

// Member returns the total of memberID and whether it is present.
func (s *Snapshot) Member(memberID string) (int64, bool) {
	for _, m := range s.Members {
		if m.MemberID == memberID {
			return m.Points, true
		}
	}
	return 0, false
}

// House returns the total of name and whether it is present.
func (s *Snapshot) House(name house.Name) (int64, bool) {
	for _, h := range s.Houses {
		if h.House == name {
			return h.Points, true
		}
	}
	return 0, false
}
