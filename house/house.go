// Package house defines the closed set of houses a member can score for.
//
// The set is fixed when the ledger is built. Its declared order is the
// canonical order used to break ties in house standings.
package house

import (
	"errors"
	"fmt"
	"strings"
)

// Name is the name of a house, as it appears in a member's roles.
type Name string

// String returns the house name.
func (n Name) String() string { return string(n) }

// Reference houses.
const (
	Gryffondor  Name = "🦁gryffondor"
	Serpentard  Name = "🐍Serpentard"
	Poufsouffle Name = "🦡Poufsouffle"
	Serdaigle   Name = "🦅Serdaigle"
)

// ErrEmptySet is returned when a set is built without any house.
var ErrEmptySet = errors.New("house: set must contain at least one house")

// Set is an ordered, closed set of house names. It is immutable once built
// and safe for concurrent use.
type Set struct {
	names []Name
	rank  map[Name]int
}

// NewSet builds a set from names in canonical order. Names are trimmed;
// empty names and duplicates are rejected.
func NewSet(names ...string) (*Set, error) {
	if len(names) == 0 {
		return nil, ErrEmptySet
	}

	s := &Set{
		names: make([]Name, 0, len(names)),
		rank:  make(map[Name]int, len(names)),
	}
	for _, raw := range names {
		n := Name(strings.TrimSpace(raw))
		if n == "" {
			return nil, errors.New("house: empty house name")
		}
		if _, dup := s.rank[n]; dup {
			return nil, fmt.Errorf("house: duplicate house %q", n)
		}
		s.rank[n] = len(s.names)
		s.names = append(s.names, n)
	}
	return s, nil
}

// MustSet is like NewSet but panics on error.
func MustSet(names ...string) *Set {
	s, err := NewSet(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the four reference houses.
func Default() *Set {
	return MustSet(
		string(Gryffondor),
		string(Serpentard),
		string(Poufsouffle),
		string(Serdaigle),
	)
}

// Names returns the houses in canonical order.
func (s *Set) Names() []Name {
	out := make([]Name, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of houses.
func (s *Set) Len() int { return len(s.names) }

// Contains reports whether name is one of the known houses.
func (s *Set) Contains(name Name) bool {
	_, ok := s.rank[name]
	return ok
}

// Rank returns the canonical position of name, or -1 if it is unknown.
func (s *Set) Rank(name Name) int {
	if r, ok := s.rank[name]; ok {
		return r
	}
	return -1
}

// Resolve picks the scoring house for a member from their roles.
//
// Roles are walked in the order given and the first known house wins.
// A member carrying several house roles only ever scores for that first
// one; the remaining roles are ignored.
func (s *Set) Resolve(roles []string) (Name, bool) {
	for _, role := range roles {
		if n := Name(role); s.Contains(n) {
			return n, true
		}
	}
	return "", false
}
