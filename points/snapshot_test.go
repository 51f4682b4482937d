package points_test

import (
	"testing"

	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/points"
)

func TestEmpty(t *testing.T) {
	set := house.MustSet("A", "B", "C")
	s := points.Empty(set)

	if len(s.Members) != 0 {
		t.Errorf("expected no members, got %v", s.Members)
	}
	if len(s.Houses) != 3 {
		t.Fatalf("expected 3 houses, got %v", s.Houses)
	}
	for i, n := range set.Names() {
		if s.Houses[i] != (points.HouseTotal{House: n}) {
			t.Errorf("house[%d] = %+v, want %q at 0", i, s.Houses[i], n)
		}
	}
}

func TestNormalize(t *testing.T) {
	set := house.MustSet("A", "B", "C")
	s := &points.Snapshot{
		Members: []points.MemberTotal{
			{MemberID: "1", Points: 4},
			{MemberID: "2", Points: 1},
			{MemberID: "1", Points: 6},
		},
		Houses: []points.HouseTotal{
			{House: "C", Points: 9},
			{House: "Z", Points: 100},
			{House: "A", Points: -2},
		},
	}

	dropped := s.Normalize(set)

	if len(dropped) != 1 || dropped[0] != "Z" {
		t.Errorf("dropped = %v, want [Z]", dropped)
	}

	wantHouses := []points.HouseTotal{{House: "A", Points: -2}, {House: "B", Points: 0}, {House: "C", Points: 9}}
	if len(s.Houses) != len(wantHouses) {
		t.Fatalf("houses = %v, want %v", s.Houses, wantHouses)
	}
	for i := range wantHouses {
		if s.Houses[i] != wantHouses[i] {
			t.Errorf("house[%d] = %+v, want %+v", i, s.Houses[i], wantHouses[i])
		}
	}

	wantMembers := []points.MemberTotal{{MemberID: "1", Points: 6}, {MemberID: "2", Points: 1}}
	if len(s.Members) != len(wantMembers) {
		t.Fatalf("members = %v, want %v", s.Members, wantMembers)
	}
	for i := range wantMembers {
		if s.Members[i] != wantMembers[i] {
			t.Errorf("member[%d] = %+v, want %+v", i, s.Members[i], wantMembers[i])
		}
	}
}

func TestClone(t *testing.T) {
	s := &points.Snapshot{
		Members: []points.MemberTotal{{MemberID: "1", Points: 1}},
		Houses:  []points.HouseTotal{{House: "A", Points: 1}},
	}
	c := s.Clone()
	c.Members[0].Points = 99
	c.Houses[0].Points = 99

	if s.Members[0].Points != 1 || s.Houses[0].Points != 1 {
		t.Error("Clone shares backing arrays with the original")
	}
}

func TestLookup(t *testing.T) {
	s := &points.Snapshot{
		Members: []points.MemberTotal{{MemberID: "1", Points: -5}},
		Houses:  []points.HouseTotal{{House: "A", Points: 7}},
	}

	if p, ok := s.Member("1"); !ok || p != -5 {
		t.Errorf("Member(1) = (%d, %v)", p, ok)
	}
	if _, ok := s.Member("2"); ok {
		t.Error("Member(2) should be absent")
	}
	if p, ok := s.House("A"); !ok || p != 7 {
		t.Errorf("House(A) = (%d, %v)", p, ok)
	}
	if _, ok := s.House("B"); ok {
		t.Error("House(B) should be absent")
	}
}

func TestAwardRevoked(t *testing.T) {
	if (&points.Award{Delta: 5}).Revoked() {
		t.Error("positive delta reported as revoked")
	}
	if !(&points.Award{Delta: -5}).Revoked() {
		t.Error("negative delta not reported as revoked")
	}
}
