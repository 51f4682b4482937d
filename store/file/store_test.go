package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	housecup "github.com/xraph/housecup"
	"github.com/xraph/housecup/points"
	"github.com/xraph/housecup/store/file"
)

func TestLoadMissingFile(t *testing.T) {
	s := file.New(filepath.Join(t.TempDir(), "points.json"))

	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Members) != 0 || len(snap.Houses) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"garbage", "{{{ definitely not json"},
		{"truncated", `{"user_points": {"1": 4`},
		{"wrong shape", `{"user_points": ["a"]}`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "points.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := file.New(path).Load(context.Background())
			if !errors.Is(err, housecup.ErrCorruptSnapshot) {
				t.Fatalf("Load error = %v, want ErrCorruptSnapshot", err)
			}
			if !errors.Is(err, points.ErrMalformed) {
				t.Errorf("Load error = %v, should also wrap points.ErrMalformed", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := file.New(filepath.Join(t.TempDir(), "points.json"))

	snap := &points.Snapshot{
		Members: []points.MemberTotal{
			{MemberID: "42", Points: -5},
			{MemberID: "7", Points: 30},
			{MemberID: "1000", Points: 30},
		},
		Houses: []points.HouseTotal{
			{House: "A", Points: -5},
			{House: "B", Points: 60},
		},
	}

	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Members) != len(snap.Members) || len(got.Houses) != len(snap.Houses) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, snap)
	}
	for i := range snap.Members {
		if got.Members[i] != snap.Members[i] {
			t.Errorf("member[%d] = %+v, want %+v", i, got.Members[i], snap.Members[i])
		}
	}
	for i := range snap.Houses {
		if got.Houses[i] != snap.Houses[i] {
			t.Errorf("house[%d] = %+v, want %+v", i, got.Houses[i], snap.Houses[i])
		}
	}
}

func TestSaveReplacesWholeFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "points.json")
	s := file.New(path)

	big := &points.Snapshot{}
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		big.Members = append(big.Members, points.MemberTotal{MemberID: id, Points: 100})
	}
	if err := s.Save(ctx, big); err != nil {
		t.Fatalf("Save: %v", err)
	}

	small := &points.Snapshot{Members: []points.MemberTotal{{MemberID: "9", Points: 1}}}
	if err := s.Save(ctx, small); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].MemberID != "9" {
		t.Errorf("expected only member 9 after replace, got %+v", got.Members)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "points.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only points.json in dir, found %v", names)
	}
}

func TestSaveFailureLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "points.json")

	// A non-empty directory at the target path makes the final rename fail.
	if err := os.MkdirAll(filepath.Join(target, "blocker"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := file.New(target).Save(context.Background(), &points.Snapshot{})
	if err == nil {
		t.Fatal("expected Save to fail when the target is a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected temp file to be cleaned up, dir has %d entries", len(entries))
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "points.json")
	if err := file.New(path).Save(context.Background(), &points.Snapshot{}); err == nil {
		t.Fatal("expected Save to fail when the directory does not exist")
	}
}

func TestMigrateCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a", "b", "points.json")
	s := file.New(path)

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Save(ctx, &points.Snapshot{}); err != nil {
		t.Fatalf("Save after Migrate: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := file.New(filepath.Join(t.TempDir(), "points.json"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := s.Load(ctx); !errors.Is(err, housecup.ErrStoreClosed) {
		t.Errorf("Load after Close = %v, want ErrStoreClosed", err)
	}
	if err := s.Save(ctx, &points.Snapshot{}); !errors.Is(err, housecup.ErrStoreClosed) {
		t.Errorf("Save after Close = %v, want ErrStoreClosed", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, housecup.ErrStoreClosed) {
		t.Errorf("Ping after Close = %v, want ErrStoreClosed", err)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := file.New("").Path(); got != file.DefaultPath {
		t.Errorf("Path() = %q, want %q", got, file.DefaultPath)
	}
}
