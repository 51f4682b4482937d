package housecup_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/points"
	"github.com/xraph/housecup/store/file"
	"github.com/xraph/housecup/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and behave as described.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Memory store for the demo, use the file store in production.
		store := memory.New()

		l := housecup.New(store,
			housecup.WithLogger(slog.Default()),
			housecup.WithHouses(house.Default()),
		)

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		award, err := l.AwardPoints(ctx, "1234", []string{"member", string(house.Serdaigle)}, 20)
		if err != nil {
			t.Fatal(err)
		}
		if award.House != house.Serdaigle || award.HouseTotal != 20 {
			t.Errorf("unexpected award %+v", award)
		}

		if _, err := l.AwardActivity(ctx, "1234", []string{string(house.Serdaigle)}, points.ActivityQuiz); err != nil {
			t.Fatal(err)
		}

		top := l.TopMembers(10)
		if len(top) != 1 || top[0].Points != 23 {
			t.Errorf("TopMembers = %v", top)
		}

		standings := l.HouseStandings()
		if standings[0].House != house.Serdaigle {
			t.Errorf("HouseStandings = %v", standings)
		}
	})

	t.Run("FileStoreExample", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), file.DefaultPath)

		ctx := context.Background()
		l := housecup.New(file.New(path), housecup.WithLogger(quiet))
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}

		if _, err := l.AwardPoints(ctx, "42", []string{string(house.Gryffondor)}, 5); err != nil {
			t.Fatal(err)
		}
		if err := l.Stop(); err != nil {
			t.Fatal(err)
		}

		again := housecup.New(file.New(path), housecup.WithLogger(quiet))
		if err := again.Start(ctx); err != nil {
			t.Fatal(err)
		}
		if got := again.GetMemberPoints("42"); got != 5 {
			t.Errorf("reloaded total = %d, want 5", got)
		}
	})

	t.Run("ErrorHandlingExample", func(t *testing.T) {
		l := housecup.New(memory.New(), housecup.WithLogger(quiet))

		_, err := l.AwardPoints(context.Background(), "1", nil, 1)
		if !errors.Is(err, housecup.ErrNotStarted) {
			t.Fatalf("AwardPoints before Start = %v, want ErrNotStarted", err)
		}
		if housecup.IsPersistence(err) {
			t.Error("ErrNotStarted reported as a persistence failure")
		}
	})
}
