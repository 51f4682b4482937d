package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/housecup/id"
	"github.com/xraph/housecup/plugin"
	"github.com/xraph/housecup/points"
)

type recorder struct {
	name string

	mu      sync.Mutex
	awards  []*points.Award
	resets  []int
	failed  []string
	corrupt []error
	loaded  []int
	inits   int
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnInit(context.Context, interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return nil
}

func (r *recorder) OnPointsAwarded(_ context.Context, a *points.Award) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards = append(r.awards, a)
	return nil
}

func (r *recorder) OnLedgerReset(_ context.Context, _ id.ID, cleared int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, cleared)
	return nil
}

func (r *recorder) OnPersistFailed(_ context.Context, op string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, op)
	return nil
}

func (r *recorder) OnSnapshotCorrupt(_ context.Context, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corrupt = append(r.corrupt, cause)
	return nil
}

func (r *recorder) OnSnapshotLoaded(_ context.Context, members int, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = append(r.loaded, members)
	return nil
}

type nameOnly struct{ name string }

func (n nameOnly) Name() string { return n.name }

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) OnPointsAwarded(context.Context, *points.Award) error {
	return errors.New("boom")
}

type blocking struct{ release chan struct{} }

func (blocking) Name() string { return "blocking" }
func (b blocking) OnLedgerReset(context.Context, id.ID, int) error {
	<-b.release
	return nil
}

func quietRegistry() *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterDuplicate(t *testing.T) {
	r := quietRegistry()
	if err := r.Register(nameOnly{"a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(nameOnly{"a"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if r.Get("a") == nil {
		t.Error("Get(a) returned nil")
	}
	if r.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	if len(r.List()) != 1 {
		t.Errorf("List() = %v", r.List())
	}
}

func TestEmitDispatchesToImplementers(t *testing.T) {
	ctx := context.Background()
	r := quietRegistry()
	rec := &recorder{name: "rec"}
	_ = r.Register(rec)
	_ = r.Register(nameOnly{"plain"})

	r.EmitInit(ctx, nil)
	r.EmitSnapshotLoaded(ctx, 3, time.Millisecond)
	r.EmitSnapshotCorrupt(ctx, errors.New("bad"))
	r.EmitPointsAwarded(ctx, &points.Award{MemberID: "1", Delta: 5})
	r.EmitLedgerReset(ctx, id.NewResetID(), 4)
	r.EmitPersistFailed(ctx, "award", errors.New("disk full"))
	r.EmitShutdown(ctx)

	if rec.inits != 1 {
		t.Errorf("inits = %d, want 1", rec.inits)
	}
	if len(rec.loaded) != 1 || rec.loaded[0] != 3 {
		t.Errorf("loaded = %v", rec.loaded)
	}
	if len(rec.corrupt) != 1 {
		t.Errorf("corrupt = %v", rec.corrupt)
	}
	if len(rec.awards) != 1 || rec.awards[0].MemberID != "1" {
		t.Errorf("awards = %v", rec.awards)
	}
	if len(rec.resets) != 1 || rec.resets[0] != 4 {
		t.Errorf("resets = %v", rec.resets)
	}
	if len(rec.failed) != 1 || rec.failed[0] != "award" {
		t.Errorf("failed = %v", rec.failed)
	}
}

func TestHookErrorsAreNotPropagated(t *testing.T) {
	r := quietRegistry()
	rec := &recorder{name: "rec"}
	_ = r.Register(failing{})
	_ = r.Register(rec)

	r.EmitPointsAwarded(context.Background(), &points.Award{MemberID: "1"})

	if len(rec.awards) != 1 {
		t.Error("a failing plugin prevented later plugins from running")
	}
}

func TestHookTimeout(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	b := blocking{release: make(chan struct{})}
	defer close(b.release)
	_ = r.Register(b)

	done := make(chan struct{})
	go func() {
		r.EmitLedgerReset(context.Background(), id.NewResetID(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("EmitLedgerReset did not return after the hook timeout")
	}
}
