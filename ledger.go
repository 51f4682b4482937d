package housecup

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/id"
	"github.com/xraph/housecup/plugin"
	"github.com/xraph/housecup/points"
	"github.com/xraph/housecup/store"
)

// Ledger is the authoritative in-memory state of all point totals.
//
// Every mutation is persisted through the store before it is reported as
// committed. When the store write fails the in-memory change is undone, so
// a reload of the store always reproduces what the ledger reports.
type Ledger struct {
	store      store.Store
	plugins    *plugin.Registry
	logger     *slog.Logger
	houses     *house.Set
	activities map[points.Activity]int64

	mu      sync.RWMutex
	started bool
	members []points.MemberTotal // first-seen order
	index   map[string]int       // member id -> position in members
	totals  []int64              // indexed by house rank
}

// New creates a new Ledger instance. Call Start before mutating it.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:      s,
		plugins:    plugin.NewRegistry(),
		logger:     slog.Default(),
		houses:     house.Default(),
		activities: points.DefaultActivityPoints(),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.install(points.Empty(l.houses))
	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithHouses sets the closed set of houses (default: house.Default()).
func WithHouses(set *house.Set) Option {
	return func(l *Ledger) {
		if set != nil {
			l.houses = set
		}
	}
}

// WithActivityPoints replaces the activity points table.
func WithActivityPoints(table map[points.Activity]int64) Option {
	return func(l *Ledger) {
		l.activities = make(map[points.Activity]int64, len(table))
		for k, v := range table {
			l.activities[k] = v
		}
	}
}

// WithHookTimeout bounds how long a single plugin hook may run.
func WithHookTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.plugins.WithTimeout(d)
	}
}

// Start migrates the store and loads the persisted snapshot.
//
// A missing snapshot starts an empty ledger. A corrupt snapshot is reported
// as a warning and the ledger starts empty as well; only store failures
// other than corruption make Start fail.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	start := time.Now()
	snap, err := l.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptSnapshot):
		l.logger.Warn("corrupt snapshot, starting with an empty ledger",
			"error", err,
		)
		l.plugins.EmitSnapshotCorrupt(ctx, err)
		snap = points.Empty(l.houses)
	case err != nil:
		return fmt.Errorf("housecup: load snapshot: %w", err)
	}

	if dropped := snap.Normalize(l.houses); len(dropped) > 0 {
		l.logger.Warn("dropping unknown houses from snapshot",
			"houses", dropped,
		)
	}

	l.mu.Lock()
	l.install(snap)
	l.started = true
	l.mu.Unlock()

	elapsed := time.Since(start)
	l.plugins.EmitSnapshotLoaded(ctx, len(snap.Members), elapsed)
	l.plugins.EmitInit(ctx, l)

	l.logger.Info("ledger started",
		"members", len(snap.Members),
		"houses", l.houses.Len(),
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return nil
}

// Stop shuts down the Ledger. Every committed mutation is already persisted,
// so nothing is flushed here.
func (l *Ledger) Stop() error {
	l.mu.Lock()
	l.started = false
	l.mu.Unlock()

	l.plugins.EmitShutdown(context.Background())

	return l.store.Close()
}

// Houses returns the closed set of houses.
func (l *Ledger) Houses() *house.Set { return l.houses }

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// GetMemberPoints returns the member's total, or 0 if the member was never
// recorded. It never creates an entry.
func (l *Ledger) GetMemberPoints(memberID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i, ok := l.index[memberID]; ok {
		return l.members[i].Points
	}
	return 0
}

// GetHousePoints returns the total of a house, or 0 if it is not known.
func (l *Ledger) GetHousePoints(name house.Name) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if r := l.houses.Rank(name); r >= 0 {
		return l.totals[r]
	}
	return 0
}

// TopMembers returns up to n members by points, highest first. Members with
// equal points keep their first-seen order.
func (l *Ledger) TopMembers(n int) []points.MemberTotal {
	if n <= 0 {
		return []points.MemberTotal{}
	}

	l.mu.RLock()
	ranked := make([]points.MemberTotal, len(l.members))
	copy(ranked, l.members)
	l.mu.RUnlock()

	slices.SortStableFunc(ranked, func(a, b points.MemberTotal) int {
		return cmp.Compare(b.Points, a.Points)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// HouseStandings returns every house by points, highest first. Houses with
// equal points keep their canonical order.
func (l *Ledger) HouseStandings() []points.HouseTotal {
	names := l.houses.Names()

	l.mu.RLock()
	standings := make([]points.HouseTotal, len(names))
	for i, n := range names {
		standings[i] = points.HouseTotal{House: n, Points: l.totals[i]}
	}
	l.mu.RUnlock()

	slices.SortStableFunc(standings, func(a, b points.HouseTotal) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return standings
}

// Snapshot returns a consistent copy of the current state.
func (l *Ledger) Snapshot() *points.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

// AwardPoints adds delta to a member and to the member's house.
//
// delta may be negative to revoke points; totals are allowed to go below
// zero. The house is the first of the member's roles that is a known house.
// A member without a house still has their own total updated and the
// returned Award has InHouse set to false.
//
// A delta that would push the member or house total past the int64 range
// is rejected with ErrInvalidAmount and nothing changes.
//
// The new state is persisted before AwardPoints returns. If that fails the
// change is undone and a *PersistenceError is returned.
func (l *Ledger) AwardPoints(ctx context.Context, memberID string, roles []string, delta int64) (*points.Award, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, ValidationError{Field: "member_id", Message: "must not be empty"}
	}
	if !utf8.ValidString(memberID) {
		return nil, ValidationError{Field: "member_id", Message: "must be valid UTF-8"}
	}

	award, err := l.award(ctx, memberID, roles, delta)
	if err != nil {
		if IsPersistence(err) {
			l.logger.Error("failed to persist award",
				"member_id", memberID,
				"delta", delta,
				"error", err,
			)
			l.plugins.EmitPersistFailed(ctx, "award", err)
		}
		return nil, err
	}

	l.logger.Info("points awarded",
		"change_id", award.ChangeID.String(),
		"member_id", award.MemberID,
		"delta", award.Delta,
		"member_total", award.MemberTotal,
		"house", award.House,
		"in_house", award.InHouse,
	)
	l.plugins.EmitPointsAwarded(ctx, award)

	return award, nil
}

func (l *Ledger) award(ctx context.Context, memberID string, roles []string, delta int64) (*points.Award, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return nil, ErrNotStarted
	}

	h, inHouse := l.houses.Resolve(roles)
	rank := l.houses.Rank(h)

	pos, existed := l.index[memberID]
	var current int64
	if existed {
		current = l.members[pos].Points
	}
	if overflows(current, delta) {
		return nil, fmt.Errorf("%w: member %s total would overflow", ErrInvalidAmount, memberID)
	}
	if inHouse && overflows(l.totals[rank], delta) {
		return nil, fmt.Errorf("%w: house %s total would overflow", ErrInvalidAmount, h)
	}

	if !existed {
		pos = len(l.members)
		l.members = append(l.members, points.MemberTotal{MemberID: memberID})
		l.index[memberID] = pos
	}
	l.members[pos].Points += delta
	if inHouse {
		l.totals[rank] += delta
	}

	if err := l.store.Save(ctx, l.snapshotLocked()); err != nil {
		if inHouse {
			l.totals[rank] -= delta
		}
		if existed {
			l.members[pos].Points -= delta
		} else {
			l.members = l.members[:pos]
			delete(l.index, memberID)
		}
		return nil, &PersistenceError{Op: "award", Err: err}
	}

	a := &points.Award{
		ChangeID:    id.NewAwardID(),
		MemberID:    memberID,
		Delta:       delta,
		MemberTotal: l.members[pos].Points,
		InHouse:     inHouse,
	}
	if inHouse {
		a.House = h
		a.HouseTotal = l.totals[rank]
	}
	return a, nil
}

// overflows reports whether total+delta leaves the int64 range.
func overflows(total, delta int64) bool {
	if delta > 0 {
		return total > math.MaxInt64-delta
	}
	return total < math.MinInt64-delta
}

// AwardActivity awards the points configured for activity.
func (l *Ledger) AwardActivity(ctx context.Context, memberID string, roles []string, activity points.Activity) (*points.Award, error) {
	delta, ok := l.activities[activity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	return l.AwardPoints(ctx, memberID, roles, delta)
}

// ActivityPoints returns the points awarded for activity.
func (l *Ledger) ActivityPoints(activity points.Activity) (int64, bool) {
	delta, ok := l.activities[activity]
	return delta, ok
}

// ResetAll clears every member and sets every house back to zero.
//
// The cleared state is persisted before ResetAll returns. If that fails the
// previous state is restored and a *PersistenceError is returned.
func (l *Ledger) ResetAll(ctx context.Context) (id.ID, error) {
	cleared, err := l.reset(ctx)
	if err != nil {
		if IsPersistence(err) {
			l.logger.Error("failed to persist reset",
				"error", err,
			)
			l.plugins.EmitPersistFailed(ctx, "reset", err)
		}
		return id.Nil, err
	}

	changeID := id.NewResetID()
	l.logger.Info("ledger reset",
		"change_id", changeID.String(),
		"cleared_members", cleared,
	)
	l.plugins.EmitLedgerReset(ctx, changeID, cleared)

	return changeID, nil
}

func (l *Ledger) reset(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return 0, ErrNotStarted
	}

	prevMembers, prevIndex, prevTotals := l.members, l.index, l.totals
	l.install(points.Empty(l.houses))

	if err := l.store.Save(ctx, l.snapshotLocked()); err != nil {
		l.members, l.index, l.totals = prevMembers, prevIndex, prevTotals
		return 0, &PersistenceError{Op: "reset", Err: err}
	}
	return len(prevMembers), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// install replaces the state with a normalized snapshot. Callers hold the
// write lock, or own l exclusively.
func (l *Ledger) install(snap *points.Snapshot) {
	l.members = make([]points.MemberTotal, len(snap.Members))
	copy(l.members, snap.Members)

	l.index = make(map[string]int, len(snap.Members))
	for i, m := range l.members {
		l.index[m.MemberID] = i
	}

	l.totals = make([]int64, l.houses.Len())
	for _, h := range snap.Houses {
		if r := l.houses.Rank(h.House); r >= 0 {
			l.totals[r] = h.Points
		}
	}
}

func (l *Ledger) snapshotLocked() *points.Snapshot {
	names := l.houses.Names()
	snap := &points.Snapshot{
		Members: make([]points.MemberTotal, len(l.members)),
		Houses:  make([]points.HouseTotal, len(names)),
	}
	copy(snap.Members, l.members)
	for i, n := range names {
		snap.Houses[i] = points.HouseTotal{House: n, Points: l.totals[i]}
	}
	return snap
}
