// Package observability provides a metrics extension for the points ledger
// that records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/housecup/id"
	"github.com/xraph/housecup/plugin"
	"github.com/xraph/housecup/points"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnInit            = (*MetricsExtension)(nil)
	_ plugin.OnSnapshotLoaded  = (*MetricsExtension)(nil)
	_ plugin.OnSnapshotCorrupt = (*MetricsExtension)(nil)
	_ plugin.OnPointsAwarded   = (*MetricsExtension)(nil)
	_ plugin.OnLedgerReset     = (*MetricsExtension)(nil)
	_ plugin.OnPersistFailed   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger lifecycle metrics.
// Register it as a ledger plugin to track points activity.
type MetricsExtension struct {
	factory MetricFactory

	// Snapshot metrics
	SnapshotLoaded      Counter
	SnapshotCorrupt     Counter
	SnapshotLoadLatency Histogram

	// Points metrics
	PointsAwarded    Counter
	PointsRevoked    Counter
	AwardsOutOfHouse Counter
	AwardMagnitude   Histogram

	// Reset metrics
	LedgerResets   Counter
	MembersCleared Counter

	// Error metrics
	PersistFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Snapshot metrics
		SnapshotLoaded:      factory.Counter("housecup.snapshot.loaded"),
		SnapshotCorrupt:     factory.Counter("housecup.snapshot.corrupt"),
		SnapshotLoadLatency: factory.Histogram("housecup.snapshot.load.latency_ms"),

		// Points metrics
		PointsAwarded:    factory.Counter("housecup.points.awarded"),
		PointsRevoked:    factory.Counter("housecup.points.revoked"),
		AwardsOutOfHouse: factory.Counter("housecup.points.out_of_house"),
		AwardMagnitude:   factory.Histogram("housecup.points.magnitude"),

		// Reset metrics
		LedgerResets:   factory.Counter("housecup.ledger.resets"),
		MembersCleared: factory.Counter("housecup.ledger.members_cleared"),

		// Error metrics
		PersistFailures: factory.Counter("housecup.store.persist_failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Snapshot hooks
// ──────────────────────────────────────────────────

// OnSnapshotLoaded implements plugin.OnSnapshotLoaded.
func (m *MetricsExtension) OnSnapshotLoaded(_ context.Context, _ int, elapsed time.Duration) error {
	m.SnapshotLoaded.Inc()
	m.SnapshotLoadLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// OnSnapshotCorrupt implements plugin.OnSnapshotCorrupt.
func (m *MetricsExtension) OnSnapshotCorrupt(_ context.Context, _ error) error {
	m.SnapshotCorrupt.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Mutation hooks
// ──────────────────────────────────────────────────

// OnPointsAwarded implements plugin.OnPointsAwarded. Awards and revocations
// are counted apart; the histogram sees the absolute delta.
func (m *MetricsExtension) OnPointsAwarded(_ context.Context, award *points.Award) error {
	delta := award.Delta
	if award.Revoked() {
		m.PointsRevoked.Inc()
		delta = -delta
	} else {
		m.PointsAwarded.Inc()
	}
	if !award.InHouse {
		m.AwardsOutOfHouse.Inc()
	}
	m.AwardMagnitude.Observe(float64(delta))
	return nil
}

// OnLedgerReset implements plugin.OnLedgerReset.
func (m *MetricsExtension) OnLedgerReset(_ context.Context, _ id.ID, clearedMembers int) error {
	m.LedgerResets.Inc()
	m.MembersCleared.Add(float64(clearedMembers))
	return nil
}

// OnPersistFailed implements plugin.OnPersistFailed.
func (m *MetricsExtension) OnPersistFailed(_ context.Context, _ string, _ error) error {
	m.PersistFailures.Inc()
	return nil
}
