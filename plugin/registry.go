package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/housecup/id"
	"github.com/xraph/housecup/points"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event only touches the
// plugins that implement the matching hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit            []OnInit
	onShutdown        []OnShutdown
	onSnapshotLoaded  []OnSnapshotLoaded
	onSnapshotCorrupt []OnSnapshotCorrupt
	onPointsAwarded   []OnPointsAwarded
	onLedgerReset     []OnLedgerReset
	onPersistFailed   []OnPersistFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnSnapshotLoaded); ok {
		r.onSnapshotLoaded = append(r.onSnapshotLoaded, v)
	}
	if v, ok := p.(OnSnapshotCorrupt); ok {
		r.onSnapshotCorrupt = append(r.onSnapshotCorrupt, v)
	}
	if v, ok := p.(OnPointsAwarded); ok {
		r.onPointsAwarded = append(r.onPointsAwarded, v)
	}
	if v, ok := p.(OnLedgerReset); ok {
		r.onLedgerReset = append(r.onLedgerReset, v)
	}
	if v, ok := p.(OnPersistFailed); ok {
		r.onPersistFailed = append(r.onPersistFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnSnapshotLoaded", reflect.TypeOf((*OnSnapshotLoaded)(nil)).Elem()},
	{"OnSnapshotCorrupt", reflect.TypeOf((*OnSnapshotCorrupt)(nil)).Elem()},
	{"OnPointsAwarded", reflect.TypeOf((*OnPointsAwarded)(nil)).Elem()},
	{"OnLedgerReset", reflect.TypeOf((*OnLedgerReset)(nil)).Elem()},
	{"OnPersistFailed", reflect.TypeOf((*OnPersistFailed)(nil)).Elem()},
}

// implementedInterfaces returns the hooks implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			interfaces = append(interfaces, h.name)
		}
	}
	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnInit", func() error {
			return p.OnInit(ctx, ledger)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnShutdown", func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// EmitSnapshotLoaded emits a snapshot loaded event.
func (r *Registry) EmitSnapshotLoaded(ctx context.Context, members int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onSnapshotLoaded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnSnapshotLoaded", func() error {
			return p.OnSnapshotLoaded(ctx, members, elapsed)
		})
	}
}

// EmitSnapshotCorrupt emits a corrupt snapshot event.
func (r *Registry) EmitSnapshotCorrupt(ctx context.Context, cause error) {
	r.mu.RLock()
	plugins := r.onSnapshotCorrupt
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnSnapshotCorrupt", func() error {
			return p.OnSnapshotCorrupt(ctx, cause)
		})
	}
}

// EmitPointsAwarded emits a points awarded event.
func (r *Registry) EmitPointsAwarded(ctx context.Context, award *points.Award) {
	r.mu.RLock()
	plugins := r.onPointsAwarded
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnPointsAwarded", func() error {
			return p.OnPointsAwarded(ctx, award)
		})
	}
}

// EmitLedgerReset emits a ledger reset event.
func (r *Registry) EmitLedgerReset(ctx context.Context, changeID id.ID, clearedMembers int) {
	r.mu.RLock()
	plugins := r.onLedgerReset
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnLedgerReset", func() error {
			return p.OnLedgerReset(ctx, changeID, clearedMembers)
		})
	}
}

// EmitPersistFailed emits a persistence failure event.
func (r *Registry) EmitPersistFailed(ctx context.Context, op string, err error) {
	r.mu.RLock()
	plugins := r.onPersistFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.dispatch(ctx, p.Name(), "OnPersistFailed", func() error {
			return p.OnPersistFailed(ctx, op, err)
		})
	}
}

func (r *Registry) dispatch(ctx context.Context, pluginName, hook string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin "+hook+" failed",
			"plugin", pluginName,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the command pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
