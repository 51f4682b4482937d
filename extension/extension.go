// Package extension provides the Forge extension adapter for housecup.
//
// It implements the forge.Extension interface to integrate the points
// ledger into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.housecup" or "housecup" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/housecup"
	"github.com/xraph/housecup/house"
	"github.com/xraph/housecup/points"
	"github.com/xraph/housecup/store"
	"github.com/xraph/housecup/store/file"
	"github.com/xraph/housecup/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "housecup"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "House points ledger for community games"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the points ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	ledger     *housecup.Ledger
	store      store.Store
	ledgerOpts []housecup.Option
}

// New creates a new housecup Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ledger returns the underlying ledger.
// This is nil until Register is called.
func (e *Extension) Ledger() *housecup.Ledger { return e.ledger }

// Register implements [forge.Extension]. It loads configuration,
// builds the ledger, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*housecup.Ledger, error) {
		return e.ledger, nil
	})
}

// build resolves the store and creates the ledger from the resolved config.
func (e *Extension) build() error {
	s, err := e.buildStore()
	if err != nil {
		return err
	}
	e.store = s

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}

	ledgerStore := e.store
	if e.config.DisableMigrate {
		ledgerStore = skipMigrate{e.store}
	}
	e.ledger = housecup.New(ledgerStore, opts...)
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.ledger == nil {
		return errors.New("housecup: extension not initialized")
	}

	if err := e.ledger.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.ledger != nil {
		if err := e.ledger.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("housecup: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildStore returns the programmatic store, or the configured driver.
func (e *Extension) buildStore() (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	switch e.config.Store {
	case "", StoreFile:
		return file.New(e.config.DataFile), nil
	case StoreMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("housecup: unknown store driver %q", e.config.Store)
	}
}

// buildLedgerOpts constructs housecup.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() ([]housecup.Option, error) {
	opts := make([]housecup.Option, 0, len(e.ledgerOpts)+2)

	if len(e.config.Houses) > 0 {
		set, err := house.NewSet(e.config.Houses...)
		if err != nil {
			return nil, fmt.Errorf("housecup: houses: %w", err)
		}
		opts = append(opts, housecup.WithHouses(set))
	}

	if len(e.config.ActivityPoints) > 0 {
		table := points.DefaultActivityPoints()
		for name, p := range e.config.ActivityPoints {
			table[points.Activity(name)] = p
		}
		opts = append(opts, housecup.WithActivityPoints(table))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts, nil
}

// skipMigrate hides the store's Migrate when migrations are disabled.
type skipMigrate struct {
	store.Store
}

func (skipMigrate) Migrate(context.Context) error { return nil }

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("housecup: configuration is required but not found in config files; " +
				"ensure 'extensions.housecup' or 'housecup' key exists in your config")
		}

		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("housecup: configuration loaded",
		forge.F("store", e.config.Store),
		forge.F("data_file", e.config.DataFile),
		forge.F("houses", e.config.Houses),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.housecup", "housecup"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("housecup: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("housecup: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Store == "" {
		cfg.Store = defaults.Store
	}
	if cfg.DataFile == "" {
		cfg.DataFile = defaults.DataFile
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.Store == "" {
		yamlConfig.Store = programmaticConfig.Store
	}
	if yamlConfig.DataFile == "" {
		yamlConfig.DataFile = programmaticConfig.DataFile
	}
	if len(yamlConfig.Houses) == 0 {
		yamlConfig.Houses = programmaticConfig.Houses
	}
	if len(yamlConfig.ActivityPoints) == 0 {
		yamlConfig.ActivityPoints = programmaticConfig.ActivityPoints
	}

	return mergeWithDefaults(yamlConfig)
}
