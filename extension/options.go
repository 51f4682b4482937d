package extension

import (
	"github.com/xraph/housecup"
	"github.com/xraph/housecup/plugin"
	"github.com/xraph/housecup/store"
)

// Option configures the housecup Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger. It takes precedence over the
// configured store driver.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a housecup.Option through to the underlying ledger.
func WithLedgerOption(opt housecup.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, housecup.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDataFile sets the snapshot path of the file store.
func WithDataFile(path string) Option {
	return func(e *Extension) { e.config.DataFile = path }
}

// WithHouses sets the closed set of houses.
func WithHouses(names ...string) Option {
	return func(e *Extension) { e.config.Houses = names }
}

// WithDisableMigrate prevents store migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
