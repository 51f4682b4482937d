package extension

import "github.com/xraph/housecup/store/file"

// Store drivers selectable from configuration. Database-backed stores are
// passed in with WithStore.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

// Config holds the housecup extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.housecup" or "housecup" keys).
type Config struct {
	// Store selects the built-in store driver: "file" or "memory"
	// (default: "file"). Ignored when WithStore is used.
	Store string `json:"store" mapstructure:"store" yaml:"store"`

	// DataFile is the snapshot path of the file store
	// (default: "points_data.json").
	DataFile string `json:"data_file" mapstructure:"data_file" yaml:"data_file"`

	// Houses is the closed set of houses in canonical order
	// (default: the four reference houses).
	Houses []string `json:"houses" mapstructure:"houses" yaml:"houses"`

	// ActivityPoints overrides the points awarded per activity. Activities
	// not listed keep their default value.
	ActivityPoints map[string]int64 `json:"activity_points" mapstructure:"activity_points" yaml:"activity_points"`

	// DisableMigrate prevents store migration on start. The snapshot is
	// still loaded.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store:    StoreFile,
		DataFile: file.DefaultPath,
	}
}
