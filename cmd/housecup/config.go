package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/xraph/housecup/house"
)

// Config is the CLI configuration, read from the environment.
type Config struct {
	DataFile     string   `env:"HOUSECUP_DATA_FILE" envDefault:"points_data.json"`
	Houses       []string `env:"HOUSECUP_HOUSES" envSeparator:","`
	Top          int      `env:"HOUSECUP_TOP" envDefault:"10"`
	RequireHouse bool     `env:"HOUSECUP_REQUIRE_HOUSE" envDefault:"true"`
	LogLevel     string   `env:"HOUSECUP_LOG_LEVEL" envDefault:"info"`
	Port         int      `env:"PORT" envDefault:"8080"`
}

// LoadConfig reads a .env file if there is one, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Top <= 0 {
		return Config{}, fmt.Errorf("HOUSECUP_TOP must be positive, got %d", cfg.Top)
	}
	return cfg, nil
}

// HouseSet returns the configured houses, or the reference houses.
func (c Config) HouseSet() (*house.Set, error) {
	if len(c.Houses) == 0 {
		return house.Default(), nil
	}
	return house.NewSet(c.Houses...)
}

// Logger builds a text logger at the configured level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return nil, fmt.Errorf("HOUSECUP_LOG_LEVEL: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
