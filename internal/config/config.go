// Package config loads treelight options from TOML and watches config
// files for changes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the user-tunable options.
type Config struct {
	// Theme is the path to a JSON theme file. Empty selects the built-in
	// default theme.
	Theme string `toml:"theme"`

	// Queries maps sub-language identifiers to query source overrides,
	// passed to the highlight engine at construction.
	Queries map[string]string `toml:"queries"`
}

// Default returns the zero configuration.
func Default() *Config {
	return &Config{Queries: make(map[string]string)}
}

// Load reads configuration from a TOML file. A missing file is not an
// error; it yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Queries == nil {
		cfg.Queries = make(map[string]string)
	}
	return cfg, nil
}
