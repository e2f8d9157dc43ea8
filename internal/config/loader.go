package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML file at path over the defaults. A missing file is not
// an error: the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Model.InputSize <= 0 {
		return fmt.Errorf("model.input_size must be positive, got %d", c.Model.InputSize)
	}
	if c.Model.NumThreads < 0 {
		return fmt.Errorf("model.num_threads must not be negative, got %d", c.Model.NumThreads)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history.max_entries must be at least 1, got %d", c.History.MaxEntries)
	}
	if c.History.MaxBytes < 1 {
		return fmt.Errorf("history.max_bytes must be positive, got %d", c.History.MaxBytes)
	}
	if c.Brush.Radius <= 0 {
		return fmt.Errorf("brush.radius must be positive, got %g", c.Brush.Radius)
	}
	if c.Brush.Hardness < 0 || c.Brush.Hardness > 1 {
		return fmt.Errorf("brush.hardness must be in [0,1], got %g", c.Brush.Hardness)
	}
	if c.Preview.MaxDimension < 0 {
		return fmt.Errorf("preview.max_dimension must not be negative, got %d", c.Preview.MaxDimension)
	}
	return nil
}
