// Package config loads the scheduling policy knobs for a host loop.
package config

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Policy mirrors vibewindow.yaml.
type Policy struct {
	FrameIntervalMS  int `yaml:"frame_interval_ms"`   // 16 (by default)
	IdleDeadlineMS   int `yaml:"idle_deadline_ms"`    // 50 (by default)
	MaxTasksPerDrain int `yaml:"max_tasks_per_drain"` // 64 (by default)
}

// Default returns the policy used when no config file is present.
func Default() Policy {
	return Policy{
		FrameIntervalMS:  16,
		IdleDeadlineMS:   50,
		MaxTasksPerDrain: 64,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
// A missing or unreadable file is not an error.
func Load(path string) Policy {
	cfg := Default()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.FrameIntervalMS < 1 {
		cfg.FrameIntervalMS = 1
	}
	if cfg.IdleDeadlineMS < 1 {
		cfg.IdleDeadlineMS = 1
	}
	if cfg.MaxTasksPerDrain < 1 {
		cfg.MaxTasksPerDrain = 1
	}
	return cfg
}
