// Package config handles configuration for journey-runner.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/replaykit/journey-runner/pkg/playback"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Journey selection
	Journeys    []string `yaml:"journeys"`    // Glob patterns for journey files
	IncludeTags []string `yaml:"includeTags"` // Tags to include
	ExcludeTags []string `yaml:"excludeTags"` // Tags to exclude

	// Storage
	Database string `yaml:"database"` // SQLite database path

	// Browser settings
	Headless bool `yaml:"headless"`

	// Playback defaults; CLI flags override these.
	Playback playback.Config `yaml:"playback"`

	// Monitoring server
	ListenAddr string `yaml:"listenAddr"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Config{Playback: playback.DefaultConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return &Config{Playback: playback.DefaultConfig()}, nil
}

// Matches reports whether the journey's tags pass the include/exclude
// filters. An empty include list admits everything.
func (c *Config) Matches(tags []string) bool {
	for _, excluded := range c.ExcludeTags {
		for _, tag := range tags {
			if tag == excluded {
				return false
			}
		}
	}
	if len(c.IncludeTags) == 0 {
		return true
	}
	for _, included := range c.IncludeTags {
		for _, tag := range tags {
			if tag == included {
				return true
			}
		}
	}
	return false
}
