package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SirWilliamIII/wanderer"
)

// Config is the optional YAML configuration file. Everything has a
// working default so the binary runs with no config at all; the file
// exists for proxy pools and site-specific tuning.
type Config struct {
	// Database is the SQLite file path. Overrides WANDERER_DB.
	Database string `yaml:"database"`

	// Seeds are crawled in addition to URLs given on the command line.
	Seeds []string `yaml:"seeds"`

	Proxies struct {
		Basic   []string `yaml:"basic"`
		Premium []string `yaml:"premium"`
	} `yaml:"proxies"`

	// FreshnessHours is the dedup window; URLs successfully crawled
	// within it are skipped. Zero disables the gate.
	FreshnessHours int `yaml:"freshness_hours"`

	Batch struct {
		Size            int `yaml:"size"`
		DebounceSeconds int `yaml:"debounce_seconds"`
	} `yaml:"batch"`

	// CollectionThreshold is the per-collection document count before
	// the collection hint rolls to the next shard.
	CollectionThreshold int `yaml:"collection_threshold"`

	// RestrictedPatterns replace the built-in strict mode URL patterns.
	RestrictedPatterns []string `yaml:"restricted_patterns"`

	// UserAgent identifies the crawler to robots.txt.
	UserAgent string `yaml:"user_agent"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		FreshnessHours: 24,
		UserAgent:      "wanderer/1.0",
	}
	return cfg
}

// LoadConfig reads and parses a YAML config file, filling unset fields
// with defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wanderer.Errorf(wanderer.ECONFIG, "reading config %s: %v", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, wanderer.Errorf(wanderer.ECONFIG, "parsing config %s: %v", path, err)
	}
	return cfg, nil
}

// FreshnessWindow converts the configured hours to a duration.
func (c *Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessHours) * time.Hour
}
