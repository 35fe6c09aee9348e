// Package config loads the optional orgpulse YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything tunable from the config file. Zero values get
// defaults from setDefaults; CLI flags override loaded values.
type Config struct {
	Organization        string        `yaml:"organization"`
	Days                int           `yaml:"days"`
	IncludePrivate      bool          `yaml:"include_private"`
	MaxRepos            int           `yaml:"max_repos"`
	RateLimitDelay      time.Duration `yaml:"-"`
	RawRateLimitDelay   string        `yaml:"rate_limit_delay"`
	IgnoredUserPatterns []string      `yaml:"ignored_user_patterns"`
	RepoPattern         string        `yaml:"repo_pattern"`
	DBPath              string        `yaml:"db_path"`
	Log                 LogConfig     `yaml:"log"`
}

// LogConfig controls the rotating log file the TUI writes to.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Load reads the config file at path. A missing file is not an error: every
// setting has a default and can be supplied by flags instead.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.setDefaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Days == 0 {
		c.Days = 7
	}
	if c.RawRateLimitDelay == "" {
		c.RawRateLimitDelay = "500ms"
	}
	// validate already proved this parses when it came from the file.
	c.RateLimitDelay, _ = time.ParseDuration(c.RawRateLimitDelay)
	if c.DBPath == "" {
		c.DBPath = "orgpulse.db"
	}
	if c.Log.File == "" {
		c.Log.File = "orgpulse.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Days < 0 {
		return fmt.Errorf("days must be non-negative, got %d", c.Days)
	}
	if c.MaxRepos < 0 {
		return fmt.Errorf("max_repos must be non-negative, got %d", c.MaxRepos)
	}
	if c.RawRateLimitDelay != "" {
		if _, err := time.ParseDuration(c.RawRateLimitDelay); err != nil {
			return fmt.Errorf("parse rate_limit_delay %q: %w", c.RawRateLimitDelay, err)
		}
	}
	return nil
}
