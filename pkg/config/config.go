// Package config handles loading and validation of user configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultPollInterval = 10 * time.Second
	DefaultPollTimeout  = 30 * time.Minute
)

var (
	errInvalidStrategy = errors.New("defaults.strategy must be merge, squash, or rebase")
	errInvalidInterval = errors.New("poll.interval is not a valid duration")
	errInvalidTimeout  = errors.New("poll.timeout is not a valid duration")
	errIntervalTooLow  = errors.New("poll.interval must be at least one second")

	// Exported errors for testing and external use.
	ErrInvalidStrategy = errInvalidStrategy
	ErrInvalidInterval = errInvalidInterval
	ErrInvalidTimeout  = errInvalidTimeout
	ErrIntervalTooLow  = errIntervalTooLow
)

// Config represents the complete configuration for mergegate.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Poll     PollConfig     `yaml:"poll"`
	GitLab   GitLabConfig   `yaml:"gitlab"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// DefaultsConfig contains cross-platform behavior defaults.
type DefaultsConfig struct {
	// Strategy is the preferred merge strategy when the server allows it:
	// "merge", "squash", or "rebase". Empty means take the first allowed.
	Strategy string `yaml:"strategy"`
	// DeleteSourceBranch removes the source branch after a successful merge.
	DeleteSourceBranch bool `yaml:"delete_source_branch"`
	// TargetBranch overrides target branch detection when set.
	TargetBranch string `yaml:"target_branch"`
}

// PollConfig controls the mergeability evaluation loop.
type PollConfig struct {
	// Interval between dry-run evaluations, e.g. "10s".
	Interval string `yaml:"interval"`
	// Timeout bounds a watch session, e.g. "30m".
	Timeout string `yaml:"timeout"`
}

// GitLabConfig contains GitLab-specific configuration.
type GitLabConfig struct {
	// URL points at a self-hosted instance. Empty means gitlab.com.
	URL string `yaml:"url"`
}

// GitHubConfig contains GitHub-specific configuration.
type GitHubConfig struct {
	// URL points at a GitHub Enterprise instance. Empty means github.com.
	URL string `yaml:"url"`
}

// Load reads and parses the configuration file from the user's home
// directory. A missing file is not an error: every field has a default.
func Load() (*Config, error) {
	var config Config

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "mergegate", "config.yml")

	// #nosec G304 - Reading config from user's home directory is intentional
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults fills unset fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Poll.Interval == "" {
		c.Poll.Interval = DefaultPollInterval.String()
	}
	if c.Poll.Timeout == "" {
		c.Poll.Timeout = DefaultPollTimeout.String()
	}
}

// Validate checks that all configuration fields hold usable values.
func (c *Config) Validate() error {
	switch c.Defaults.Strategy {
	case "", "merge", "squash", "rebase":
	default:
		return fmt.Errorf("%w: %q", errInvalidStrategy, c.Defaults.Strategy)
	}

	interval, err := time.ParseDuration(c.Poll.Interval)
	if err != nil {
		return fmt.Errorf("%w: %q", errInvalidInterval, c.Poll.Interval)
	}
	if interval < time.Second {
		return fmt.Errorf("%w: %q", errIntervalTooLow, c.Poll.Interval)
	}

	if _, err := time.ParseDuration(c.Poll.Timeout); err != nil {
		return fmt.Errorf("%w: %q", errInvalidTimeout, c.Poll.Timeout)
	}

	return nil
}

// PollInterval returns the parsed evaluation interval.
// Call Validate first; an unparseable value falls back to the default.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Poll.Interval)
	if err != nil {
		return DefaultPollInterval
	}
	return d
}

// PollTimeout returns the parsed watch session budget.
// Call Validate first; an unparseable value falls back to the default.
func (c *Config) PollTimeout() time.Duration {
	d, err := time.ParseDuration(c.Poll.Timeout)
	if err != nil {
		return DefaultPollTimeout
	}
	return d
}
