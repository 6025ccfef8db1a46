// Package config handles configuration loading and validation for vbisect.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/rangesel"
	"github.com/colonyops/vbisect/internal/core/styles"
	"github.com/colonyops/vbisect/internal/core/version"
)

// DefaultReleasesURL serves the Electron release list as a JSON array.
const DefaultReleasesURL = "https://releases.electronjs.org/releases.json"

// Config holds the application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Bisect   BisectConfig   `yaml:"bisect"`
	Commands Commands       `yaml:"commands"`
	TUI      TUIConfig      `yaml:"tui"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// CatalogConfig controls which versions are offered for bisection.
type CatalogConfig struct {
	ReleasesURL string            `yaml:"releases_url"` // JSON release list; empty disables fetching
	CacheTTL    time.Duration     `yaml:"cache_ttl"`    // how long a fetched list is reused
	Channels    []version.Channel `yaml:"channels"`     // channels to show
	Include     []string          `yaml:"include"`      // glob patterns a version must match (any)
	Exclude     []string          `yaml:"exclude"`      // glob patterns that hide a version
	Local       []string          `yaml:"local"`        // locally built versions
	MinMajor    int               `yaml:"min_major"`    // hide versions older than this major
}

// BisectConfig holds bisect session defaults.
type BisectConfig struct {
	DefaultStartOffset int    `yaml:"default_start_offset"` // distance of the default earliest pick from the newest
	CompareURL         string `yaml:"compare_url"`          // template for the result link
}

// Commands defines the shell command templates used by vbisect. Both are
// rendered with CommandData.
type Commands struct {
	Activate string `yaml:"activate"` // run whenever a version becomes active
	Test     string `yaml:"test"`     // default test for `vbisect run`
}

// CommandData is the template data for Commands.
type CommandData struct {
	Version string
	Channel string
	Source  string
	DataDir string
}

// Env returns d as VBISECT_* environment variables for hook scripts.
func (d CommandData) Env() []string {
	return []string{
		"VBISECT_VERSION=" + d.Version,
		"VBISECT_CHANNEL=" + d.Channel,
		"VBISECT_SOURCE=" + d.Source,
		"VBISECT_DATA_DIR=" + d.DataDir,
	}
}

// CommandDataFor builds CommandData for v.
func (c *Config) CommandDataFor(v version.Version) CommandData {
	return CommandData{
		Version: v.Version,
		Channel: string(v.Channel),
		Source:  string(v.Source),
		DataDir: c.DataDir,
	}
}

// TUIConfig holds TUI appearance settings.
type TUIConfig struct {
	Theme  string            `yaml:"theme"`
	Colors map[string]string `yaml:"colors"` // per-role hex overrides, e.g. primary: "#ff8800"
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// HistoryConfig controls how long finished bisect sessions are kept.
type HistoryConfig struct {
	Retention     time.Duration `yaml:"retention"`      // 0 keeps sessions forever
	SweepInterval time.Duration `yaml:"sweep_interval"` // how often expired cache and history are purged
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			ReleasesURL: DefaultReleasesURL,
			CacheTTL:    6 * time.Hour,
			Channels:    []version.Channel{version.ChannelStable, version.ChannelBeta},
		},
		Bisect: BisectConfig{
			DefaultStartOffset: rangesel.DefaultStartOffset,
			CompareURL:         bisect.DefaultCompareURL,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		History: HistoryConfig{
			Retention:     90 * 24 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if len(c.Catalog.Channels) == 0 {
		c.Catalog.Channels = defaults.Catalog.Channels
	}
	if c.Bisect.DefaultStartOffset == 0 {
		c.Bisect.DefaultStartOffset = defaults.Bisect.DefaultStartOffset
	}
	if c.Bisect.CompareURL == "" {
		c.Bisect.CompareURL = defaults.Bisect.CompareURL
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.History.SweepInterval == 0 {
		c.History.SweepInterval = defaults.History.SweepInterval
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.cache_ttl cannot be negative")
	}

	for _, ch := range c.Catalog.Channels {
		if !slices.Contains(version.Channels(), ch) {
			return fmt.Errorf("catalog.channels: unknown channel %q", ch)
		}
	}

	if c.Catalog.MinMajor < 0 {
		return fmt.Errorf("catalog.min_major cannot be negative")
	}

	if c.Bisect.DefaultStartOffset < 1 {
		return fmt.Errorf("bisect.default_start_offset must be at least 1")
	}

	if _, err := styles.ResolvePalette(c.TUI.Theme, c.TUI.Colors); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}
	if c.History.SweepInterval < 0 {
		return fmt.Errorf("history.sweep_interval cannot be negative")
	}

	return nil
}

// ShowsChannel reports whether versions on ch are listed.
func (c *Config) ShowsChannel(ch version.Channel) bool {
	return slices.Contains(c.Catalog.Channels, ch)
}

// DatabasePath returns the SQLite database file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "vbisect.db")
}
