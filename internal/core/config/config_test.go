package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/core/version"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, DefaultReleasesURL, cfg.Catalog.ReleasesURL)
	assert.Equal(t, 6*time.Hour, cfg.Catalog.CacheTTL)
	assert.Equal(t, []version.Channel{version.ChannelStable, version.ChannelBeta}, cfg.Catalog.Channels)
	assert.Equal(t, 10, cfg.Bisect.DefaultStartOffset)
	assert.NotEmpty(t, cfg.Bisect.CompareURL)
	assert.Equal(t, "tokyo-night", cfg.TUI.Theme)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
	assert.Equal(t, 90*24*time.Hour, cfg.History.Retention)
	assert.Equal(t, 5*time.Minute, cfg.History.SweepInterval)
}

func TestLoad_ZeroRetentionKeepsHistory(t *testing.T) {
	cfg, err := Load(writeConfig(t, "history:\n  retention: 0s\n"), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, cfg.History.Retention)
	assert.Equal(t, 5*time.Minute, cfg.History.SweepInterval)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
catalog:
  releases_url: ""
  cache_ttl: 30m
  channels: [stable, nightly]
  include: ["3*"]
  local: ["33.0.0-local.1"]
  min_major: 28
bisect:
  default_start_offset: 4
commands:
  activate: "echo {{ .Version }}"
tui:
  theme: gruvbox
  colors:
    primary: "#ff8800"
`)
	dataDir := t.TempDir()

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Empty(t, cfg.Catalog.ReleasesURL)
	assert.Equal(t, 30*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, []version.Channel{version.ChannelStable, version.ChannelNightly}, cfg.Catalog.Channels)
	assert.Equal(t, []string{"3*"}, cfg.Catalog.Include)
	assert.Equal(t, []string{"33.0.0-local.1"}, cfg.Catalog.Local)
	assert.Equal(t, 28, cfg.Catalog.MinMajor)
	assert.Equal(t, 4, cfg.Bisect.DefaultStartOffset)
	assert.Equal(t, "echo {{ .Version }}", cfg.Commands.Activate)
	assert.Equal(t, "gruvbox", cfg.TUI.Theme)
	assert.Equal(t, map[string]string{"primary": "#ff8800"}, cfg.TUI.Colors)

	// untouched sections keep defaults
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "catalog: [unterminated")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown channel",
			content: "catalog:\n  channels: [canary]\n",
			wantErr: "unknown channel",
		},
		{
			name:    "negative ttl",
			content: "catalog:\n  cache_ttl: -1h\n",
			wantErr: "cache_ttl",
		},
		{
			name:    "negative start offset",
			content: "bisect:\n  default_start_offset: -3\n",
			wantErr: "default_start_offset",
		},
		{
			name:    "unknown theme",
			content: "tui:\n  theme: solarized-neon\n",
			wantErr: "unknown theme",
		},
		{
			name:    "unknown color role",
			content: "tui:\n  colors:\n    accent: \"#ffffff\"\n",
			wantErr: "unknown color role",
		},
		{
			name:    "malformed color",
			content: "tui:\n  colors:\n    primary: orange\n",
			wantErr: "not a #rrggbb value",
		},
		{
			name:    "negative min major",
			content: "catalog:\n  min_major: -1\n",
			wantErr: "min_major",
		},
		{
			name:    "negative retention",
			content: "history:\n  retention: -1h\n",
			wantErr: "history.retention",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestCommandDataFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"

	data := cfg.CommandDataFor(version.MustParse("31.0.0-beta.2", version.SourceLocal))

	assert.Equal(t, CommandData{
		Version: "31.0.0-beta.2",
		Channel: "beta",
		Source:  "local",
		DataDir: "/data",
	}, data)
}

func TestShowsChannel(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.ShowsChannel(version.ChannelStable))
	assert.False(t, cfg.ShowsChannel(version.ChannelNightly))
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/vbisect"
	assert.Equal(t, "/var/lib/vbisect/vbisect.db", cfg.DatabasePath())
}
