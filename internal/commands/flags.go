package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/vbisect/internal/core/config"
)

const appDir = "vbisect"

// Flags are the global options shared by every subcommand.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is set by the root Before hook.
	Config *config.Config
}

// LogPath returns where logs go: the --log-file value, or vbisect.log in
// the data directory when none was given.
func (f *Flags) LogPath() string {
	if f.LogFile != "" {
		return f.LogFile
	}
	return filepath.Join(f.DataDir, appDir+".log")
}

// DefaultConfigPath is $XDG_CONFIG_HOME/vbisect/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), appDir, "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/vbisect.
func DefaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), appDir)
}

// xdgDir reads an XDG base directory variable, falling back to the
// given path under the home directory.
func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, fallback...)...)
}
