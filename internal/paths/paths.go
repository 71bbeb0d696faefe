// Package paths resolves the cellbuf configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "cellbuf"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// overrides it.
const DefaultDataDirName = ".cellbuf-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CELLBUF_CONFIG_DIR"
	EnvDataDir   = "CELLBUF_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgLocation is an XDG base directory and its fallback below $HOME.
type xdgLocation struct {
	env      string
	fallback []string
}

var (
	configLocation = xdgLocation{env: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataLocation   = xdgLocation{env: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

// dir returns the AppName directory under l. Only Linux follows XDG; macOS
// and Windows use os.UserConfigDir for both locations.
func (l xdgLocation) dir() (string, error) {
	if runtime.GOOS != "linux" {
		base, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, AppName), nil
	}
	if xdg := os.Getenv(l.env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, l.fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/cellbuf (fallback ~/.config/cellbuf)
// macOS:   ~/Library/Application Support/cellbuf
// Windows: %APPDATA%/cellbuf
func DefaultConfigDir() (string, error) {
	return configLocation.dir()
}

// DefaultDataDir returns the platform-specific per-user data directory.
// ResolveDataDir does not fall back to it; it is offered for callers that
// want a location independent of the working directory.
//
// Linux:   $XDG_DATA_HOME/cellbuf (fallback ~/.local/share/cellbuf)
// macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return dataLocation.dir()
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > CELLBUF_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstSet(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > CELLBUF_DATA_DIR env > $(CWD)/.cellbuf-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstSet(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
