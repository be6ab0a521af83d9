// Package paths resolves the configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "mytree"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "MYTREE_CONFIG_DIR"
	EnvDataDir   = "MYTREE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/mytree (fallback ~/.config/mytree)
// macOS:   ~/Library/Application Support/mytree
// Windows: %APPDATA%/mytree
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the platform-specific directory exports are written
// to when no path is given.
//
// Linux:   $XDG_DATA_HOME/mytree (fallback ~/.local/share/mytree)
// Others:  same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

func xdgDir(env, fallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > MYTREE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > MYTREE_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}
