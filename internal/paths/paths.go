// Package paths resolves where tiledoc keeps its configuration, its document
// store and its clipboard file.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "tiledoc"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".tiledoc"
	DefaultDataDirName   = ".tiledoc-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TILEDOC_CONFIG_DIR"
	EnvDataDir   = "TILEDOC_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName    = "config.yaml"
	ClipboardFileName = "clipboard.cbor"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $env/tiledoc when set, else ~/fallback.../tiledoc.
func xdgDir(env string, fallback ...string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appName)...), nil
}

// userDir covers macOS (~/Library/Application Support) and Windows (%APPDATA%).
func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/tiledoc (fallback ~/.config/tiledoc)
// macOS:   ~/Library/Application Support/tiledoc
// Windows: %APPDATA%/tiledoc
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/tiledoc (fallback ~/.local/share/tiledoc)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	return userDir()
}

// ResolveConfigDir returns the configuration directory:
// flag > TILEDOC_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory:
// flag > data_dir from config.yaml > TILEDOC_DATA_DIR > $(CWD)/.tiledoc-db.
// The platform DefaultDataDir is not used implicitly so that a document
// store stays next to the project it belongs to.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// ClipboardFile returns the default clipboard path: flag when set, else
// clipboard.cbor inside dataDir.
func ClipboardFile(flag, dataDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	return filepath.Join(dataDir, ClipboardFileName), nil
}
