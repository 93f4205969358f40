package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatform points home and user config lookups at fixed directories for
// the duration of the test.
func stubPlatform(t *testing.T, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	home := t.TempDir()
	appSupport := filepath.Join(home, "Library", "Application Support")
	stubPlatform(t, home, appSupport)

	tests := []struct {
		name       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "home fallbacks",
			wantConfig: filepath.Join(home, ".config", appName),
			wantData:   filepath.Join(home, ".local", "share", appName),
		},
		{
			name:       "XDG variables",
			xdgConfig:  filepath.Join(home, "xdg-config"),
			xdgData:    filepath.Join(home, "xdg-data"),
			wantConfig: filepath.Join(home, "xdg-config", appName),
			wantData:   filepath.Join(home, "xdg-data", appName),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)
			wantConfig, wantData := tt.wantConfig, tt.wantData
			if runtime.GOOS != "linux" {
				wantConfig = filepath.Join(appSupport, appName)
				wantData = wantConfig
			}

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, wantConfig, got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, wantData, got)
		})
	}
}

func TestDefaultDirs_HomeDirError(t *testing.T) {
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return "", os.ErrNotExist }
	platformDir.userConfigDir = func() (string, error) { return "", os.ErrNotExist }

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	_, err := DefaultConfigDir()
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = DefaultDataDir()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveConfigDir(t *testing.T) {
	home := t.TempDir()
	stubPlatform(t, home, home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	cwd := t.TempDir()
	t.Chdir(cwd)

	defaultDir, err := DefaultConfigDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "flag over env", flag: "/explicit/config", env: "/env/config", want: "/explicit/config"},
		{name: "env when no flag", env: "/env/config", want: "/env/config"},
		{name: "relative flag", flag: "conf", want: filepath.Join(cwd, "conf")},
		{name: "relative env", env: "envconf", want: filepath.Join(cwd, "envconf")},
		{name: "platform default", want: defaultDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), got)
		})
	}
}

// The data directory never falls back to the platform default: without a
// flag, config value or env override the store lives next to the project.
func TestResolveDataDir(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)

	tests := []struct {
		name   string
		flag   string
		config string
		env    string
		want   string
	}{
		{name: "flag over config and env", flag: "/flag/data", config: "/config/data", env: "/env/data", want: "/flag/data"},
		{name: "config over env", config: "/config/data", env: "/env/data", want: "/config/data"},
		{name: "env when flag and config empty", env: "/env/data", want: "/env/data"},
		{name: "relative config value", config: "store", env: "/env/data", want: filepath.Join(cwd, "store")},
		{name: "project directory default", want: filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), got)
		})
	}
}

func TestClipboardFile(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	dataDir := filepath.Join(cwd, DefaultDataDirName)

	tests := []struct {
		name string
		flag string
		want string
	}{
		{name: "default inside the data dir", want: filepath.Join(dataDir, "clipboard.cbor")},
		{name: "absolute flag", flag: "/tmp/clip.json", want: "/tmp/clip.json"},
		{name: "relative flag", flag: "clip.json", want: filepath.Join(cwd, "clip.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClipboardFile(tt.flag, dataDir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.want), got)
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "config.yaml"), ConfigFile("/cfg"))
}
