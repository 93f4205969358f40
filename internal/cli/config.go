// Configuration loading for the tiledoc CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDataDir          = "data_dir"
	cfgKeyLogLevel         = "log_level"
	cfgKeyUniqueTitles     = "unique_titles"
	cfgKeyDefaultRowHeight = "default_row_height"

	envPrefix = "TILEDOC"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	DataDir          string  `yaml:"data_dir,omitempty"`
	LogLevel         string  `yaml:"log_level"`
	UniqueTitles     bool    `yaml:"unique_titles"`
	DefaultRowHeight float64 `yaml:"default_row_height,omitempty"`
}

// loadDotEnv loads .env from the working directory. Variables already set
// in the environment win; a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// loadConfig reads config.yaml from configDir. A missing config.yaml is not
// an error. TILEDOC_LOG_LEVEL, TILEDOC_UNIQUE_TITLES and
// TILEDOC_DEFAULT_ROW_HEIGHT override the file; the data directory has its
// own precedence chain in paths.ResolveDataDir.
func loadConfig(configDir string) (*viper.Viper, error) {
	def := types.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyUniqueTitles, def.UniqueTitles)
	v.SetDefault(cfgKeyDefaultRowHeight, def.DefaultRowHeight)
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyLogLevel, cfgKeyUniqueTitles, cfgKeyDefaultRowHeight} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func configFromViper(v *viper.Viper) types.Config {
	return types.Config{
		DataDir:          v.GetString(cfgKeyDataDir),
		LogLevel:         v.GetString(cfgKeyLogLevel),
		UniqueTitles:     v.GetBool(cfgKeyUniqueTitles),
		DefaultRowHeight: v.GetFloat64(cfgKeyDefaultRowHeight),
	}
}

// writeConfigIfMissing creates config.yaml from cfg unless the file exists.
// Reports whether a file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# tiledoc configuration; see `tiledoc init --help`.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
