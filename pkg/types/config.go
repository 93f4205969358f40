package types

import (
	"errors"
	"fmt"
)

// Config holds document and store settings.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`
	// UniqueTitles makes titles of copied tiles unique within the target.
	UniqueTitles bool `json:"unique_titles" yaml:"unique_titles"`
	// DefaultRowHeight is used for new rows whose content type declares no
	// height.
	DefaultRowHeight float64 `json:"default_row_height" yaml:"default_row_height"`
}

// Log levels accepted by Validate.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config validation errors.
var (
	ErrInvalidConfig    = errors.New("invalid config")
	ErrLogLevelUnknown  = fmt.Errorf("%w: unknown log level", ErrInvalidConfig)
	ErrRowHeightInvalid = fmt.Errorf("%w: default row height must not be negative", ErrInvalidConfig)
)

var knownLogLevels = map[string]bool{
	"":            true,
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{LogLevel: LogLevelInfo, UniqueTitles: true}
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if c.DefaultRowHeight < 0 {
		return ErrRowHeightInvalid
	}
	return nil
}
