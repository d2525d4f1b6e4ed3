package config

import "strata/pkg/logging"

const (
	// DefaultLogLevel is used when config.yaml does not set a level
	DefaultLogLevel = "info"

	// DefaultLogFormat is used when config.yaml does not set a format
	DefaultLogFormat = logging.FormatText

	// ComponentsDir is the subdirectory holding component definitions
	ComponentsDir = "components"
)

// GetDefaultConfig returns default configuration
func GetDefaultConfig() StrataConfig {
	return StrataConfig{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
