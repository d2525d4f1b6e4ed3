package config

import (
	"fmt"

	"strata/internal/dependency"
)

// StrataConfig is the top-level configuration structure for strata.
type StrataConfig struct {
	Logging LoggingConfig `yaml:"logging"`

	// Available lists the components, as "type/provider", that are present in
	// the deployment.  It is used to report missing required dependencies.
	Available []string `yaml:"available,omitempty"`
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn or error (default: info)
	Format string `yaml:"format,omitempty"` // text or json (default: text)
}

// AvailableKeys parses Available into a key set.
func (c StrataConfig) AvailableKeys() (dependency.KeySet, error) {
	keys := dependency.NewKeySet()
	for _, entry := range c.Available {
		key, err := dependency.ParseKey(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid available component %q: %w", entry, err)
		}
		keys.Add(key)
	}
	return keys, nil
}
