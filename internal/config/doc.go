// Package config provides configuration management for strata.
//
// Configuration is loaded from a single directory. The default directory is
// ~/.config/strata; commands accept --config-path to use another one.
//
// # Configuration Directory
//
//	config.yaml           logging settings and the list of available components
//	components/*.yaml     one component definition per file
//
// config.yaml is optional:
//
//	logging:
//	  level: debug        # debug, info, warn, error
//	  format: json        # text, json
//	available:
//	  - cache/redis
//	  - secrets/vault
//
// # Component Definitions
//
// Each file in components/ declares one component and its dependencies:
//
//	type: llm
//	provider: openai
//	version: 1.4.0
//	description: OpenAI chat completion provider
//	dependencies:
//	  - type: cache
//	    provider: redis
//	    kind: optional      # required (default), optional, runtime, enhances
//	    version: ">=6.0.0"  # semantic version constraint
//
// Unknown fields are rejected. LoadComponents keeps loading when a file is
// broken; every problem is reported in a *ConfigurationErrorCollection that
// matches api.ErrConfiguration.
//
// # Watching
//
// Watcher reports changes to a definitions directory through fsnotify, with a
// polling fallback. Bursts of changes are debounced into one OnChange call.
package config
