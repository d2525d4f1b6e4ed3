package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"strata/internal/dependency"
	"strata/pkg/logging"
)

const (
	userConfigDir  = ".config/strata"
	configFileName = "config.yaml"

	categoryConfig     = "config"
	categoryComponents = "components"
)

// osUserHomeDir is replaced in tests
var osUserHomeDir = os.UserHomeDir

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// GetUserConfigDir returns the default configuration directory, ~/.config/strata.
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from the specified directory.  A missing file
// yields the default configuration.
func LoadConfig(configPath string) (StrataConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig() // Start with default config

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return StrataConfig{}, err
	}

	if err := decodeStrict(data, &config); err != nil {
		// config malformed
		cfgErr := newParseError(configFilePath, categoryConfig, err)
		return StrataConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, cfgErr)
	}

	if _, err := config.AvailableKeys(); err != nil {
		cfgErr := NewConfigurationError(configFilePath, configFileName, categoryConfig, ErrorTypeValidation, err.Error())
		return StrataConfig{}, cfgErr
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// LoadComponents reads every definition in the components subdirectory of
// configPath.  Files that cannot be read, parsed or validated are skipped and
// reported together in a *ConfigurationErrorCollection; the definitions that
// did load are returned alongside it.
func LoadComponents(configPath string) ([]dependency.ComponentMetadata, error) {
	storage := NewStorageWithPath(configPath)
	files, readErrs, err := storage.ReadAll(ComponentsDir)
	if err != nil {
		return nil, err
	}

	collection := NewConfigurationErrorCollection()
	failedPaths := make([]string, 0, len(readErrs))
	for path := range readErrs {
		failedPaths = append(failedPaths, path)
	}
	sort.Strings(failedPaths)
	for _, path := range failedPaths {
		collection.AddError(path, filepath.Base(path), categoryComponents, ErrorTypeIO, readErrs[path].Error())
	}

	definitions := make([]dependency.ComponentMetadata, 0, len(files))
	definedIn := make(map[dependency.ComponentKey]string)
	for _, file := range files {
		md, cfgErr := parseComponent(file)
		if cfgErr != nil {
			collection.Add(*cfgErr)
			continue
		}

		if previous, exists := definedIn[md.Key]; exists {
			dupErr := NewConfigurationError(file.Path, filepath.Base(file.Path), categoryComponents, ErrorTypeValidation,
				fmt.Sprintf("component %s is already defined in %s", md.Key, filepath.Base(previous)))
			collection.Add(dupErr)
			continue
		}
		definedIn[md.Key] = file.Path
		definitions = append(definitions, md)
	}

	logging.Info("ConfigLoader", "Loaded %d component definitions from %s (%d errors)",
		len(definitions), configPath, collection.Count())

	if collection.HasErrors() {
		return definitions, collection
	}
	return definitions, nil
}

func parseComponent(file StoredFile) (dependency.ComponentMetadata, *ConfigurationError) {
	var md dependency.ComponentMetadata
	if err := decodeStrict(file.Data, &md); err != nil {
		cfgErr := newParseError(file.Path, categoryComponents, err)
		return dependency.ComponentMetadata{}, &cfgErr
	}

	if errs := ValidateComponentMetadata(md); errs.HasErrors() {
		cfgErr := NewConfigurationError(file.Path, filepath.Base(file.Path), categoryComponents, ErrorTypeValidation,
			fmt.Sprintf("invalid component definition: %s", errs.Error()))
		for _, ve := range errs {
			cfgErr.Suggestions = append(cfgErr.Suggestions, fmt.Sprintf("check %s", ve.Field))
		}
		return dependency.ComponentMetadata{}, &cfgErr
	}

	return md, nil
}

// decodeStrict unmarshals data and rejects unknown fields.  An empty document
// leaves out untouched.
func decodeStrict(data []byte, out interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func newParseError(path, category string, err error) ConfigurationError {
	cfgErr := NewConfigurationError(path, filepath.Base(path), category, ErrorTypeParse, err.Error())
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		cfgErr.LineNumber, _ = strconv.Atoi(m[1])
	}
	cfgErr.Suggestions = []string{"check the YAML syntax and field names"}
	return cfgErr
}
