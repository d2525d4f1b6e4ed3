package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"strata/pkg/logging"
)

// StoredFile is a definition file read from the configuration directory.
type StoredFile struct {
	Name string // base name without extension
	Path string
	Data []byte
}

// Storage reads YAML definition files from type-specific subdirectories of a
// single configuration directory
type Storage struct {
	mu         sync.RWMutex
	configPath string // Optional custom config path - when set, uses this path; otherwise uses default ~/.config/strata
}

// NewStorage creates a new Storage instance using the default configuration directory
func NewStorage() *Storage {
	return &Storage{}
}

// NewStorageWithPath creates a new Storage instance with a custom config path
func NewStorageWithPath(configPath string) *Storage {
	return &Storage{
		configPath: configPath,
	}
}

// Dir returns the directory holding files of entityType.
func (ds *Storage) Dir(entityType string) (string, error) {
	configDir, err := ds.getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, entityType), nil
}

// Load retrieves data for the given entity type and name
// Returns the file content, or an error if not found
func (ds *Storage) Load(entityType string, name string) ([]byte, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	dir, err := ds.Dir(entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration directory: %w", err)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		filePath := filepath.Join(dir, ds.sanitizeFilename(name)+ext)
		data, err := os.ReadFile(filePath)
		if err == nil {
			logging.Debug("Storage", "Loaded %s/%s from %s", entityType, name, filePath)
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	return nil, fmt.Errorf("entity %s/%s not found", entityType, name)
}

// List returns all available names for the given entity type, sorted
func (ds *Storage) List(entityType string) ([]string, error) {
	files, err := ds.listFiles(entityType)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, filePath := range files {
		basename := filepath.Base(filePath)
		names = append(names, strings.TrimSuffix(basename, filepath.Ext(basename)))
	}
	return names, nil
}

// ReadAll reads every .yaml and .yml file of entityType, sorted by file name.
// A missing directory yields no files.  Files that cannot be read are
// returned in the error map keyed by path.
func (ds *Storage) ReadAll(entityType string) ([]StoredFile, map[string]error, error) {
	files, err := ds.listFiles(entityType)
	if err != nil {
		return nil, nil, err
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stored := make([]StoredFile, 0, len(files))
	failed := make(map[string]error)
	for _, filePath := range files {
		data, err := os.ReadFile(filePath)
		if err != nil {
			failed[filePath] = err
			continue
		}
		basename := filepath.Base(filePath)
		stored = append(stored, StoredFile{
			Name: strings.TrimSuffix(basename, filepath.Ext(basename)),
			Path: filePath,
			Data: data,
		})
	}

	logging.Debug("Storage", "Read %d %s files", len(stored), entityType)
	return stored, failed, nil
}

func (ds *Storage) listFiles(entityType string) ([]string, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	dir, err := ds.Dir(entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration directory: %w", err)
	}

	files, err := listYAMLFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}
	return files, nil
}

// getConfigDir returns the configuration directory to use
func (ds *Storage) getConfigDir() (string, error) {
	if ds.configPath != "" {
		return ds.configPath, nil
	}

	return GetUserConfigDir()
}

// listYAMLFiles lists all .yaml and .yml files in a directory, sorted by base name
func listYAMLFiles(dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil // Directory doesn't exist, return empty slice
	}

	yamlFiles, err := filepath.Glob(filepath.Join(dirPath, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(dirPath, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yml files: %w", err)
	}

	allFiles := append(yamlFiles, ymlFiles...)
	sort.Slice(allFiles, func(i, j int) bool {
		return filepath.Base(allFiles[i]) < filepath.Base(allFiles[j])
	})
	return allFiles, nil
}

// isYAMLFile reports whether path has a YAML extension
func isYAMLFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// sanitizeFilename ensures the filename is safe for filesystem operations
func (ds *Storage) sanitizeFilename(name string) string {
	// Replace problematic characters with underscores
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", ".", "_", " ", "_",
	)
	sanitized := replacer.Replace(strings.TrimSpace(name))

	// Collapse multiple consecutive underscores to single underscore
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}

	// Remove leading/trailing underscores
	sanitized = strings.Trim(sanitized, "_")

	// Ensure name is not empty after sanitization
	if sanitized == "" {
		sanitized = "unnamed"
	}

	return sanitized
}
