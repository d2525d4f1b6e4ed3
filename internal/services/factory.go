package services

import (
	"fmt"
	"sort"
	"sync"

	"strata/internal/dependency"
)

// Constructor builds a new, uninitialized component instance for key.
type Constructor func(key dependency.ComponentKey) (Component, error)

// Factory is the explicit registration table of constructors keyed by
// component type and provider.
type Factory struct {
	mu           sync.RWMutex
	constructors map[dependency.ComponentKey]Constructor
}

// NewFactory creates an empty constructor table.
func NewFactory() *Factory {
	return &Factory{
		constructors: make(map[dependency.ComponentKey]Constructor),
	}
}

// Register adds the constructor for key.  Each key can be registered once.
func (f *Factory) Register(key dependency.ComponentKey, constructor Constructor) error {
	if constructor == nil {
		return fmt.Errorf("cannot register nil constructor for %s", key)
	}
	if key.Type == "" || key.Provider == "" {
		return fmt.Errorf("constructor key %q must have both type and provider", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.constructors[key]; exists {
		return fmt.Errorf("constructor for %s already registered", key)
	}
	f.constructors[key] = constructor
	return nil
}

// Lookup returns the constructor registered for key.
func (f *Factory) Lookup(key dependency.ComponentKey) (Constructor, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	constructor, ok := f.constructors[key]
	return constructor, ok
}

// Keys returns every key with a registered constructor, sorted.
func (f *Factory) Keys() []dependency.ComponentKey {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]dependency.ComponentKey, 0, len(f.constructors))
	for key := range f.constructors {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
