package services

import (
	"fmt"
	"sort"
	"sync"

	"strata/internal/api"
	"strata/internal/dependency"
)

// registry is a simple implementation of InstanceRegistry
type registry struct {
	mu        sync.RWMutex
	instances map[dependency.ComponentKey]Component
}

// NewRegistry creates a new instance registry
func NewRegistry() InstanceRegistry {
	return &registry{
		instances: make(map[dependency.ComponentKey]Component),
	}
}

// Register adds an instance to the registry
func (r *registry) Register(component Component) error {
	if component == nil {
		return fmt.Errorf("cannot register nil component")
	}

	key := component.Key()
	if key.Type == "" || key.Provider == "" {
		return fmt.Errorf("component has incomplete key %q", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[key]; exists {
		return fmt.Errorf("component %s already registered", key)
	}

	r.instances[key] = component
	return nil
}

// Unregister removes an instance from the registry
func (r *registry) Unregister(key dependency.ComponentKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[key]; !exists {
		return api.NewInstanceNotFoundError(key.String())
	}

	delete(r.instances, key)
	return nil
}

// Get returns an instance by key
func (r *registry) Get(key dependency.ComponentKey) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	component, exists := r.instances[key]
	return component, exists
}

// GetAll returns all registered instances
func (r *registry) GetAll() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	components := make([]Component, 0, len(r.instances))
	for _, component := range r.instances {
		components = append(components, component)
	}
	sortComponents(components)
	return components
}

// GetByType returns all instances of a specific component type
func (r *registry) GetByType(componentType string) []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var components []Component
	for key, component := range r.instances {
		if key.Type == componentType {
			components = append(components, component)
		}
	}
	sortComponents(components)
	return components
}

func sortComponents(components []Component) {
	sort.Slice(components, func(i, j int) bool {
		return components[i].Key().Less(components[j].Key())
	})
}
