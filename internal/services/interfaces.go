package services

import (
	"context"

	"strata/internal/dependency"
)

// State represents the lifecycle state of a component instance.
type State string

const (
	StateUnknown      State = "Unknown"
	StateInitializing State = "Initializing"
	StateRunning      State = "Running"
	StateFailed       State = "Failed"
	StateStopping     State = "Stopping"
	StateStopped      State = "Stopped"
)

// Component is the interface every pluggable component instance implements.
type Component interface {
	// Key identifies the component variant.
	Key() dependency.ComponentKey

	// Lifecycle hooks
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	// State returns the current lifecycle state.
	State() State
}

// StateChangeCallback is called when a component's state changes
type StateChangeCallback func(key dependency.ComponentKey, oldState, newState State, err error)

// StateUpdater is an optional interface for components that allow external state updates.
// The Provider uses it to record Initializing/Running/Failed transitions around the
// lifecycle hooks.
type StateUpdater interface {
	UpdateState(state State, err error)
}

// InstanceRegistry holds the running component instances
type InstanceRegistry interface {
	// Register adds an instance to the registry
	Register(component Component) error

	// Unregister removes an instance from the registry
	Unregister(key dependency.ComponentKey) error

	// Get returns an instance by key
	Get(key dependency.ComponentKey) (Component, bool)

	// GetAll returns all registered instances, sorted by key
	GetAll() []Component

	// GetByType returns all instances of a component type, sorted by key
	GetByType(componentType string) []Component
}
