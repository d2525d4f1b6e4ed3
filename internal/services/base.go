package services

import (
	"sync"

	"strata/internal/dependency"
)

// BaseComponent provides a base implementation of the state-related parts of
// Component that concrete components can embed, leaving only Initialize and
// Shutdown to implement.
type BaseComponent struct {
	mu            sync.RWMutex
	key           dependency.ComponentKey
	state         State
	lastError     error
	stateChangeCb StateChangeCallback
}

// NewBaseComponent creates a new base component
func NewBaseComponent(key dependency.ComponentKey) *BaseComponent {
	return &BaseComponent{
		key:   key,
		state: StateUnknown,
	}
}

// Key returns the component key
func (b *BaseComponent) Key() dependency.ComponentKey {
	return b.key
}

// State returns the current state
func (b *BaseComponent) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// LastError returns the error recorded with the last state change
func (b *BaseComponent) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// SetStateChangeCallback sets the state change callback
func (b *BaseComponent) SetStateChangeCallback(callback StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateChangeCb = callback
}

// UpdateState updates the component state and notifies the callback
func (b *BaseComponent) UpdateState(newState State, err error) {
	b.mu.Lock()
	oldState := b.state
	b.state = newState
	b.lastError = err
	callback := b.stateChangeCb
	b.mu.Unlock()

	// Call the callback outside of the lock to avoid deadlocks
	if callback != nil && oldState != newState {
		callback(b.key, oldState, newState, err)
	}
}
