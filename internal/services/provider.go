package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"strata/internal/api"
	"strata/internal/dependency"
	"strata/pkg/logging"
)

// Provider looks up running component instances and creates new ones from
// the constructors registered in a Factory.
type Provider struct {
	factory  *Factory
	registry InstanceRegistry

	// creation deduplicates concurrent CreateAndInitialize calls for the same key
	creation singleflight.Group

	mu            sync.RWMutex
	stateChangeCb StateChangeCallback
}

type stateNotifier interface {
	SetStateChangeCallback(callback StateChangeCallback)
}

// NewProvider creates a provider backed by factory and registry.  A nil
// registry gets a fresh one.
func NewProvider(factory *Factory, registry InstanceRegistry) *Provider {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Provider{
		factory:  factory,
		registry: registry,
	}
}

// Registry returns the registry of running instances.
func (p *Provider) Registry() InstanceRegistry {
	return p.registry
}

// SetStateChangeCallback installs callback on every component created after
// this call, provided the component accepts one (BaseComponent does).
func (p *Provider) SetStateChangeCallback(callback StateChangeCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stateChangeCb = callback
}

// GetExistingInstance returns the running instance for key, if any.
func (p *Provider) GetExistingInstance(key dependency.ComponentKey) (Component, bool) {
	return p.registry.Get(key)
}

// CreateAndInitialize builds a new instance for key, runs its Initialize hook
// and registers it.  If an instance is already running it is returned as is.
func (p *Provider) CreateAndInitialize(ctx context.Context, key dependency.ComponentKey) (Component, error) {
	result, err, _ := p.creation.Do(key.String(), func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot
		if existing, ok := p.registry.Get(key); ok {
			return existing, nil
		}
		return p.create(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return result.(Component), nil
}

func (p *Provider) create(ctx context.Context, key dependency.ComponentKey) (Component, error) {
	constructor, ok := p.factory.Lookup(key)
	if !ok {
		return nil, api.NewConstructorNotFoundError(key.String())
	}

	component, err := constructor(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create component %s: %w", key, err)
	}
	if component == nil {
		return nil, fmt.Errorf("constructor for %s returned no component", key)
	}

	p.mu.RLock()
	callback := p.stateChangeCb
	p.mu.RUnlock()
	if notifier, ok := component.(stateNotifier); ok && callback != nil {
		notifier.SetStateChangeCallback(callback)
	}

	setState(component, StateInitializing, nil)
	logging.Debug("Provider", "Initializing component %s", key)

	if err := component.Initialize(ctx); err != nil {
		setState(component, StateFailed, err)
		return nil, fmt.Errorf("failed to initialize component %s: %w", key, err)
	}

	if err := p.registry.Register(component); err != nil {
		// Nothing else may use an instance that cannot be tracked.
		if shutdownErr := component.Shutdown(ctx); shutdownErr != nil {
			logging.Warn("Provider", "Failed to shut down untracked component %s: %v", key, shutdownErr)
		}
		setState(component, StateFailed, err)
		return nil, fmt.Errorf("failed to register component %s: %w", key, err)
	}

	setState(component, StateRunning, nil)
	logging.Info("Provider", "Component %s is running", key)
	return component, nil
}

// Shutdown runs the Shutdown hook of the running instance for key and removes
// it from the registry, whether or not the hook succeeds.
func (p *Provider) Shutdown(ctx context.Context, key dependency.ComponentKey) error {
	component, ok := p.registry.Get(key)
	if !ok {
		return api.NewInstanceNotFoundError(key.String())
	}

	setState(component, StateStopping, nil)
	err := component.Shutdown(ctx)
	if unregisterErr := p.registry.Unregister(key); unregisterErr != nil {
		logging.Debug("Provider", "Component %s was already unregistered", key)
	}

	if err != nil {
		setState(component, StateFailed, err)
		return fmt.Errorf("failed to shut down component %s: %w", key, err)
	}
	setState(component, StateStopped, nil)
	logging.Info("Provider", "Component %s stopped", key)
	return nil
}

func setState(component Component, state State, err error) {
	if updater, ok := component.(StateUpdater); ok {
		updater.UpdateState(state, err)
	}
}
