package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"strata/internal/dependency"
	"strata/internal/services"
	"strata/pkg/logging"
)

// Orchestrator owns the dependency metadata of every registered component and
// starts and stops component instances in dependency order.
//
// All access to the dependency manager goes through the orchestrator lock, so
// components may be registered from multiple goroutines.
type Orchestrator struct {
	manager  *dependency.Manager
	provider *services.Provider
	loader   *Loader
	metrics  *Metrics

	mu sync.RWMutex

	// State change event subscribers
	subMu                  sync.RWMutex
	stateChangeSubscribers []chan<- StateChangedEvent
}

// Config holds the configuration for the orchestrator.
type Config struct {
	// Factory holds the constructors of every available provider.  Required.
	Factory *services.Factory

	// Registry tracks running instances.  Optional, a fresh one is used when nil.
	Registry services.InstanceRegistry

	// Metrics receives the loader and orchestrator metrics.  Optional.
	Metrics prometheus.Registerer
}

// StateChangedEvent represents a component state change event.
type StateChangedEvent struct {
	Key       dependency.ComponentKey
	OldState  services.State
	NewState  services.State
	Error     error
	Timestamp time.Time
}

// New creates a new orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Factory == nil {
		return nil, errors.New("orchestrator requires a component factory")
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	manager := dependency.NewManager()
	provider := services.NewProvider(cfg.Factory, cfg.Registry)

	o := &Orchestrator{
		manager:  manager,
		provider: provider,
		loader:   NewLoader(manager, provider, metrics),
		metrics:  metrics,
	}
	provider.SetStateChangeCallback(o.publishStateChangeEvent)
	return o, nil
}

// Register records the dependency metadata of a component.  Registering the
// same component again replaces its metadata and adds its declared edges; edges
// that are no longer declared are kept.
func (o *Orchestrator) Register(md dependency.ComponentMetadata) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.manager.RegisterComponentMetadata(md.Key, md)
	o.metrics.setRegistered(len(o.manager.Components()))
	if err != nil {
		return fmt.Errorf("failed to register component %s: %w", md.Key, err)
	}
	return nil
}

// Components returns every component with registered metadata, sorted.
func (o *Orchestrator) Components() []dependency.ComponentKey {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.Components()
}

// Metadata returns the registered metadata for key.
func (o *Orchestrator) Metadata(key dependency.ComponentKey) (dependency.ComponentMetadata, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.Metadata(key)
}

// DirectDependencies returns the declared dependencies of key.
func (o *Orchestrator) DirectDependencies(key dependency.ComponentKey) []dependency.Edge {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.DirectDependencies(key)
}

// InitializationOrder returns every known component with dependencies first.
func (o *Orchestrator) InitializationOrder() ([]dependency.ComponentKey, error) {
	o.mu.Lock() // the graph caches its order
	defer o.mu.Unlock()
	return o.manager.InitializationOrder()
}

// ShutdownOrder returns every known component with dependents first.
func (o *Orchestrator) ShutdownOrder() ([]dependency.ComponentKey, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.manager.ShutdownOrder()
}

// MissingDependencies returns the required dependencies of key that are not
// in available.
func (o *Orchestrator) MissingDependencies(key dependency.ComponentKey, available dependency.KeySet) []dependency.ComponentKey {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.MissingDependencies(key, available)
}

// VerifyDependencies reports the missing required dependencies of every
// registered component.
func (o *Orchestrator) VerifyDependencies(available dependency.KeySet) map[dependency.ComponentKey][]dependency.ComponentKey {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.VerifyDependencies(available)
}

// VerifyVersions reports every declared version constraint that the registered
// dependency does not satisfy.
func (o *Orchestrator) VerifyVersions() []dependency.VersionMismatch {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.manager.VerifyVersions()
}

// Start loads the direct dependencies of key and then starts key itself.  It
// returns the running instance.
func (o *Orchestrator) Start(ctx context.Context, key dependency.ComponentKey) (services.Component, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.start(ctx, key)
}

func (o *Orchestrator) start(ctx context.Context, key dependency.ComponentKey) (services.Component, error) {
	if _, err := o.loader.LoadDependencies(ctx, key); err != nil {
		o.metrics.recordStart(err)
		return nil, fmt.Errorf("failed to load dependencies of %s: %w", key, err)
	}

	if existing, ok := o.provider.GetExistingInstance(key); ok {
		return existing, nil
	}

	component, err := o.provider.CreateAndInitialize(ctx, key)
	o.metrics.recordStart(err)
	if err != nil {
		return nil, err
	}
	return component, nil
}

// StartAll starts every registered component in initialization order.  A
// component that fails to start is skipped when every dependent declares it
// as non-required.  Any other failure aborts the sequence; components started
// before it keep running.
func (o *Orchestrator) StartAll(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, err := o.manager.InitializationOrder()
	if err != nil {
		return fmt.Errorf("cannot determine initialization order: %w", err)
	}

	started, skipped := 0, 0
	for _, key := range order {
		// Keys that only appear as dependencies are started by their dependents.
		if _, ok := o.manager.Metadata(key); !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := o.start(ctx, key); err != nil {
			if !o.isCritical(key) {
				logging.Warn("Orchestrator", "Skipping component %s, no component requires it: %v", key, err)
				skipped++
				continue
			}
			logging.Error("Orchestrator", err, "Failed to start component %s", key)
			return err
		}
		started++
	}

	logging.Info("Orchestrator", "Started %d components (%d skipped)", started, skipped)
	return nil
}

// isCritical reports whether a start failure of key must abort StartAll.
// A component that others only use as optional, runtime or enhances
// dependency is not critical; a top-level component is.
func (o *Orchestrator) isCritical(key dependency.ComponentKey) bool {
	graph := o.manager.Graph()
	if len(graph.Dependents(key)) == 0 {
		return true
	}
	return len(graph.Dependents(key, dependency.KindRequired)) > 0
}

// StopAll shuts down every running instance in shutdown order and returns the
// joined shutdown errors.  When the order cannot be computed the running
// instances are stopped in reverse key order instead.
func (o *Orchestrator) StopAll(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	order, err := o.manager.ShutdownOrder()
	if err != nil {
		logging.Warn("Orchestrator", "Cannot determine shutdown order, stopping in reverse key order: %v", err)
		running := o.provider.Registry().GetAll()
		order = make([]dependency.ComponentKey, 0, len(running))
		for i := len(running) - 1; i >= 0; i-- {
			order = append(order, running[i].Key())
		}
	}

	var errs []error
	for _, key := range order {
		if _, ok := o.provider.GetExistingInstance(key); !ok {
			continue
		}
		err := o.provider.Shutdown(ctx, key)
		o.metrics.recordStop(err)
		if err != nil {
			logging.Error("Orchestrator", err, "Failed to stop component %s", key)
			errs = append(errs, err)
		}
	}

	// Instances that are running but unknown to the graph
	for _, component := range o.provider.Registry().GetAll() {
		err := o.provider.Shutdown(ctx, component.Key())
		o.metrics.recordStop(err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Running returns the running component instances, sorted by key.
func (o *Orchestrator) Running() []services.Component {
	return o.provider.Registry().GetAll()
}

// SubscribeToStateChanges returns a channel for state change events.
func (o *Orchestrator) SubscribeToStateChanges() <-chan StateChangedEvent {
	eventChan := make(chan StateChangedEvent, 100)
	o.subMu.Lock()
	o.stateChangeSubscribers = append(o.stateChangeSubscribers, eventChan)
	o.subMu.Unlock()
	return eventChan
}

// publishStateChangeEvent publishes a state change event to all subscribers
func (o *Orchestrator) publishStateChangeEvent(key dependency.ComponentKey, oldState, newState services.State, err error) {
	logging.Debug("Orchestrator", "Component %s state changed: %s -> %s", key, oldState, newState)

	event := StateChangedEvent{
		Key:       key,
		OldState:  oldState,
		NewState:  newState,
		Error:     err,
		Timestamp: time.Now(),
	}

	o.subMu.RLock()
	subscribers := make([]chan<- StateChangedEvent, len(o.stateChangeSubscribers))
	copy(subscribers, o.stateChangeSubscribers)
	o.subMu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Don't block if subscriber can't receive immediately
			logging.Debug("Orchestrator", "Subscriber blocked, skipping event for component %s", key)
		}
	}
}
