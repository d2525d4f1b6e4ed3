// Package services provides the component abstraction layer for strata.
//
// A component is a pluggable unit identified by its type and provider
// (for example llm/openai or cache/redis). This package defines the
// Component interface that every plugin implements, the registry that tracks
// running instances, and the Provider that creates instances on demand.
//
// # Core Concepts
//
// Component: The fundamental unit managed by strata. Each component has an
// Initialize and a Shutdown hook and reports its current State.
//
// BaseComponent: Embeddable helper that stores the key, the current state and
// the last error, and notifies an optional StateChangeCallback on transitions.
//
// Factory: Explicit table of constructors keyed by type and provider. There is
// no reflection or naming convention involved; every provider must be
// registered before it can be created.
//
// InstanceRegistry: Thread-safe registry of running instances. Query results
// are sorted by key.
//
// Provider: Combines a Factory and an InstanceRegistry. CreateAndInitialize
// constructs, initializes and registers an instance. Concurrent calls for the
// same key share a single creation.
//
// # Component States
//
//	unknown -> initializing -> running -> stopping -> stopped
//	                       \-> failed             \-> failed
//
// # Example
//
//	factory := services.NewFactory()
//	_ = factory.Register(dependency.NewKey("cache", "redis"), newRedisCache)
//
//	provider := services.NewProvider(factory, nil)
//	cache, err := provider.CreateAndInitialize(ctx, dependency.NewKey("cache", "redis"))
//	if err != nil {
//	    return err
//	}
//	defer provider.Shutdown(ctx, cache.Key())
package services
