// Package dependency models declared dependencies between pluggable
// components and computes the order in which they have to be initialized and
// shut down.
//
// # Core Concepts
//
// ComponentKey: A (type, provider) pair such as llm/openai or cache/redis.
// It is a plain comparable value and is used directly as a map key.
//
// Kind: The classification of an edge:
//   - required: the dependent cannot function without the dependency
//   - optional: the dependent degrades gracefully without it
//   - runtime: only needed after initialization
//   - enhances: the dependency augments the dependent
//
// All kinds take part in ordering in the same way.
//
// Graph: Forward and reverse adjacency maps keyed by ComponentKey.  Nodes are
// implicit; a key belongs to the graph while it sits on either end of an edge.
//
// Manager: Ingests ComponentMetadata, populates the Graph and answers
// ordering, availability and version questions.
//
// # Ordering
//
// TopologicalSort runs a depth-first search with three markers per node
// (unvisited, in progress, done).  Reaching a node that is still in progress
// means a cycle, reported as a *CycleError carrying the full chain:
//
//	dependency cycle detected: llm/openai -> cache/redis -> llm/openai
//
// The last successful order is cached and invalidated by every mutation.
// ReverseTopologicalSort is its exact reverse and is used for shutdown.
//
// # Usage Example
//
//	m := dependency.NewManager()
//	_ = m.RegisterComponentMetadata(dependency.NewKey("llm", "openai"), dependency.ComponentMetadata{
//	    Dependencies: []dependency.DependencySpec{
//	        {Type: "cache", Provider: "redis", Kind: dependency.KindOptional},
//	        {Type: "secrets", Provider: "vault", Kind: dependency.KindRequired},
//	    },
//	})
//
//	order, err := m.InitializationOrder()
//	// order: [secrets/vault cache/redis llm/openai] (dependencies first)
//
//	missing := m.MissingDependencies(dependency.NewKey("llm", "openai"), dependency.NewKeySet())
//	// missing: [secrets/vault]
//
// # Thread Safety
//
// Neither Graph nor Manager is thread-safe.  They are populated during a
// single-threaded registration phase; the orchestrator guards its Manager
// with a mutex when definitions are reloaded at runtime.
//
// # Known Limitations
//
// Re-registering a component does not remove edges for dependencies it no
// longer declares.
package dependency
