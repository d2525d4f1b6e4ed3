// Package orchestrator starts and stops strata components in dependency order.
//
// # Dependency Loading
//
// Loader.LoadDependencies makes sure the direct dependencies of a component
// have running instances before the component is started. Dependencies are
// resolved one at a time in the order returned by the dependency graph:
//
//  1. An already running instance counts as loaded.
//  2. Otherwise the instance is created and initialized through the Instantiator.
//  3. If a required dependency fails, loading stops and a
//     *api.MissingRequiredDependencyError is returned. It matches
//     api.ErrConfiguration and unwraps to the original failure.
//  4. Optional, runtime and enhances dependencies that fail are logged as
//     warnings and skipped.
//
// Only direct dependencies are resolved. Transitive dependencies are loaded
// when each dependency is started itself, which is what StartAll does by
// walking the whole initialization order.
//
// # Orchestrator
//
// The Orchestrator owns a dependency.Manager and a services.Provider. All
// manager access happens under the orchestrator lock, which makes
// registration safe from concurrent goroutines.
//
//	orch, err := orchestrator.New(orchestrator.Config{Factory: factory})
//	if err != nil {
//	    return err
//	}
//	for _, md := range definitions {
//	    if err := orch.Register(md); err != nil {
//	        return err
//	    }
//	}
//	if err := orch.StartAll(ctx); err != nil {
//	    return err
//	}
//	defer orch.StopAll(context.Background())
//
// StopAll walks the shutdown order so that dependents stop before the
// components they rely on. Shutdown failures do not stop the walk; they are
// combined with errors.Join.
//
// # Metrics
//
// When Config.Metrics is set, the following Prometheus metrics are registered:
//
//   - strata_loader_dependencies_total{kind,result}
//   - strata_loader_load_duration_seconds
//   - strata_orchestrator_component_starts_total{result}
//   - strata_orchestrator_component_stops_total{result}
//   - strata_orchestrator_registered_components
//
// # Events
//
// SubscribeToStateChanges returns a buffered channel of component state
// transitions. Slow subscribers miss events rather than blocking startup.
package orchestrator
