package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"strata/internal/api"
	"strata/internal/dependency"
	"strata/internal/services"
	"strata/pkg/logging"
)

// Instantiator looks up running component instances and creates new ones.
// services.Provider satisfies it.
type Instantiator interface {
	GetExistingInstance(key dependency.ComponentKey) (services.Component, bool)
	CreateAndInitialize(ctx context.Context, key dependency.ComponentKey) (services.Component, error)
}

// DependencySource answers which components a component depends on directly.
// dependency.Manager satisfies it.
type DependencySource interface {
	DirectDependencies(key dependency.ComponentKey) []dependency.Edge
}

// Loader ensures that the direct dependencies of a component are running
// before the component itself is started.
type Loader struct {
	deps         DependencySource
	instantiator Instantiator
	metrics      *Metrics
}

// NewLoader creates a loader.  metrics may be nil.
func NewLoader(deps DependencySource, instantiator Instantiator, metrics *Metrics) *Loader {
	return &Loader{
		deps:         deps,
		instantiator: instantiator,
		metrics:      metrics,
	}
}

// LoadDependencies resolves the direct dependencies of key one at a time, in
// the order the graph returns them.  A dependency that is already running
// counts as loaded.
//
// When a required dependency cannot be created the remaining dependencies are
// not attempted and a *api.MissingRequiredDependencyError is returned.  Any
// other kind of dependency that fails is logged and skipped.
//
// Only direct dependencies are resolved.  Each dependency is expected to load
// its own dependencies when it is started.
func (l *Loader) LoadDependencies(ctx context.Context, key dependency.ComponentKey) ([]dependency.ComponentKey, error) {
	opID := uuid.New().String()
	start := time.Now()
	defer l.metrics.observeLoad(start)

	edges := l.deps.DirectDependencies(key)
	logging.Debug("Loader", "[%s] Loading %d direct dependencies of %s", opID, len(edges), key)

	loaded := make([]dependency.ComponentKey, 0, len(edges))
	for _, edge := range edges {
		if _, ok := l.instantiator.GetExistingInstance(edge.To); ok {
			logging.Debug("Loader", "[%s] Dependency %s of %s is already running", opID, edge.To, key)
			l.metrics.recordDependency(edge.Kind, resultExisting)
			loaded = append(loaded, edge.To)
			continue
		}

		if _, err := l.instantiator.CreateAndInitialize(ctx, edge.To); err != nil {
			if edge.Kind == dependency.KindRequired {
				l.metrics.recordDependency(edge.Kind, resultFailed)
				logging.Error("Loader", err, "[%s] Required dependency %s of %s could not be loaded", opID, edge.To, key)
				return nil, api.NewMissingRequiredDependencyError(key.String(), edge.To.String(), err)
			}
			l.metrics.recordDependency(edge.Kind, resultSkipped)
			logging.Warn("Loader", "[%s] Skipping %s dependency %s of %s: %v", opID, edge.Kind, edge.To, key, err)
			continue
		}

		l.metrics.recordDependency(edge.Kind, resultCreated)
		loaded = append(loaded, edge.To)
	}

	logging.Debug("Loader", "[%s] Loaded %d of %d dependencies of %s", opID, len(loaded), len(edges), key)
	return loaded, nil
}
