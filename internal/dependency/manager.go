package dependency

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"strata/pkg/logging"
)

// DependencySpec is a single declared dependency of a component.
type DependencySpec struct {
	Type     string `yaml:"type" json:"type"`
	Provider string `yaml:"provider" json:"provider"`
	Kind     Kind   `yaml:"kind,omitempty" json:"kind,omitempty"`
	// Version is an optional semver constraint on the dependency, e.g. ">=1.2.0".
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// Key returns the key of the declared dependency.
func (s DependencySpec) Key() ComponentKey {
	return ComponentKey{Type: s.Type, Provider: s.Provider}
}

// ComponentMetadata is what a component declares about itself at registration.
type ComponentMetadata struct {
	Key          ComponentKey     `yaml:",inline"`
	Version      string           `yaml:"version,omitempty"`
	Description  string           `yaml:"description,omitempty"`
	Dependencies []DependencySpec `yaml:"dependencies,omitempty"`
}

// VersionMismatch describes a dependency whose registered version does not
// satisfy the constraint declared by the dependent.
type VersionMismatch struct {
	Component  ComponentKey
	Dependency ComponentKey
	Constraint string
	Version    string
	Reason     string
}

// Manager ingests component metadata and answers ordering and availability
// questions over the resulting dependency graph.
//
// Like Graph, Manager is not thread-safe.
type Manager struct {
	graph    *Graph
	metadata map[ComponentKey]ComponentMetadata
}

// NewManager returns a manager with an empty graph.
func NewManager() *Manager {
	return &Manager{
		graph:    New(),
		metadata: make(map[ComponentKey]ComponentMetadata),
	}
}

// Graph exposes the underlying graph.
func (m *Manager) Graph() *Graph {
	return m.graph
}

// RegisterComponentMetadata stores md for key and adds an edge for every
// declared dependency.  Registering the same key again replaces the stored
// metadata and re-adds its edges; edges that are no longer declared are left
// in place.
//
// Entries are validated one at a time.  On the first invalid entry an error
// is returned and the edges added before it remain, but md is not stored.
func (m *Manager) RegisterComponentMetadata(key ComponentKey, md ComponentMetadata) error {
	if key.Type == "" || key.Provider == "" {
		return fmt.Errorf("component key %q must have both type and provider", key)
	}
	md.Key = key

	for i, dep := range md.Dependencies {
		depKey := dep.Key()
		if depKey.Type == "" || depKey.Provider == "" {
			return fmt.Errorf("component %s: dependency #%d must have both type and provider", key, i)
		}
		kind, err := ParseKind(string(dep.Kind))
		if err != nil {
			return fmt.Errorf("component %s: dependency %s: %w", key, depKey, err)
		}
		if dep.Version != "" {
			if _, err := semver.NewConstraint(dep.Version); err != nil {
				return fmt.Errorf("component %s: dependency %s: invalid version constraint %q: %w", key, depKey, dep.Version, err)
			}
		}
		m.graph.AddDependency(key, depKey, kind)
	}
	m.metadata[key] = md

	logging.Debug("DependencyManager", "Registered %s with %d declared dependencies", key, len(md.Dependencies))
	return nil
}

// Metadata returns the metadata registered for key.
func (m *Manager) Metadata(key ComponentKey) (ComponentMetadata, bool) {
	md, ok := m.metadata[key]
	return md, ok
}

// Components returns every key that has registered metadata, sorted.
func (m *Manager) Components() []ComponentKey {
	keys := make([]ComponentKey, 0, len(m.metadata))
	for key := range m.metadata {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// DirectDependencies returns the edges leaving key.
func (m *Manager) DirectDependencies(key ComponentKey) []Edge {
	return m.graph.OutgoingEdges(key)
}

// InitializationOrder returns dependencies before dependents.
func (m *Manager) InitializationOrder() ([]ComponentKey, error) {
	return m.graph.TopologicalSort()
}

// ShutdownOrder returns dependents before dependencies.
func (m *Manager) ShutdownOrder() ([]ComponentKey, error) {
	return m.graph.ReverseTopologicalSort()
}

// MissingDependencies returns the required direct dependencies of key that
// are not in available.  The result is never nil.
func (m *Manager) MissingDependencies(key ComponentKey, available KeySet) []ComponentKey {
	missing := []ComponentKey{}
	for _, dep := range m.graph.Dependencies(key, KindRequired) {
		if !available.Has(dep) {
			missing = append(missing, dep)
		}
	}
	return missing
}

// VerifyDependencies runs MissingDependencies for every registered component
// and returns only the components with something missing.
func (m *Manager) VerifyDependencies(available KeySet) map[ComponentKey][]ComponentKey {
	result := make(map[ComponentKey][]ComponentKey)
	for key := range m.metadata {
		if missing := m.MissingDependencies(key, available); len(missing) > 0 {
			result[key] = missing
		}
	}
	return result
}

// IncompatibleDependencies checks the declared version constraints of key
// against the versions its dependencies registered with.  Dependencies
// without a constraint, without metadata or without a version are skipped.
func (m *Manager) IncompatibleDependencies(key ComponentKey) []VersionMismatch {
	md, ok := m.metadata[key]
	if !ok {
		return nil
	}

	var mismatches []VersionMismatch
	for _, dep := range md.Dependencies {
		if dep.Version == "" {
			continue
		}
		depMeta, ok := m.metadata[dep.Key()]
		if !ok || depMeta.Version == "" {
			continue
		}

		mismatch := VersionMismatch{
			Component:  key,
			Dependency: dep.Key(),
			Constraint: dep.Version,
			Version:    depMeta.Version,
		}
		constraint, err := semver.NewConstraint(dep.Version)
		if err != nil {
			mismatch.Reason = err.Error()
			mismatches = append(mismatches, mismatch)
			continue
		}
		version, err := semver.NewVersion(depMeta.Version)
		if err != nil {
			mismatch.Reason = fmt.Sprintf("invalid version: %v", err)
			mismatches = append(mismatches, mismatch)
			continue
		}
		if ok, errs := constraint.Validate(version); !ok {
			mismatch.Reason = joinConstraintErrors(errs)
			mismatches = append(mismatches, mismatch)
		}
	}
	return mismatches
}

// VerifyVersions runs IncompatibleDependencies for every registered component.
func (m *Manager) VerifyVersions() []VersionMismatch {
	var all []VersionMismatch
	for _, key := range m.Components() {
		all = append(all, m.IncompatibleDependencies(key)...)
	}
	return all
}

func joinConstraintErrors(errs []error) string {
	if len(errs) == 0 {
		return "constraint not satisfied"
	}
	msg := errs[0].Error()
	for _, err := range errs[1:] {
		msg += "; " + err.Error()
	}
	return msg
}
