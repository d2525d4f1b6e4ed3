package cmd

import (
	"fmt"

	"strata/internal/config"
	"strata/internal/dependency"
	"strata/internal/orchestrator"
	"strata/internal/services"
	"strata/pkg/logging"
)

// CheckFailedError is returned by the check command when it finds missing
// required dependencies, version mismatches or a cycle.
type CheckFailedError struct {
	Problems int
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("dependency check failed with %d problem(s)", e.Problems)
}

// loadDefinitions reads the component definitions of dir and registers them
// with a fresh orchestrator.  Broken definition files are logged and skipped
// unless strict is set, in which case the configuration error is returned.
//
// The CLI never starts components, so the orchestrator gets an empty factory.
func loadDefinitions(dir string, strict bool) (*orchestrator.Orchestrator, error) {
	definitions, err := config.LoadComponents(dir)
	if err != nil {
		collection, ok := config.IsConfigurationErrorCollection(err)
		if !ok || strict {
			return nil, err
		}
		for _, cfgErr := range collection.Errors {
			logging.Warn("CLI", "Skipping component definition: %s", cfgErr.Error())
		}
	}

	orch, err := orchestrator.New(orchestrator.Config{Factory: services.NewFactory()})
	if err != nil {
		return nil, err
	}
	for _, md := range definitions {
		if err := orch.Register(md); err != nil {
			return nil, err
		}
	}
	return orch, nil
}

// availableComponents is every defined component plus the components listed
// in config.yaml and on the command line.
func availableComponents(orch *orchestrator.Orchestrator, extra []string) (dependency.KeySet, error) {
	available, err := loadedConfig.AvailableKeys()
	if err != nil {
		return nil, err
	}
	for _, key := range orch.Components() {
		available.Add(key)
	}
	for _, entry := range extra {
		key, err := dependency.ParseKey(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid --available value %q: %w", entry, err)
		}
		available.Add(key)
	}
	return available, nil
}
