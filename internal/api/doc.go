// Package api holds the error types shared across strata packages.
//
// The package does not import any other internal package, so every layer
// (dependency, services, orchestrator, config, cmd) can depend on it without
// creating import cycles.  Component keys are therefore carried as their
// "type/provider" string form.
//
// # Error Classes
//
//   - ErrConfiguration: the declarations or a dependency's own configuration
//     are wrong.  MissingRequiredDependencyError and config.ConfigurationError
//     match it through errors.Is.
//   - NotFoundError: a constructor or running instance does not exist.
//
// Callers should test errors with the Is* helpers rather than by type switch
// so that wrapped errors are recognised.
package api
