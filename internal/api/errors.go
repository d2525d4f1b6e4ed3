package api

import (
	"errors"
	"fmt"
)

// ErrConfiguration classifies errors caused by invalid or unsatisfiable
// configuration: bad definition files, dependencies that cannot be created,
// and similar conditions an operator fixes by changing configuration.
//
// Errors of this class match it through errors.Is.
var ErrConfiguration = errors.New("configuration error")

// IsConfigurationError checks if an error belongs to the configuration class.
//
// Args:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error is or wraps an error matching ErrConfiguration
//
// Example:
//
//	if _, err := loader.LoadDependencies(ctx, key); api.IsConfigurationError(err) {
//	    // Fix the declaration or the dependency's own configuration
//	}
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// NotFoundError represents a resource not found error with contextual information.
// It is returned, for example, when no constructor is registered for a
// component type/provider pair.
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "component", "constructor", "instance")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string
}

// Error implements the error interface for NotFoundError.
// Returns either the custom message if provided, or a formatted default message
// using the resource type and name.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Args:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error is or wraps a NotFoundError, false otherwise
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
//
// Args:
//   - resourceType: The category of resource (e.g., "constructor", "instance")
//   - resourceName: The specific identifier of the resource
//
// Returns:
//   - *NotFoundError: A new NotFoundError instance
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// Specific NotFoundError constructors for each resource type.
var (
	// NewConstructorNotFoundError creates an error for a component key without
	// a registered constructor.
	NewConstructorNotFoundError = func(key string) *NotFoundError {
		return NewNotFoundError("constructor for component", key)
	}

	// NewInstanceNotFoundError creates an error for a component key without a
	// running instance.
	NewInstanceNotFoundError = func(key string) *NotFoundError {
		return NewNotFoundError("component instance", key)
	}
)

// MissingRequiredDependencyError reports that a required dependency of a
// component could not be created or initialized.  It belongs to the
// configuration class and wraps the underlying failure.
type MissingRequiredDependencyError struct {
	// Requester is the component whose dependencies were being loaded.
	Requester string

	// Dependency is the required dependency that failed.
	Dependency string

	// Err is the failure reported while creating or initializing Dependency.
	Err error
}

// Error implements the error interface.
func (e *MissingRequiredDependencyError) Error() string {
	return fmt.Sprintf("required dependency %s of component %s could not be loaded: %v", e.Dependency, e.Requester, e.Err)
}

// Unwrap returns the underlying instantiation failure.
func (e *MissingRequiredDependencyError) Unwrap() error {
	return e.Err
}

// Is places the error in the configuration class.
func (e *MissingRequiredDependencyError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewMissingRequiredDependencyError creates a MissingRequiredDependencyError.
//
// Args:
//   - requester: The component whose dependency failed, as "type/provider"
//   - dependency: The failing dependency, as "type/provider"
//   - err: The underlying failure
//
// Returns:
//   - *MissingRequiredDependencyError: The wrapped error
func NewMissingRequiredDependencyError(requester, dependency string, err error) *MissingRequiredDependencyError {
	return &MissingRequiredDependencyError{
		Requester:  requester,
		Dependency: dependency,
		Err:        err,
	}
}

// IsMissingRequiredDependency checks if an error is or wraps a MissingRequiredDependencyError.
func IsMissingRequiredDependency(err error) bool {
	var missingErr *MissingRequiredDependencyError
	return errors.As(err, &missingErr)
}
