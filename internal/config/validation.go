package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"strata/internal/dependency"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateComponentMetadata checks a component definition and every declared
// dependency.  All problems are reported, not just the first.
func ValidateComponentMetadata(md dependency.ComponentMetadata) ValidationErrors {
	var errs ValidationErrors

	addErr := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	addErr(ValidateRequired("type", md.Key.Type, "component"))
	addErr(ValidateRequired("provider", md.Key.Provider, "component"))
	if strings.Contains(md.Key.Type, "/") || strings.Contains(md.Key.Provider, "/") {
		errs.Add("type", "type and provider cannot contain '/'", md.Key.String())
	}

	if md.Version != "" {
		if _, err := semver.NewVersion(md.Version); err != nil {
			errs.Add("version", fmt.Sprintf("is not a semantic version: %v", err), md.Version)
		}
	}

	allowedKinds := make([]string, 0, len(dependency.Kinds))
	for _, kind := range dependency.Kinds {
		allowedKinds = append(allowedKinds, kind.String())
	}

	seen := dependency.NewKeySet()
	for i, dep := range md.Dependencies {
		prefix := fmt.Sprintf("dependencies[%d]", i)

		addErr(ValidateRequired(prefix+".type", dep.Type, "dependency"))
		addErr(ValidateRequired(prefix+".provider", dep.Provider, "dependency"))

		if dep.Kind != "" {
			addErr(ValidateOneOf(prefix+".kind", strings.ToLower(string(dep.Kind)), allowedKinds))
		}

		if dep.Version != "" {
			if _, err := semver.NewConstraint(dep.Version); err != nil {
				errs.Add(prefix+".version", fmt.Sprintf("is not a valid version constraint: %v", err), dep.Version)
			}
		}

		key := dep.Key()
		if key == md.Key {
			errs.Add(prefix, "a component cannot depend on itself", key.String())
		}
		if seen.Has(key) {
			errs.Add(prefix, fmt.Sprintf("duplicate dependency %s", key), key.String())
		}
		seen.Add(key)
	}

	return errs
}
