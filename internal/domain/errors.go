package domain

import (
	"fmt"
	"strings"
)

// Error taxonomy. Registry and configuration errors abort a run before
// any API call; the remaining kinds surface as entity failures or
// per-item warnings and never crash the process.

// DuplicateEntityError is returned when two descriptors register the
// same entity name.
type DuplicateEntityError struct {
	Name EntityName
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("entity %q is already registered", e.Name)
}

// UnknownDependencyError is returned when a descriptor depends on a
// name that was never registered.
type UnknownDependencyError struct {
	Entity     EntityName
	Dependency EntityName
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("entity %q depends on unknown entity %q", e.Entity, e.Dependency)
}

// CyclicDependencyError names every entity on a dependency cycle.
type CyclicDependencyError struct {
	Cycle []EntityName
}

func (e *CyclicDependencyError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		names[i] = string(n)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(names, " -> "))
}

// DependencyDisabledError is returned when an enabled entity depends on
// an entity disabled by configuration. Silently skipping a declared
// dependency is never acceptable.
type DependencyDisabledError struct {
	Entity     EntityName
	Dependency EntityName
}

func (e *DependencyDisabledError) Error() string {
	return fmt.Sprintf("entity %q is enabled but its dependency %q is disabled", e.Entity, e.Dependency)
}

// MissingDependencyError is returned by a descriptor's strategy
// constructor when a required StrategyContext field is absent.
type MissingDependencyError struct {
	Entity EntityName
	Field  string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("entity %q requires context field %q", e.Entity, e.Field)
}

// ConfigurationError covers invalid user-supplied configuration such as
// malformed selective filters or an unknown conflict strategy.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// RateLimitExceededError is raised when the retry budget for a single
// API call is exhausted. It fails the entity, never the process.
type RateLimitExceededError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit retries exhausted for %s after %d attempts: %v",
		e.Operation, e.Attempts, e.Err)
}

func (e *RateLimitExceededError) Unwrap() error { return e.Err }

// ConflictError is raised by the fail-if-existing and fail-if-conflict
// policies before anything is written.
type ConflictError struct {
	Entity EntityName
	Key    string
}

func (e *ConflictError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("entity %q: target collection is not empty", e.Entity)
	}
	return fmt.Sprintf("entity %q: item %q already exists in target", e.Entity, e.Key)
}

// DataIntegrityError marks a single item that cannot be restored, such
// as a comment whose parent was never mapped. It is recorded as a
// warning; sibling items keep processing.
type DataIntegrityError struct {
	Entity EntityName
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("entity %q: %s", e.Entity, e.Reason)
}

// NewDataIntegrityError formats a DataIntegrityError.
func NewDataIntegrityError(entity EntityName, format string, args ...any) *DataIntegrityError {
	return &DataIntegrityError{Entity: entity, Reason: fmt.Sprintf(format, args...)}
}
