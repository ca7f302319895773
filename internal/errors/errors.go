// Package errors provides centralized error definitions and error handling
// utilities for the qflow codebase. It defines domain-specific sentinel
// errors, semantic error types, and classification helpers.
//
// # Error Types
//
// Sentinel errors cover the common failure conditions of the queue and
// planning layers:
//   - ErrTaskNotFound: a referenced task id is not in the store
//   - ErrDependencyCycle: the dependency graph cannot be ordered
//   - ErrQueueCorrupted: a store file contained malformed JSON
//   - ErrGroupOutOfRange: a parallel group index is out of range
//
// Semantic error types carry structured context:
//   - NotFoundError: a named resource (task, session context) was not found
//   - CycleError: a dependency cycle, with the ids left unordered
//   - StoreError: a failure reading or writing a queue file
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewNotFoundError("task", "task-a1b2c3d4")
//	err := errors.NewCycleError(unsortedIDs)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDependencyCycle) { ... }
//
//	var cycleErr *errors.CycleError
//	if errors.As(err, &cycleErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Queue-related sentinel errors
var (
	// ErrTaskNotFound indicates that a task could not be found in the store.
	ErrTaskNotFound = New("task not found")
	// ErrDependencyCycle indicates a circular dependency between tasks.
	ErrDependencyCycle = New("circular dependency detected in task queue")
	// ErrQueueCorrupted indicates that a queue file contained malformed JSON.
	ErrQueueCorrupted = New("queue file corrupted")
	// ErrQueueEmpty indicates that no queued tasks are available.
	ErrQueueEmpty = New("queue is empty")
	// ErrGroupOutOfRange indicates a parallel group number outside the plan.
	ErrGroupOutOfRange = New("parallel group number out of range")
)

// Session-related sentinel errors
var (
	// ErrContextNotFound indicates that no session context file exists.
	ErrContextNotFound = New("session context not found")
	// ErrContextCorrupted indicates that the session context file is corrupted.
	ErrContextCorrupted = New("session context corrupted")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates that a named resource could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("task", "task-a1b2c3d4")
//	fmt.Println(err) // "task not found: task-a1b2c3d4"
type NotFoundError struct {
	// Resource is the kind of resource, e.g. "task" or "session context".
	Resource string
	// ID identifies the specific resource instance.
	ID string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is reports whether the target matches a not-found condition.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrTaskNotFound && e.Resource == "task" {
		return true
	}
	if target == ErrContextNotFound && e.Resource == "session context" {
		return true
	}
	return false
}

// CycleError indicates that topological ordering failed because the
// dependency graph contains a cycle. Remaining holds the ids that could
// not be placed in the output ordering.
type CycleError struct {
	Remaining []string
}

// NewCycleError creates a new CycleError for the given unordered ids.
func NewCycleError(remaining []string) *CycleError {
	return &CycleError{Remaining: remaining}
}

// Error returns the formatted error message.
func (e *CycleError) Error() string {
	if len(e.Remaining) == 0 {
		return ErrDependencyCycle.Error()
	}
	return fmt.Sprintf("%s (unordered: %s)",
		ErrDependencyCycle.Error(), strings.Join(e.Remaining, ", "))
}

// Is reports whether target is ErrDependencyCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrDependencyCycle
}

// StoreError indicates a failure while reading or writing a queue file.
type StoreError struct {
	// Path is the file the operation touched.
	Path string
	// Op is the operation that failed, e.g. "read", "write", "marshal".
	Op    string
	cause error
}

// NewStoreError creates a new StoreError wrapping the underlying cause.
func NewStoreError(op, path string, cause error) *StoreError {
	return &StoreError{Op: op, Path: path, cause: cause}
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("queue store %s %s: %v", e.Op, e.Path, e.cause)
	}
	return fmt.Sprintf("queue store %s %s failed", e.Op, e.Path)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.cause
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsNotFound returns true if err represents any not-found condition.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if As(err, &nf) {
		return true
	}
	return Is(err, ErrTaskNotFound) || Is(err, ErrContextNotFound)
}

// IsCycle returns true if err represents a dependency cycle.
func IsCycle(err error) bool {
	return Is(err, ErrDependencyCycle)
}

// IsCorrupted returns true if err represents a corrupted store file.
// Callers are expected to recover by treating the store as empty.
func IsCorrupted(err error) bool {
	return Is(err, ErrQueueCorrupted) || Is(err, ErrContextCorrupted)
}
