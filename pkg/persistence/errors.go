// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTaskNotFound indicates a task was not found by the given identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDefinitionNotFound indicates no workflow definition exists for the given key.
	ErrDefinitionNotFound = errors.New("workflow definition not found")

	// ErrTransient indicates a simulated or real transport failure; the
	// operation may be retried without any state having changed.
	ErrTransient = errors.New("transient storage failure")
)

// TaskError wraps task-related errors with additional context.
type TaskError struct {
	Op     string // Operation being performed (e.g., "BundleByID", "SaveBundle")
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s operation failed for task %s: %v", e.Op, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTaskError creates a new task error with context.
func NewTaskError(op, taskID string, err error) *TaskError {
	return &TaskError{Op: op, TaskID: taskID, Err: err}
}

// DefinitionError wraps definition-related errors with additional context.
type DefinitionError struct {
	Op  string
	Key string
	Err error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s operation failed for definition %s: %v", e.Op, e.Key, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

func (e *DefinitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDefinitionError creates a new definition error with context.
func NewDefinitionError(op, key string, err error) *DefinitionError {
	return &DefinitionError{Op: op, Key: key, Err: err}
}

// IsTaskNotFound checks if an error indicates a task was not found.
func IsTaskNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

// IsDefinitionNotFound checks if an error indicates a definition was not found.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsTransient checks if an error indicates a retryable transport failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
