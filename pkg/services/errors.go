// Package services provides the application services over the approval
// engine, persistence, and messaging layers, plus the standardized error
// taxonomy the web layer maps to HTTP statuses.
package services

import (
	"errors"
	"fmt"

	"github.com/bigbit/approvalflow/pkg/engine"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// Request-level errors (400 Bad Request).
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidQueue    = errors.New("invalid task queue")
	ErrInvalidPriority = errors.New("invalid priority filter")
	ErrEmptyUserID     = errors.New("user ID cannot be empty")

	// Matrix validation errors (400 Bad Request).
	ErrDefinitionKeyRequired  = errors.New("definition key is required")
	ErrDefinitionNameRequired = errors.New("definition name is required")
	ErrFieldsRequired         = errors.New("definition must declare at least one field")
	ErrDuplicateFieldKey      = errors.New("duplicate field key in definition")
	ErrInvalidPermissionLevel = errors.New("invalid permission level")
)

// Not-found errors (404).
var (
	ErrTaskNotFound       = persistence.ErrTaskNotFound
	ErrDefinitionNotFound = persistence.ErrDefinitionNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return engine.IsValidationError(err) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidQueue) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrEmptyUserID) ||
		errors.Is(err, ErrDefinitionKeyRequired) ||
		errors.Is(err, ErrDefinitionNameRequired) ||
		errors.Is(err, ErrFieldsRequired) ||
		errors.Is(err, ErrDuplicateFieldKey) ||
		errors.Is(err, ErrInvalidPermissionLevel)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsTaskNotFound(err) || persistence.IsDefinitionNotFound(err)
}

// IsConflictError checks if an error is a task-state conflict that should
// return HTTP 409. These are checked against the live state; the client
// reloads and may retry with different input.
func IsConflictError(err error) bool {
	return engine.IsPreconditionError(err)
}

// IsTransientError checks if an error is a retryable storage or transport
// failure that should return HTTP 503.
func IsTransientError(err error) bool {
	return persistence.IsTransient(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
