// Package engine provides standardized error types for approval transitions.
package engine

import (
	"errors"

	"github.com/bigbit/approvalflow/pkg/models"
)

// Validation errors: the submitted action fails its declared input rules.
// These are re-exported from models so callers can match either way.
var (
	ErrCommentTooShort    = models.ErrCommentTooShort
	ErrTargetUserRequired = models.ErrTargetUserRequired
	ErrTargetNodeRequired = models.ErrTargetNodeRequired
	ErrUnknownAction      = models.ErrUnknownAction

	// ErrUnknownTargetNode indicates the reject target is not part of the
	// task's node sequence.
	ErrUnknownTargetNode = errors.New("target node not found in process")

	// ErrTargetNotBehind indicates the reject target does not precede the
	// active node.
	ErrTargetNotBehind = errors.New("target node must precede the active node")
)

// Precondition errors: the task is not in the state the action requires.
// They are checked before any mutation.
var (
	// ErrTaskNotPending indicates an action was attempted against a task
	// that already reached a terminal state.
	ErrTaskNotPending = errors.New("task is not pending")

	// ErrNoActiveNode indicates the task has no active node to act on.
	ErrNoActiveNode = errors.New("task has no active node")

	// ErrNotInitiator indicates withdraw was attempted by someone other
	// than the task's initiator.
	ErrNotInitiator = errors.New("only the initiator may withdraw")

	// ErrActionInFlight indicates another action on the same task has not
	// finished committing; the submission is dropped, not queued.
	ErrActionInFlight = errors.New("another action is in flight for this task")
)

// IsValidationError checks whether the error is an input validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrCommentTooShort) ||
		errors.Is(err, ErrTargetUserRequired) ||
		errors.Is(err, ErrTargetNodeRequired) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrUnknownTargetNode) ||
		errors.Is(err, ErrTargetNotBehind)
}

// IsPreconditionError checks whether the error is a task-state precondition
// failure.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrTaskNotPending) ||
		errors.Is(err, ErrNoActiveNode) ||
		errors.Is(err, ErrNotInitiator) ||
		errors.Is(err, ErrActionInFlight)
}
