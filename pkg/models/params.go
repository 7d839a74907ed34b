package models

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultWithdrawComment is recorded when the initiator withdraws without
// providing a comment.
const DefaultWithdrawComment = "申请人撤回"

// MinCommentLength is the minimum comment length for approve/reject actions.
const MinCommentLength = 2

// Parameter validation errors.
var (
	ErrUnknownAction      = errors.New("unknown approval action")
	ErrCommentTooShort    = errors.New("comment must be at least 2 characters")
	ErrTargetUserRequired = errors.New("at least one target user is required")
	ErrTargetNodeRequired = errors.New("target node is required")
)

// ApprovalParams is the operator-submitted input for one approval action.
type ApprovalParams struct {
	Action ActionType `json:"action"  validate:"required"`
	// Comment is required with a minimum length for approve/reject.
	Comment string `json:"comment,omitempty"`
	// TargetUsers are the forward/countersign targets.
	TargetUsers []string `json:"target_users,omitempty"`
	// RejectToNode is the node the task reverts to on reject.
	RejectToNode string `json:"reject_to_node,omitempty"`
}

// Validate checks the per-action required inputs. It runs before any state
// mutation so a failing submission leaves the task untouched.
func (p ApprovalParams) Validate() error {
	switch p.Action {
	case ActionApprove:
		return p.validateComment()
	case ActionReject:
		if err := p.validateComment(); err != nil {
			return err
		}

		if p.RejectToNode == "" {
			return ErrTargetNodeRequired
		}

		return nil
	case ActionForward, ActionCountersign:
		if len(p.TargetUsers) == 0 {
			return ErrTargetUserRequired
		}

		return nil
	case ActionWithdraw:
		// No required input; the comment defaults at record time.
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, p.Action)
	}
}

func (p ApprovalParams) validateComment() error {
	if utf8.RuneCountInString(p.Comment) < MinCommentLength {
		return ErrCommentTooShort
	}

	return nil
}

// WithDefaults returns a copy with action defaults applied (currently the
// withdraw comment).
func (p ApprovalParams) WithDefaults() ApprovalParams {
	if p.Action == ActionWithdraw && p.Comment == "" {
		p.Comment = DefaultWithdrawComment
	}

	return p
}
