package models

import "time"

// ActionType represents an operation recorded on a task's timeline.
type ActionType string

const (
	ActionSubmit      ActionType = "submit"
	ActionApprove     ActionType = "approve"
	ActionReject      ActionType = "reject"
	ActionForward     ActionType = "forward"
	ActionCountersign ActionType = "countersign"
	ActionWithdraw    ActionType = "withdraw"
	ActionPending     ActionType = "pending"
)

var validActions = map[ActionType]bool{
	ActionSubmit:      true,
	ActionApprove:     true,
	ActionReject:      true,
	ActionForward:     true,
	ActionCountersign: true,
	ActionWithdraw:    true,
	ActionPending:     true,
}

// IsValid reports whether the action is a known timeline action.
func (a ActionType) IsValid() bool {
	return validActions[a]
}

// ApprovalRecord is one immutable timeline entry describing an action taken
// on a task. Records are append-only: never mutated or deleted once appended,
// and ordering is chronological as stored.
type ApprovalRecord struct {
	ID        string     `json:"id"`
	Operator  UserRef    `json:"operator"`
	Action    ActionType `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
	NodeName  string     `json:"node_name"` // Name of the node active at the time of the action
	Comment   string     `json:"comment,omitempty"`
	// Duration in minutes, supplied by the caller (typically time since the
	// previous record on the same node). Display never recomputes it.
	DurationMinutes int  `json:"duration_minutes,omitempty"`
	IsCurrent       bool `json:"is_current,omitempty"`
}
