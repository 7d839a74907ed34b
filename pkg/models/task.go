// Package models defines the core domain models for the approval workflow engine
package models

import "time"

// TaskStatus represents the lifecycle state of an approval task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // Awaiting operator action
	TaskStatusApproved  TaskStatus = "approved"  // Approved on the final node
	TaskStatusRejected  TaskStatus = "rejected"  // Rejected with no further routing
	TaskStatusWithdrawn TaskStatus = "withdrawn" // Withdrawn by the initiator
)

// IsTerminal reports whether no further transitions are allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusApproved || s == TaskStatusRejected || s == TaskStatusWithdrawn
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task represents one actionable unit of work within a running process instance.
// The node sequence and the approval record timeline are owned by the task and
// mutated only through the engine's transition table.
type Task struct {
	ID                  string     `json:"id"                    validate:"required"`
	ProcessInstanceID   string     `json:"process_instance_id"  validate:"required"`
	ProcessDefinitionID string     `json:"process_definition_id"`
	ProcessName         string     `json:"process_name"          validate:"required"`
	TaskName            string     `json:"task_name"`
	TaskDefinitionKey   string     `json:"task_definition_key"` // Key of the currently active node
	FormKey             string     `json:"form_key,omitempty"`  // Workflow definition the form schema belongs to
	Status              TaskStatus `json:"status"`
	Priority            Priority   `json:"priority,omitempty"`
	Initiator           UserRef    `json:"initiator"`
	Assignee            *UserRef   `json:"assignee,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	DueDate             *time.Time `json:"due_date,omitempty"`
}

// IsOverdue reports whether the task is still pending past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status == TaskStatusPending && t.DueDate != nil && now.After(*t.DueDate)
}
