// Package events defines event types and structures for approval lifecycle notifications.
package events

import (
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Kafka topics.
const Topic = "approvalflow.task.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Task lifecycle events, one per engine action.
	TaskSubmittedEvent     EventType = "task.submitted"
	TaskApprovedEvent      EventType = "task.approved"
	TaskRejectedEvent      EventType = "task.rejected"
	TaskForwardedEvent     EventType = "task.forwarded"
	TaskCountersignedEvent EventType = "task.countersigned"
	TaskWithdrawnEvent     EventType = "task.withdrawn"

	// Terminal and housekeeping events.
	TaskCompletedEvent EventType = "task.completed"
	TaskOverdueEvent   EventType = "task.overdue"

	// Configuration events.
	MatrixUpdatedEvent EventType = "matrix.updated"
)

var actionEventTypes = map[models.ActionType]EventType{
	models.ActionSubmit:      TaskSubmittedEvent,
	models.ActionApprove:     TaskApprovedEvent,
	models.ActionReject:      TaskRejectedEvent,
	models.ActionForward:     TaskForwardedEvent,
	models.ActionCountersign: TaskCountersignedEvent,
	models.ActionWithdraw:    TaskWithdrawnEvent,
}

// TypeForAction maps an engine action to its lifecycle event type.
func TypeForAction(action models.ActionType) (EventType, bool) {
	eventType, ok := actionEventTypes[action]

	return eventType, ok
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TaskID    string         `json:"task_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TaskActioned is emitted once per committed approval action. Exactly one of
// these per action, published after persistence succeeds.
type TaskActioned struct {
	BaseEvent

	Action      models.ActionType `json:"action"`
	Operator    models.UserRef    `json:"operator"`
	NodeName    string            `json:"node_name"`
	Comment     string            `json:"comment,omitempty"`
	TargetUsers []string          `json:"target_users,omitempty"`
	TargetNode  string            `json:"target_node,omitempty"`
}

func (t TaskActioned) GetType() EventType {
	return t.Type
}

// TaskCompleted is emitted when a task reaches a terminal status.
type TaskCompleted struct {
	BaseEvent

	Status   models.TaskStatus `json:"status"`
	Duration time.Duration     `json:"duration"`
}

func (t TaskCompleted) GetType() EventType {
	return TaskCompletedEvent
}

// TaskOverdue is emitted by the due-date sweeper for each pending task past
// its due date. Sweeps are idempotent; consumers dedupe on task id.
type TaskOverdue struct {
	BaseEvent

	DueDate  time.Time      `json:"due_date"`
	Assignee models.UserRef `json:"assignee"`
}

func (t TaskOverdue) GetType() EventType {
	return TaskOverdueEvent
}

// MatrixUpdated is emitted when a workflow definition's permission matrix is
// saved.
type MatrixUpdated struct {
	BaseEvent

	DefinitionKey string `json:"definition_key"`
	UpdatedBy     string `json:"updated_by"`
}

func (m MatrixUpdated) GetType() EventType {
	return MatrixUpdatedEvent
}

func NewBaseEvent(eventType EventType, taskID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TaskID:    taskID,
		Metadata:  make(map[string]any),
	}
}
