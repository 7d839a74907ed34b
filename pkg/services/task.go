package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigbit/approvalflow/pkg/diagram"
	"github.com/bigbit/approvalflow/pkg/engine"
	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/notify"
	"github.com/bigbit/approvalflow/pkg/permissions"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/timeline"
)

// Task is the application service for approval tasks: loading the full
// handling view, committing actions through the engine, and listing the
// per-user queues.
type Task struct {
	persistence persistence.Persistence
	engine      *engine.Engine
	gate        *engine.Gate
	resolver    *permissions.Resolver
	publisher   eventbus.EventPublisher
	notifier    notify.Notifier
	logger      *slog.Logger
}

// NewTask creates the task service. Publisher and notifier are optional;
// pass nil to run without eventing or notifications.
func NewTask(
	p persistence.Persistence,
	eng *engine.Engine,
	publisher eventbus.EventPublisher,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Task {
	return &Task{
		persistence: p,
		engine:      eng,
		gate:        engine.NewGate(),
		resolver:    permissions.NewResolver(p.Definitions()),
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger.With("module", "task_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (t *Task) HealthCheck(ctx context.Context) (string, bool) {
	if t.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := t.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// TaskView is everything one task-handling screen needs: the bundle, the
// viewer's role and field permissions, the rendered timeline and diagram,
// and the actions the viewer may take.
type TaskView struct {
	Bundle          *models.TaskBundle               `json:"bundle"`
	Role            models.Role                      `json:"role"`
	Permissions     []permissions.ResolvedPermission `json:"permissions,omitempty"`
	Timeline        []timeline.Entry                 `json:"timeline"`
	Diagram         diagram.Strip                    `json:"diagram"`
	RejectableNodes []models.NodeOption              `json:"rejectable_nodes,omitempty"`
	Actions         []models.ActionType              `json:"actions"`
}

// LoadBundle loads the full handling view of one task for the session user.
// Field permissions are resolved for the viewer's role against the task's
// workflow definition; tasks without a definition render without them.
func (t *Task) LoadBundle(ctx context.Context, session models.Session, taskID string) (*TaskView, error) {
	bundle, err := t.persistence.Tasks().BundleByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task bundle: %w", err)
	}

	role := roleFor(session, bundle.Task)

	var resolved []permissions.ResolvedPermission

	if key := bundle.Task.FormKey; key != "" {
		resolved, err = t.resolver.Resolve(ctx, key, role)
		if err != nil && !persistence.IsDefinitionNotFound(err) {
			return nil, fmt.Errorf("failed to resolve permissions: %w", err)
		}
	}

	return &TaskView{
		Bundle:          bundle,
		Role:            role,
		Permissions:     resolved,
		Timeline:        t.renderTimeline(bundle),
		Diagram:         diagram.RenderStrip(bundle.Nodes, ""),
		RejectableNodes: bundle.RejectableNodes(),
		Actions:         availableActions(role, bundle),
	}, nil
}

// renderTimeline renders the stored records plus, for a pending task, one
// synthesized "awaiting" entry for the active node. The synthetic entry is
// display-only; the stored log stays append-only.
func (t *Task) renderTimeline(bundle *models.TaskBundle) []timeline.Entry {
	records := bundle.Records

	if bundle.Task.Status == models.TaskStatusPending {
		if idx := models.ActiveNodeIndex(bundle.Nodes); idx >= 0 {
			active := bundle.Nodes[idx]
			operator := models.UserRef{Name: active.Assignee}

			if bundle.Task.Assignee != nil {
				operator = *bundle.Task.Assignee
			}

			records = append(append([]*models.ApprovalRecord(nil), records...), &models.ApprovalRecord{
				ID:        "pending-" + bundle.Task.ID,
				Operator:  operator,
				Action:    models.ActionPending,
				NodeName:  active.Name,
				IsCurrent: true,
			})
		}
	}

	return timeline.Render(records, 0)
}

// roleFor derives the viewer's workflow role from their relation to the
// task: its initiator, its current assignee, or a bystanding reviewer.
func roleFor(session models.Session, task *models.Task) models.Role {
	if session.User.ID == task.Initiator.ID {
		return models.RoleInitiator
	}

	if task.Assignee != nil && task.Assignee.ID == session.User.ID {
		return models.RoleApprover
	}

	return models.RoleReviewer
}

// availableActions lists what the viewer may do with the task right now.
// Reviewers observe only.
func availableActions(role models.Role, bundle *models.TaskBundle) []models.ActionType {
	if bundle.Task.Status != models.TaskStatusPending {
		return nil
	}

	switch role {
	case models.RoleInitiator:
		return []models.ActionType{models.ActionWithdraw}
	case models.RoleApprover:
		actions := []models.ActionType{models.ActionApprove}
		if len(bundle.RejectableNodes()) > 0 {
			actions = append(actions, models.ActionReject)
		}

		return append(actions, models.ActionForward, models.ActionCountersign)
	default:
		return nil
	}
}

// SubmitResult reports one committed action.
type SubmitResult struct {
	Task   *models.Task           `json:"task"`
	Record *models.ApprovalRecord `json:"record"`
}

// Submit runs one approval action against a task. Actions on the same task
// are serialized through the gate: a submission arriving while another is
// committing fails with ErrActionInFlight instead of queueing. The bundle is
// loaded, transitioned, and saved as a whole; the lifecycle event and
// notifications go out only after the save succeeds, and their failures are
// logged, never rolled back into the caller.
func (t *Task) Submit(ctx context.Context, session models.Session, taskID string, params models.ApprovalParams) (*SubmitResult, error) {
	if !t.gate.TryAcquire(taskID) {
		return nil, engine.ErrActionInFlight
	}
	defer t.gate.Release(taskID)

	bundle, err := t.persistence.Tasks().BundleByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task bundle: %w", err)
	}

	record, err := t.engine.Apply(session, bundle, params)
	if err != nil {
		return nil, err
	}

	if err := t.persistence.Tasks().SaveBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("failed to save task bundle: %w", err)
	}

	t.logger.InfoContext(ctx, "Action committed",
		"task_id", taskID,
		"action", record.Action,
		"operator", record.Operator.ID,
		"status", bundle.Task.Status,
	)

	t.publishAction(ctx, bundle, record, params)
	t.notifyAction(ctx, session, bundle, record, params)

	return &SubmitResult{Task: bundle.Task, Record: record}, nil
}

func (t *Task) publishAction(ctx context.Context, bundle *models.TaskBundle, record *models.ApprovalRecord, params models.ApprovalParams) {
	if t.publisher == nil {
		return
	}

	taskID := bundle.Task.ID

	eventType, ok := events.TypeForAction(record.Action)
	if ok {
		actioned := events.TaskActioned{
			BaseEvent:   events.NewBaseEvent(eventType, taskID),
			Action:      record.Action,
			Operator:    record.Operator,
			NodeName:    record.NodeName,
			Comment:     record.Comment,
			TargetUsers: params.TargetUsers,
			TargetNode:  params.RejectToNode,
		}
		if err := t.publisher.Publish(ctx, taskID, actioned); err != nil {
			t.logger.ErrorContext(ctx, "Failed to publish action event", "task_id", taskID, "error", err)
		}
	}

	if bundle.Task.Status.IsTerminal() {
		completed := events.TaskCompleted{
			BaseEvent: events.NewBaseEvent(events.TaskCompletedEvent, taskID),
			Status:    bundle.Task.Status,
			Duration:  record.Timestamp.Sub(bundle.Task.CreatedAt),
		}
		if err := t.publisher.Publish(ctx, taskID, completed); err != nil {
			t.logger.ErrorContext(ctx, "Failed to publish completion event", "task_id", taskID, "error", err)
		}
	}
}

// notifyAction tells the people the action concerns: the initiator, unless
// they acted themselves, and the new assignee on forward.
func (t *Task) notifyAction(ctx context.Context, session models.Session, bundle *models.TaskBundle, record *models.ApprovalRecord, params models.ApprovalParams) {
	if t.notifier == nil {
		return
	}

	task := bundle.Task
	title := timeline.DisplayFor(record.Action).Label

	recipients := make([]string, 0, 2)
	if task.Initiator.ID != session.User.ID {
		recipients = append(recipients, task.Initiator.ID)
	}

	if record.Action == models.ActionForward && task.Assignee != nil && task.Assignee.ID != session.User.ID {
		recipients = append(recipients, task.Assignee.ID)
	}

	if record.Action == models.ActionCountersign {
		for _, target := range params.TargetUsers {
			if target != session.User.ID {
				recipients = append(recipients, target)
			}
		}
	}

	for _, recipient := range recipients {
		notification := notify.Notification{
			ID:        record.ID + "-" + recipient,
			Recipient: recipient,
			TaskID:    task.ID,
			Action:    record.Action,
			Title:     fmt.Sprintf("%s: %s", title, task.ProcessName),
			Body:      record.Comment,
			CreatedAt: record.Timestamp,
		}
		if err := t.notifier.Notify(ctx, notification); err != nil {
			t.logger.ErrorContext(ctx, "Failed to queue notification", "recipient", recipient, "error", err)
		}
	}
}

// ListTasksRequest contains options for listing one of the session user's
// task queues.
type ListTasksRequest struct {
	Queue    persistence.TaskQueue
	Keyword  string
	Priority models.Priority
	Page     int `validate:"min=0"`
	PageSize int `validate:"min=0,max=100"`
}

// ListTasks retrieves one page of the user's selected queue.
func (t *Task) ListTasks(ctx context.Context, session models.Session, req ListTasksRequest) (*persistence.TaskListResult, error) {
	if err := t.validateListTasksRequest(&req, session); err != nil {
		return nil, err
	}

	result, err := t.persistence.Tasks().ListTasks(ctx, persistence.ListTasksOptions{
		Queue:    req.Queue,
		UserID:   session.User.ID,
		Keyword:  req.Keyword,
		Priority: req.Priority,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return result, nil
}

func (t *Task) validateListTasksRequest(req *ListTasksRequest, session models.Session) error {
	if session.User.ID == "" {
		return ErrEmptyUserID
	}

	switch req.Queue {
	case persistence.QueueTodo, persistence.QueueDone, persistence.QueueInitiated:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidQueue, req.Queue)
	}

	if req.Priority != "" {
		switch req.Priority {
		case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
		}
	}

	if req.Page <= 0 {
		req.Page = 1
	}

	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 10
	}

	return nil
}

// Stats summarizes the user's queues for the workbench header.
type Stats struct {
	TodoCount      int `json:"todo_count"`
	DoneCount      int `json:"done_count"`
	InitiatedCount int `json:"initiated_count"`
	OverdueCount   int `json:"overdue_count"`
}

// Stats counts the user's queues. Overdue counts pending assigned tasks past
// their due date.
func (t *Task) Stats(ctx context.Context, session models.Session) (*Stats, error) {
	if session.User.ID == "" {
		return nil, ErrEmptyUserID
	}

	stats := &Stats{}
	now := time.Now().UTC()

	todo, err := t.persistence.Tasks().ListTasks(ctx, persistence.ListTasksOptions{
		Queue:    persistence.QueueTodo,
		UserID:   session.User.ID,
		PageSize: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count todo tasks: %w", err)
	}

	stats.TodoCount = todo.Total

	for _, task := range todo.Tasks {
		if task.IsOverdue(now) {
			stats.OverdueCount++
		}
	}

	done, err := t.persistence.Tasks().ListTasks(ctx, persistence.ListTasksOptions{
		Queue:    persistence.QueueDone,
		UserID:   session.User.ID,
		PageSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count done tasks: %w", err)
	}

	stats.DoneCount = done.Total

	initiated, err := t.persistence.Tasks().ListTasks(ctx, persistence.ListTasksOptions{
		Queue:    persistence.QueueInitiated,
		UserID:   session.User.ID,
		PageSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count initiated tasks: %w", err)
	}

	stats.InitiatedCount = initiated.Total

	return stats, nil
}
