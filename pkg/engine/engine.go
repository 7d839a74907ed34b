// Package engine implements the approval action state machine. All task
// mutation flows through Apply: it validates the submitted action against
// the current task state, then commits the node transition, the task status
// change and exactly one timeline record as a whole. Validation failures
// leave the bundle untouched.
package engine

import (
	"fmt"
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/timeline"
	"github.com/google/uuid"
)

// Engine applies approval actions to task bundles. The acting user arrives
// as an explicit session argument on every call; the engine holds no
// ambient user state.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures the engine.
type Option func(*Engine)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces the record ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// New creates an engine with the real clock and UUID record IDs.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply validates params against the bundle's current state and, on success,
// commits the transition in place and returns the appended timeline record.
// On any error the bundle is unchanged.
func (e *Engine) Apply(session models.Session, bundle *models.TaskBundle, params models.ApprovalParams) (*models.ApprovalRecord, error) {
	params = params.WithDefaults()

	if err := params.Validate(); err != nil {
		return nil, err
	}

	task := bundle.Task

	if task.Status != models.TaskStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrTaskNotPending, task.Status)
	}

	activeIdx := models.ActiveNodeIndex(bundle.Nodes)
	if activeIdx < 0 {
		return nil, ErrNoActiveNode
	}

	active := bundle.Nodes[activeIdx]

	// Action-specific preconditions, still before any mutation.
	switch params.Action {
	case models.ActionReject:
		targetIdx := nodeIndex(bundle.Nodes, params.RejectToNode)
		if targetIdx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTargetNode, params.RejectToNode)
		}

		if targetIdx >= activeIdx {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotBehind, params.RejectToNode)
		}
	case models.ActionWithdraw:
		if session.User.ID != task.Initiator.ID {
			return nil, ErrNotInitiator
		}
	}

	now := e.now()

	switch params.Action {
	case models.ActionApprove:
		e.applyApprove(bundle, activeIdx, now)
	case models.ActionReject:
		e.applyReject(bundle, activeIdx, nodeIndex(bundle.Nodes, params.RejectToNode))
	case models.ActionForward:
		e.applyForward(bundle, params.TargetUsers)
	case models.ActionCountersign:
		e.applyCountersign(bundle, activeIdx, params.TargetUsers)
	case models.ActionWithdraw:
		e.applyWithdraw(bundle, activeIdx)
	}

	record := &models.ApprovalRecord{
		ID:              e.newID(),
		Operator:        session.Operator(),
		Action:          params.Action,
		Timestamp:       now,
		NodeName:        active.Name,
		Comment:         params.Comment,
		DurationMinutes: durationOnNode(bundle, active.Name, task.CreatedAt, now),
	}

	bundle.Records = timeline.Append(bundle.Records, record)

	return record, nil
}

// applyApprove completes the active node and activates the next user node.
// When no user node remains the task is approved and the trailing nodes are
// closed out, leaving zero active nodes.
func (e *Engine) applyApprove(bundle *models.TaskBundle, activeIdx int, now time.Time) {
	nodes := bundle.Nodes
	active := nodes[activeIdx]

	active.Status = models.NodeStatusCompleted
	active.CompletedAt = &now

	next := nextUserNode(nodes, activeIdx)
	if next < 0 {
		bundle.Task.Status = models.TaskStatusApproved

		for _, n := range nodes[activeIdx+1:] {
			if n.Status == models.NodeStatusPending {
				n.Status = models.NodeStatusCompleted
				completed := now
				n.CompletedAt = &completed
			}
		}

		return
	}

	nodes[next].Status = models.NodeStatusActive
	bundle.Task.TaskDefinitionKey = nodes[next].ID
	bundle.Task.TaskName = nodes[next].Name
}

// applyReject reverts the active node onto the target: the target becomes
// active again and every node between it and the current one goes back to
// pending. The timeline is append-only; prior records are retained.
func (e *Engine) applyReject(bundle *models.TaskBundle, activeIdx, targetIdx int) {
	nodes := bundle.Nodes

	for _, n := range nodes[targetIdx+1 : activeIdx+1] {
		n.Status = models.NodeStatusPending
		n.CompletedAt = nil
	}

	target := nodes[targetIdx]
	target.Status = models.NodeStatusActive
	target.CompletedAt = nil

	bundle.Task.TaskDefinitionKey = target.ID
	bundle.Task.TaskName = target.Name
}

// applyForward replaces the task assignee; the node stays where it is.
func (e *Engine) applyForward(bundle *models.TaskBundle, targetUsers []string) {
	assignee := resolveUser(bundle.UserOptions, targetUsers[0])
	bundle.Task.Assignee = &assignee

	activeIdx := models.ActiveNodeIndex(bundle.Nodes)
	if activeIdx >= 0 {
		bundle.Nodes[activeIdx].Assignee = assignee.Name
	}
}

// applyCountersign inserts one pending approver node per target user
// directly after the active node.
func (e *Engine) applyCountersign(bundle *models.TaskBundle, activeIdx int, targetUsers []string) {
	inserted := make([]*models.ProcessNode, 0, len(targetUsers))

	for _, userID := range targetUsers {
		user := resolveUser(bundle.UserOptions, userID)
		inserted = append(inserted, &models.ProcessNode{
			ID:       "countersign-" + e.newID(),
			Name:     "加签审批 " + user.Name,
			Type:     models.NodeTypeUserTask,
			Status:   models.NodeStatusPending,
			Assignee: user.Name,
		})
	}

	nodes := bundle.Nodes
	tail := append([]*models.ProcessNode(nil), nodes[activeIdx+1:]...)
	bundle.Nodes = append(append(nodes[:activeIdx+1], inserted...), tail...)
}

// applyWithdraw terminates the task on behalf of its initiator. The active
// node was never completed, so it is marked skipped.
func (e *Engine) applyWithdraw(bundle *models.TaskBundle, activeIdx int) {
	bundle.Nodes[activeIdx].Status = models.NodeStatusSkipped
	bundle.Task.Status = models.TaskStatusWithdrawn
}

func nodeIndex(nodes []*models.ProcessNode, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}

	return -1
}

// nextUserNode returns the index of the next user task after from, or -1 if
// only non-interactive nodes remain.
func nextUserNode(nodes []*models.ProcessNode, from int) int {
	for i := from + 1; i < len(nodes); i++ {
		if nodes[i].Type == models.NodeTypeUserTask {
			return i
		}
	}

	return -1
}

// resolveUser looks a target user up in the bundle's selectable options,
// falling back to an ID-only reference for users outside the option list.
func resolveUser(options []models.UserOption, userID string) models.UserRef {
	for _, opt := range options {
		if opt.ID == userID {
			return models.UserRef{ID: opt.ID, Name: opt.Name, Department: opt.Department}
		}
	}

	return models.UserRef{ID: userID, Name: userID}
}

// durationOnNode reports whole minutes since the most recent record on the
// same node, falling back to the task creation time. The stored value is
// what display layers show; they never recompute it.
func durationOnNode(bundle *models.TaskBundle, nodeName string, createdAt, now time.Time) int {
	since := createdAt

	for i := len(bundle.Records) - 1; i >= 0; i-- {
		if bundle.Records[i].NodeName == nodeName {
			since = bundle.Records[i].Timestamp

			break
		}
	}

	minutes := int(now.Sub(since) / time.Minute)
	if minutes < 0 {
		return 0
	}

	return minutes
}
