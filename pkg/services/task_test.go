package services_test

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/bigbit/approvalflow/pkg/engine"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/notify"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/persistence/memory"
	"github.com/bigbit/approvalflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminSession     = models.Session{User: models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"}}
	initiatorSession = models.Session{User: models.UserRef{ID: "user-003", Name: "王五", Department: "研发部"}}
)

func newTaskService(t *testing.T) (*services.Task, *memory.Persistence, *notify.MemoryNotifier) {
	t.Helper()

	p := memory.NewPersistence()
	notifier := notify.NewMemoryNotifier()
	service := services.NewTask(p, engine.New(), nil, notifier, slog.Default())

	return service, p, notifier
}

func TestLoadBundleResolvesViewerRoleAndPermissions(t *testing.T) {
	service, _, _ := newTaskService(t)

	view, err := service.LoadBundle(t.Context(), adminSession, "task-001")
	require.NoError(t, err)

	assert.Equal(t, models.RoleApprover, view.Role, "current assignee handles the task as approver")
	require.Len(t, view.Permissions, 5)
	assert.Equal(t, "reviewOpinion", view.Permissions[3].FieldKey)
	assert.Equal(t, models.PermissionReadonly, view.Permissions[3].Level)
	assert.Equal(t, models.PermissionEditable, view.Permissions[4].Level)

	assert.Contains(t, view.Actions, models.ActionApprove)
	assert.Contains(t, view.Actions, models.ActionReject)
	assert.NotContains(t, view.Actions, models.ActionWithdraw)

	require.Len(t, view.RejectableNodes, 1)
	assert.Equal(t, "start", view.RejectableNodes[0].ID)
}

func TestLoadBundleInitiatorSeesWithdrawOnly(t *testing.T) {
	service, _, _ := newTaskService(t)

	view, err := service.LoadBundle(t.Context(), initiatorSession, "task-001")
	require.NoError(t, err)

	assert.Equal(t, models.RoleInitiator, view.Role)
	assert.Equal(t, []models.ActionType{models.ActionWithdraw}, view.Actions)
}

func TestLoadBundleSynthesizesPendingTimelineEntry(t *testing.T) {
	service, p, _ := newTaskService(t)

	view, err := service.LoadBundle(t.Context(), adminSession, "task-001")
	require.NoError(t, err)

	require.Len(t, view.Timeline, 2, "one stored record plus the synthesized awaiting entry")

	pending := view.Timeline[1]
	assert.Equal(t, models.ActionPending, pending.Action)
	assert.True(t, pending.IsCurrent)
	assert.Equal(t, "技术负责人审核", pending.NodeName)
	assert.Equal(t, "管理员", pending.Operator.Name)

	// The synthetic entry is display-only; the stored log is untouched.
	bundle, err := p.Tasks().BundleByID(t.Context(), "task-001")
	require.NoError(t, err)
	require.Len(t, bundle.Records, 1)
}

func TestLoadBundleTerminalTaskHasNoPendingEntry(t *testing.T) {
	service, _, _ := newTaskService(t)

	view, err := service.LoadBundle(t.Context(), adminSession, "task-done-001")
	require.NoError(t, err)

	require.Len(t, view.Timeline, 2)

	for _, entry := range view.Timeline {
		assert.NotEqual(t, models.ActionPending, entry.Action)
	}

	assert.Empty(t, view.Actions, "terminal tasks offer no actions")
}

func TestLoadBundleUnknownTask(t *testing.T) {
	service, _, _ := newTaskService(t)

	_, err := service.LoadBundle(t.Context(), adminSession, "task-missing")
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
}

func TestSubmitApproveAdvancesAndNotifiesInitiator(t *testing.T) {
	service, p, notifier := newTaskService(t)

	result, err := service.Submit(t.Context(), adminSession, "task-001", models.ApprovalParams{
		Action:  models.ActionApprove,
		Comment: "同意，材料齐全",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusPending, result.Task.Status)
	assert.Equal(t, "chiefApproval", result.Task.TaskDefinitionKey)
	assert.Equal(t, models.ActionApprove, result.Record.Action)

	// Committed state is visible on reload.
	bundle, err := p.Tasks().BundleByID(t.Context(), "task-001")
	require.NoError(t, err)
	require.Len(t, bundle.Records, 2)
	assert.Equal(t, models.NodeStatusActive, bundle.Nodes[2].Status)

	sent := notifier.Sent("user-003")
	require.Len(t, sent, 1, "initiator is told about the approval")
	assert.Equal(t, "task-001", sent[0].TaskID)
}

func TestSubmitValidationFailureLeavesStateUntouched(t *testing.T) {
	service, p, _ := newTaskService(t)

	_, err := service.Submit(t.Context(), adminSession, "task-001", models.ApprovalParams{
		Action:  models.ActionApprove,
		Comment: "短",
	})
	require.ErrorIs(t, err, engine.ErrCommentTooShort)
	assert.True(t, services.IsValidationError(err))

	bundle, err := p.Tasks().BundleByID(t.Context(), "task-001")
	require.NoError(t, err)
	require.Len(t, bundle.Records, 1)
	assert.Equal(t, models.NodeStatusActive, bundle.Nodes[1].Status)
}

func TestSubmitOnTerminalTaskIsConflict(t *testing.T) {
	service, _, _ := newTaskService(t)

	_, err := service.Submit(t.Context(), adminSession, "task-done-001", models.ApprovalParams{
		Action:  models.ActionApprove,
		Comment: "再次通过",
	})
	require.ErrorIs(t, err, engine.ErrTaskNotPending)
	assert.True(t, services.IsConflictError(err))
}

func TestSubmitSerializedPerTask(t *testing.T) {
	// Two near-simultaneous submissions against the same task: exactly one
	// commits, the other is either rejected at the gate or refused by the
	// precondition check against the committed state. Only one record is
	// ever appended.
	service, p, _ := newTaskService(t)

	var waitGroup sync.WaitGroup

	errs := make([]error, 2)

	for i := range 2 {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			_, errs[i] = service.Submit(t.Context(), adminSession, "task-002", models.ApprovalParams{
				Action:  models.ActionApprove,
				Comment: "部门同意",
			})
		}()
	}

	waitGroup.Wait()

	committed := 0

	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			assert.True(t, services.IsConflictError(err), "loser must fail with a conflict, got: %v", err)
		}
	}

	require.Equal(t, 1, committed, "exactly one submission commits")

	bundle, err := p.Tasks().BundleByID(t.Context(), "task-002")
	require.NoError(t, err)
	assert.Len(t, bundle.Records, 2, "exactly one record appended")
	assert.Equal(t, models.TaskStatusApproved, bundle.Task.Status)
}

func TestListTasksQueues(t *testing.T) {
	service, _, _ := newTaskService(t)

	todo, err := service.ListTasks(t.Context(), adminSession, services.ListTasksRequest{Queue: persistence.QueueTodo})
	require.NoError(t, err)
	assert.Equal(t, 2, todo.Total)

	done, err := service.ListTasks(t.Context(), adminSession, services.ListTasksRequest{Queue: persistence.QueueDone})
	require.NoError(t, err)
	assert.Equal(t, 1, done.Total)

	initiated, err := service.ListTasks(t.Context(), adminSession, services.ListTasksRequest{Queue: persistence.QueueInitiated})
	require.NoError(t, err)
	assert.Equal(t, 1, initiated.Total)
}

func TestListTasksRejectsBadRequests(t *testing.T) {
	service, _, _ := newTaskService(t)

	_, err := service.ListTasks(t.Context(), adminSession, services.ListTasksRequest{Queue: "archive"})
	require.ErrorIs(t, err, services.ErrInvalidQueue)

	_, err = service.ListTasks(t.Context(), adminSession, services.ListTasksRequest{
		Queue:    persistence.QueueTodo,
		Priority: "urgent",
	})
	require.ErrorIs(t, err, services.ErrInvalidPriority)

	_, err = service.ListTasks(t.Context(), models.Session{}, services.ListTasksRequest{Queue: persistence.QueueTodo})
	require.ErrorIs(t, err, services.ErrEmptyUserID)
}

func TestStatsCountsQueuesAndOverdue(t *testing.T) {
	service, _, _ := newTaskService(t)

	stats, err := service.Stats(t.Context(), adminSession)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TodoCount)
	assert.Equal(t, 1, stats.DoneCount)
	assert.Equal(t, 1, stats.InitiatedCount)
	assert.Equal(t, 1, stats.OverdueCount, "task-001's due date is in the past")
}

func TestSubmitCountersignNotifiesTargets(t *testing.T) {
	service, p, notifier := newTaskService(t)

	_, err := service.Submit(t.Context(), adminSession, "task-001", models.ApprovalParams{
		Action:      models.ActionCountersign,
		Comment:     "请李工一并审批",
		TargetUsers: []string{"user-002"},
	})
	require.NoError(t, err)

	bundle, err := p.Tasks().BundleByID(t.Context(), "task-001")
	require.NoError(t, err)
	require.Len(t, bundle.Nodes, 5, "one approver node inserted")
	assert.Equal(t, "李工", bundle.Nodes[2].Assignee)

	sent := notifier.Sent("user-002")
	require.Len(t, sent, 1)
	assert.Equal(t, models.ActionCountersign, sent[0].Action)

	initiator := notifier.Sent("user-003")
	require.Len(t, initiator, 1, "initiator is told as well")
}
