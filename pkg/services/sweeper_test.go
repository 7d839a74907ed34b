package services_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence/memory"
	"github.com/bigbit/approvalflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func (c *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.published = append(c.published, event)

	return nil
}

func (c *capturingPublisher) events() []eventbus.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]eventbus.Event(nil), c.published...)
}

func TestSweepPublishesOverdueEvents(t *testing.T) {
	publisher := &capturingPublisher{}

	sweeper, err := services.NewSweeper(memory.NewPersistence(), publisher, "*/5 * * * *", slog.Default())
	require.NoError(t, err)

	require.NoError(t, sweeper.Sweep(t.Context()))

	published := publisher.events()
	require.Len(t, published, 1, "only the task past its due date is flagged")

	overdue, ok := published[0].(events.TaskOverdue)
	require.True(t, ok)
	assert.Equal(t, "task-001", overdue.TaskID)
	assert.Equal(t, "user-001", overdue.Assignee.ID)

	// Sweeps are idempotent: a second pass reports the same task again.
	require.NoError(t, sweeper.Sweep(t.Context()))
	assert.Len(t, publisher.events(), 2)
}

func TestNewSweeperRejectsBadCron(t *testing.T) {
	_, err := services.NewSweeper(memory.NewPersistence(), &capturingPublisher{}, "not a cron", slog.Default())
	require.Error(t, err)
}

func TestSweepPromotesOverdueTaskPriority(t *testing.T) {
	p := memory.NewPersistence()

	due := time.Date(2024, 12, 1, 18, 0, 0, 0, time.UTC)
	bundle := &models.TaskBundle{
		Task: &models.Task{
			ID:          "task-overdue-medium",
			ProcessName: "采购合同审批",
			TaskName:    "部门负责人审批",
			Status:      models.TaskStatusPending,
			Priority:    models.PriorityMedium,
			Initiator:   models.UserRef{ID: "user-004", Name: "李四", Department: "采购部"},
			Assignee:    &models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
			CreatedAt:   due.AddDate(0, 0, -3),
			DueDate:     &due,
		},
		Nodes: []*models.ProcessNode{
			{ID: "start", Name: "提交申请", Type: models.NodeTypeStart, Status: models.NodeStatusCompleted},
			{ID: "deptApproval", Name: "部门负责人审批", Type: models.NodeTypeUserTask, Status: models.NodeStatusActive},
		},
	}
	require.NoError(t, p.Tasks().SaveBundle(t.Context(), bundle))

	publisher := &capturingPublisher{}
	sweeper, err := services.NewSweeper(p, publisher, "*/5 * * * *", slog.Default())
	require.NoError(t, err)

	require.NoError(t, sweeper.Sweep(t.Context()))

	// Both overdue tasks are reported; only the medium one needed promoting.
	assert.Len(t, publisher.events(), 2)

	promoted, err := p.Tasks().BundleByID(t.Context(), "task-overdue-medium")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, promoted.Task.Priority)

	fixture, err := p.Tasks().BundleByID(t.Context(), "task-001")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, fixture.Task.Priority)
}
