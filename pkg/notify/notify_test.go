package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNotifierQueuesPerRecipient(t *testing.T) {
	notifier := notify.NewMemoryNotifier()

	first := notify.Notification{
		ID:        "n-001",
		Recipient: "user-001",
		TaskID:    "task-001",
		Action:    models.ActionApprove,
		Title:     "审批通过",
		CreatedAt: time.Now().UTC(),
	}
	second := notify.Notification{
		ID:        "n-002",
		Recipient: "user-001",
		TaskID:    "task-002",
		Action:    models.ActionReject,
		Title:     "审批驳回",
	}
	other := notify.Notification{
		ID:        "n-003",
		Recipient: "user-002",
		TaskID:    "task-001",
		Action:    models.ActionForward,
		Title:     "转办",
	}

	require.NoError(t, notifier.Notify(t.Context(), first))
	require.NoError(t, notifier.Notify(t.Context(), second))
	require.NoError(t, notifier.Notify(t.Context(), other))

	sent := notifier.Sent("user-001")
	require.Len(t, sent, 2)
	assert.Equal(t, "n-001", sent[0].ID)
	assert.Equal(t, "n-002", sent[1].ID)

	assert.Len(t, notifier.Sent("user-002"), 1)
	assert.Empty(t, notifier.Sent("user-003"))
}

func TestMemoryNotifierHonorsCancelledContext(t *testing.T) {
	notifier := notify.NewMemoryNotifier()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := notifier.Notify(ctx, notify.Notification{ID: "n-001", Recipient: "user-001"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, notifier.Sent("user-001"))
}
