package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/bigbit/approvalflow/pkg/channels/gochannel"
	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestPublishDeliversToRegisteredHandler(t *testing.T) {
	bus := newTestBus(t)
	received := make(chan *events.TaskActioned, 1)

	err := bus.Handle(events.TaskApprovedEvent, func(_ context.Context, event any) error {
		actioned, ok := event.(*events.TaskActioned)
		require.True(t, ok)

		received <- actioned

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	published := events.TaskActioned{
		BaseEvent: events.NewBaseEvent(events.TaskApprovedEvent, "task-001"),
		Action:    models.ActionApprove,
		Operator:  models.UserRef{ID: "user-002", Name: "李总工"},
		NodeName:  "技术评审",
		Comment:   "同意，方案可行",
	}

	require.NoError(t, bus.Publish(t.Context(), "task-001", published))

	select {
	case actioned := <-received:
		assert.Equal(t, "task-001", actioned.TaskID)
		assert.Equal(t, models.ActionApprove, actioned.Action)
		assert.Equal(t, "同意，方案可行", actioned.Comment)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestUnhandledEventTypesAreAcked(t *testing.T) {
	bus := newTestBus(t)
	received := make(chan struct{}, 1)

	err := bus.Handle(events.TaskCompletedEvent, func(_ context.Context, _ any) error {
		received <- struct{}{}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	// No handler registered for withdrawals; must not block the stream.
	withdrawn := events.TaskActioned{
		BaseEvent: events.NewBaseEvent(events.TaskWithdrawnEvent, "task-001"),
		Action:    models.ActionWithdraw,
	}
	require.NoError(t, bus.Publish(t.Context(), "task-001", withdrawn))

	completed := events.TaskCompleted{
		BaseEvent: events.NewBaseEvent(events.TaskCompletedEvent, "task-001"),
		Status:    models.TaskStatusApproved,
	}
	require.NoError(t, bus.Publish(t.Context(), "task-001", completed))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("later event was not delivered past the unhandled one")
	}
}

func TestTypeForAction(t *testing.T) {
	eventType, ok := events.TypeForAction(models.ActionReject)
	require.True(t, ok)
	assert.Equal(t, events.TaskRejectedEvent, eventType)

	_, ok = events.TypeForAction(models.ActionPending)
	assert.False(t, ok, "pending is a display state, not a publishable action")
}
