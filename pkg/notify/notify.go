// Package notify delivers per-user notifications for approval activity.
// Delivery is best-effort: a failed notification never rolls back the
// action that produced it.
package notify

import (
	"context"
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
)

// Notification is one message addressed to a single user.
type Notification struct {
	ID        string            `json:"id"`
	Recipient string            `json:"recipient"` // user id
	TaskID    string            `json:"task_id"`
	Action    models.ActionType `json:"action"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier delivers notifications to their recipients.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
	Close() error
}
