package notify

import (
	"context"
	"sync"
)

// MemoryNotifier collects notifications in memory. Used in tests and
// single-node development setups where no Redis is available.
type MemoryNotifier struct {
	mu     sync.Mutex
	queues map[string][]Notification
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{
		queues: make(map[string][]Notification),
	}
}

func (n *MemoryNotifier) Notify(ctx context.Context, notification Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.queues[notification.Recipient] = append(n.queues[notification.Recipient], notification)

	return nil
}

// Sent returns the notifications queued for one recipient, oldest first.
func (n *MemoryNotifier) Sent(recipient string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	queue := n.queues[recipient]
	out := make([]Notification, len(queue))
	copy(out, queue)

	return out
}

func (n *MemoryNotifier) Close() error {
	return nil
}
