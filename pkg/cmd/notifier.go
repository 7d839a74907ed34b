package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigbit/approvalflow/pkg/notify"
)

// NewNotifier creates a notifier from a URL. "redis://host:port/db" queues
// through Redis; an empty URL or "memory://" keeps notifications in process.
func NewNotifier(ctx context.Context, notifierURL string, logger *slog.Logger) (notify.Notifier, error) {
	if notifierURL == "" || strings.HasPrefix(notifierURL, "memory://") {
		return notify.NewMemoryNotifier(), nil
	}

	rest, ok := strings.CutPrefix(notifierURL, "redis://")
	if !ok {
		return nil, fmt.Errorf("unsupported notifier URL: %s", notifierURL)
	}

	connection := map[string]string{}

	if addr, db, found := strings.Cut(rest, "/"); found {
		connection["addr"] = addr
		connection["db"] = db
	} else {
		connection["addr"] = rest
	}

	return notify.NewRedisNotifier(ctx, connection, logger)
}
