package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const queuePrefix = "approvalflow:notify:"

// RedisNotifier pushes notifications onto a per-recipient Redis list.
// Downstream delivery workers pop from these lists.
type RedisNotifier struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisNotifier connects to Redis using the given connection settings.
// Recognized keys: addr, password, db.
func NewRedisNotifier(ctx context.Context, connection map[string]string, logger *slog.Logger) (*RedisNotifier, error) {
	addr := connection["addr"]
	if addr == "" {
		addr = "localhost:6379"
	}

	db := 0

	if dbStr := connection["db"]; dbStr != "" {
		if _, err := fmt.Sscanf(dbStr, "%d", &db); err != nil {
			return nil, fmt.Errorf("invalid db value: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: connection["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", db)

	return &RedisNotifier{
		client: client,
		logger: logger.With("module", "redis_notifier"),
	}, nil
}

// Notify appends the notification to the recipient's queue.
func (n *RedisNotifier) Notify(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	queue := queuePrefix + notification.Recipient

	err = n.client.RPush(ctx, queue, payload).Err()
	if err != nil {
		return fmt.Errorf("failed to push notification to %s: %w", queue, err)
	}

	n.logger.DebugContext(ctx, "Notification queued",
		"recipient", notification.Recipient,
		"task_id", notification.TaskID,
		"action", notification.Action,
	)

	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
