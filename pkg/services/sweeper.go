package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// Sweeper periodically scans pending tasks, promotes ones past their due
// date to high priority and emits an overdue event for each. Sweeps are
// idempotent; consumers dedupe on task id.
type Sweeper struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	cronExpr    string
	cron        *cron.Cron
	logger      *slog.Logger
}

// NewSweeper creates a sweeper on the given cron schedule.
func NewSweeper(p persistence.Persistence, publisher eventbus.EventPublisher, cronExpr string, logger *slog.Logger) (*Sweeper, error) {
	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	return &Sweeper{
		persistence: p,
		publisher:   publisher,
		cronExpr:    cronExpr,
		logger:      logger.With("module", "due_date_sweeper", "cron", cronExpr),
	}, nil
}

// Start schedules the sweep. Overlapping runs are skipped, not queued.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting due date sweeper")

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.cronExpr, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep cron job: %w", err)
	}

	s.cron.Start()

	return nil
}

// Sweep runs one pass over all pending tasks.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now().UTC()
	overdue := 0

	for page := 1; ; page++ {
		result, err := s.persistence.Tasks().ListTasks(ctx, persistence.ListTasksOptions{
			Queue:    persistence.QueueTodo,
			Page:     page,
			PageSize: 100,
		})
		if err != nil {
			return fmt.Errorf("failed to list pending tasks: %w", err)
		}

		for _, task := range result.Tasks {
			if !task.IsOverdue(now) {
				continue
			}

			overdue++

			if task.Priority != models.PriorityHigh {
				if err := s.promote(ctx, task.ID); err != nil {
					s.logger.ErrorContext(ctx, "Failed to promote overdue task", "task_id", task.ID, "error", err)
				}
			}

			event := events.TaskOverdue{
				BaseEvent: events.NewBaseEvent(events.TaskOverdueEvent, task.ID),
				DueDate:   *task.DueDate,
			}
			if task.Assignee != nil {
				event.Assignee = *task.Assignee
			}

			if err := s.publisher.Publish(ctx, task.ID, event); err != nil {
				s.logger.ErrorContext(ctx, "Failed to publish overdue event", "task_id", task.ID, "error", err)
			}
		}

		if page*result.PageSize >= result.Total {
			break
		}
	}

	s.logger.InfoContext(ctx, "Sweep completed", "overdue", overdue)

	return nil
}

// promote raises an overdue task to high priority through the bundle, so
// the change lands in the same single-write path every other mutation uses.
func (s *Sweeper) promote(ctx context.Context, taskID string) error {
	bundle, err := s.persistence.Tasks().BundleByID(ctx, taskID)
	if err != nil {
		return err
	}

	bundle.Task.Priority = models.PriorityHigh

	return s.persistence.Tasks().SaveBundle(ctx, bundle)
}

// Stop halts the schedule. A sweep already running finishes.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Stopping due date sweeper")

	if s.cron != nil {
		s.cron.Stop()
	}

	return nil
}
