// Package persistence provides the data storage abstraction layer for tasks
// and workflow definitions.
package persistence

import (
	"context"

	"github.com/bigbit/approvalflow/pkg/models"
)

// TaskQueue selects which task list to fetch.
type TaskQueue string

const (
	QueueTodo      TaskQueue = "todo"      // Pending tasks assigned to the user
	QueueDone      TaskQueue = "done"      // Terminal tasks the user acted on
	QueueInitiated TaskQueue = "initiated" // Tasks whose process the user started
)

// ListTasksOptions filters and paginates task lists.
type ListTasksOptions struct {
	Queue    TaskQueue
	UserID   string
	Keyword  string
	Priority models.Priority
	Page     int // 1-based
	PageSize int
}

// TaskListResult is one page of tasks plus the unpaginated total.
type TaskListResult struct {
	Tasks    []*models.Task `json:"tasks"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// TaskRepository stores tasks together with their owned node sequence and
// approval timeline. The bundle is saved as a whole so an engine commit is
// never split across partial writes.
type TaskRepository interface {
	ListTasks(ctx context.Context, opts ListTasksOptions) (*TaskListResult, error)
	BundleByID(ctx context.Context, taskID string) (*models.TaskBundle, error)
	SaveBundle(ctx context.Context, bundle *models.TaskBundle) error
}

// DefinitionRepository stores workflow definitions (shared, read-mostly
// reference data).
type DefinitionRepository interface {
	Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error)
	DefinitionByKey(ctx context.Context, key string) (*models.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error
}

// Persistence is the storage entry point implementations provide.
type Persistence interface {
	Tasks() TaskRepository
	Definitions() DefinitionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
