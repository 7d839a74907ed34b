package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// TaskRepository handles task-bundle file operations. Each bundle (task +
// nodes + timeline) is stored as one JSON file so engine commits land in a
// single write.
type TaskRepository struct {
	root string
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(root string) *TaskRepository {
	return &TaskRepository{root: root}
}

// ListTasks returns paginated and filtered tasks with in-memory operations.
func (tr *TaskRepository) ListTasks(ctx context.Context, opts persistence.ListTasksOptions) (*persistence.TaskListResult, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}

	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 10
	}

	root := os.DirFS(path.Join(tr.root, "tasks"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list task files: %w", err)
	}

	bundles := make([]*models.TaskBundle, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		taskID := file[:len(file)-5] // Remove .json extension

		bundle, err := tr.BundleByID(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
		}

		bundles = append(bundles, bundle)
	}

	filtered := make([]*models.Task, 0, len(bundles))

	for _, bundle := range bundles {
		if matchesList(bundle, opts) {
			filtered = append(filtered, bundle.Task)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	start := (opts.Page - 1) * opts.PageSize

	if start >= total {
		filtered = nil
	} else {
		end := min(start+opts.PageSize, total)
		filtered = filtered[start:end]
	}

	return &persistence.TaskListResult{
		Tasks:    filtered,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	}, nil
}

// matchesList applies queue, keyword and priority filters to one bundle.
func matchesList(bundle *models.TaskBundle, opts persistence.ListTasksOptions) bool {
	task := bundle.Task

	switch opts.Queue {
	case persistence.QueueTodo:
		if task.Status != models.TaskStatusPending {
			return false
		}

		if opts.UserID != "" && (task.Assignee == nil || task.Assignee.ID != opts.UserID) {
			return false
		}
	case persistence.QueueDone:
		if !task.Status.IsTerminal() {
			return false
		}

		if opts.UserID != "" && !actedOn(bundle.Records, opts.UserID) {
			return false
		}
	case persistence.QueueInitiated:
		if opts.UserID != "" && task.Initiator.ID != opts.UserID {
			return false
		}
	}

	if opts.Priority != "" && task.Priority != opts.Priority {
		return false
	}

	if opts.Keyword != "" {
		keyword := strings.ToLower(opts.Keyword)
		if !strings.Contains(strings.ToLower(task.ProcessName), keyword) &&
			!strings.Contains(strings.ToLower(task.TaskName), keyword) &&
			!strings.Contains(strings.ToLower(task.Initiator.Name), keyword) {
			return false
		}
	}

	return true
}

func actedOn(records []*models.ApprovalRecord, userID string) bool {
	for _, r := range records {
		if r.Operator.ID == userID {
			return true
		}
	}

	return false
}

// BundleByID retrieves a task bundle by task ID from the file system.
func (tr *TaskRepository) BundleByID(_ context.Context, taskID string) (*models.TaskBundle, error) {
	filePath := filepath.Clean(path.Join(tr.root, "tasks", taskID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewTaskError("BundleByID", taskID, persistence.ErrTaskNotFound)
		}

		return nil, fmt.Errorf("failed to fetch task %s: %w", taskID, err)
	}

	var bundle models.TaskBundle

	err = json.Unmarshal(body, &bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", taskID, err)
	}

	return &bundle, nil
}

// SaveBundle saves a task bundle to the file system as a single write.
func (tr *TaskRepository) SaveBundle(_ context.Context, bundle *models.TaskBundle) error {
	err := os.MkdirAll(path.Join(tr.root, "tasks"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create tasks directory: %w", err)
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", bundle.Task.ID, err)
	}

	filePath := path.Join(tr.root, "tasks", bundle.Task.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
