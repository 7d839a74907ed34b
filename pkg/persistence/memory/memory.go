// Package memory provides an in-memory persistence implementation preloaded
// with fixture data. It stands in for a real backend during development and
// tests: reads and writes can be slowed by a configurable artificial latency
// and individual operations can be made to fail transiently.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// Option configures the in-memory persistence.
type Option func(*Persistence)

// WithLatency makes every repository call sleep for d before responding,
// simulating a network round-trip.
func WithLatency(d time.Duration) Option {
	return func(p *Persistence) {
		p.latency = d
	}
}

// WithFailure installs a hook consulted before every operation. Returning a
// non-nil error aborts the operation with that error; the store is left
// unchanged. Used to simulate transient transport failures.
func WithFailure(hook func(op string) error) Option {
	return func(p *Persistence) {
		p.failure = hook
	}
}

// WithoutFixtures starts from an empty store instead of the seeded demo data.
func WithoutFixtures() Option {
	return func(p *Persistence) {
		p.seed = false
	}
}

// Persistence implements persistence.Persistence backed by in-process maps.
type Persistence struct {
	mu      sync.RWMutex
	bundles map[string]*models.TaskBundle
	defs    map[string]*models.WorkflowDefinition

	latency time.Duration
	failure func(op string) error
	seed    bool

	taskRepo *taskRepository
	defRepo  *definitionRepository
}

// NewPersistence creates an in-memory persistence, seeded with fixtures
// unless WithoutFixtures is given.
func NewPersistence(opts ...Option) *Persistence {
	p := &Persistence{
		bundles: make(map[string]*models.TaskBundle),
		defs:    make(map[string]*models.WorkflowDefinition),
		seed:    true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.seed {
		for _, def := range fixtureDefinitions() {
			p.defs[def.Key] = def
		}

		for _, bundle := range fixtureBundles() {
			p.bundles[bundle.Task.ID] = bundle
		}
	}

	p.taskRepo = &taskRepository{p: p}
	p.defRepo = &definitionRepository{p: p}

	return p
}

// Tasks returns the task repository.
func (p *Persistence) Tasks() persistence.TaskRepository {
	return p.taskRepo
}

// Definitions returns the definition repository.
func (p *Persistence) Definitions() persistence.DefinitionRepository {
	return p.defRepo
}

// HealthCheck always succeeds for the in-memory store.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close discards nothing; the store lives as long as the process.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// before applies artificial latency and the failure hook. Context
// cancellation cuts the simulated round-trip short.
func (p *Persistence) before(ctx context.Context, op string) error {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if p.failure != nil {
		if err := p.failure(op); err != nil {
			return err
		}
	}

	return nil
}

type taskRepository struct {
	p *Persistence
}

func (tr *taskRepository) ListTasks(ctx context.Context, opts persistence.ListTasksOptions) (*persistence.TaskListResult, error) {
	if err := tr.p.before(ctx, "ListTasks"); err != nil {
		return nil, err
	}

	if opts.Page <= 0 {
		opts.Page = 1
	}

	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 10
	}

	tr.p.mu.RLock()
	defer tr.p.mu.RUnlock()

	filtered := make([]*models.Task, 0, len(tr.p.bundles))

	for _, bundle := range tr.p.bundles {
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

func (tr *taskRepository) BundleByID(ctx context.Context, taskID string) (*models.TaskBundle, error) {
	if err := tr.p.before(ctx, "BundleByID"); err != nil {
		return nil, err
	}

	tr.p.mu.RLock()
	defer tr.p.mu.RUnlock()

	bundle, ok := tr.p.bundles[taskID]
	if !ok {
		return nil, persistence.NewTaskError("BundleByID", taskID, persistence.ErrTaskNotFound)
	}

	return cloneBundle(bundle), nil
}

func (tr *taskRepository) SaveBundle(ctx context.Context, bundle *models.TaskBundle) error {
	if err := tr.p.before(ctx, "SaveBundle"); err != nil {
		return err
	}

	tr.p.mu.Lock()
	defer tr.p.mu.Unlock()

	tr.p.bundles[bundle.Task.ID] = cloneBundle(bundle)

	return nil
}

type definitionRepository struct {
	p *Persistence
}

func (dr *definitionRepository) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	if err := dr.p.before(ctx, "Definitions"); err != nil {
		return nil, err
	}

	dr.p.mu.RLock()
	defer dr.p.mu.RUnlock()

	defs := make([]*models.WorkflowDefinition, 0, len(dr.p.defs))
	for _, def := range dr.p.defs {
		defs = append(defs, cloneDefinition(def))
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Key < defs[j].Key
	})

	return defs, nil
}

func (dr *definitionRepository) DefinitionByKey(ctx context.Context, key string) (*models.WorkflowDefinition, error) {
	if err := dr.p.before(ctx, "DefinitionByKey"); err != nil {
		return nil, err
	}

	dr.p.mu.RLock()
	defer dr.p.mu.RUnlock()

	def, ok := dr.p.defs[key]
	if !ok {
		return nil, persistence.NewDefinitionError("DefinitionByKey", key, persistence.ErrDefinitionNotFound)
	}

	return cloneDefinition(def), nil
}

func (dr *definitionRepository) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	if err := dr.p.before(ctx, "SaveDefinition"); err != nil {
		return err
	}

	dr.p.mu.Lock()
	defer dr.p.mu.Unlock()

	dr.p.defs[def.Key] = cloneDefinition(def)

	return nil
}

// cloneBundle deep-copies a bundle so callers cannot mutate the store
// outside the engine's commit path.
func cloneBundle(in *models.TaskBundle) *models.TaskBundle {
	out := &models.TaskBundle{}

	if in.Task != nil {
		task := *in.Task
		if in.Task.Assignee != nil {
			assignee := *in.Task.Assignee
			task.Assignee = &assignee
		}

		if in.Task.DueDate != nil {
			due := *in.Task.DueDate
			task.DueDate = &due
		}

		out.Task = &task
	}

	if in.FormSchema != nil {
		schema := *in.FormSchema
		schema.Fields = append([]models.SchemaField(nil), in.FormSchema.Fields...)
		out.FormSchema = &schema
	}

	out.Nodes = make([]*models.ProcessNode, len(in.Nodes))
	for i, n := range in.Nodes {
		node := *n
		if n.CompletedAt != nil {
			completed := *n.CompletedAt
			node.CompletedAt = &completed
		}

		out.Nodes[i] = &node
	}

	out.Records = make([]*models.ApprovalRecord, len(in.Records))
	for i, r := range in.Records {
		record := *r
		out.Records[i] = &record
	}

	out.UserOptions = append([]models.UserOption(nil), in.UserOptions...)
	out.NodeOptions = append([]models.NodeOption(nil), in.NodeOptions...)

	return out
}

func cloneDefinition(in *models.WorkflowDefinition) *models.WorkflowDefinition {
	out := *in
	out.Fields = append([]models.FieldPermission(nil), in.Fields...)

	return &out
}
