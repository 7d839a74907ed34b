package mocks

import (
	"context"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository is a mock implementation of persistence.TaskRepository interface.
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, opts persistence.ListTasksOptions) (*persistence.TaskListResult, error) {
	args := m.Called(ctx, opts)

	result, _ := args.Get(0).(*persistence.TaskListResult)

	return result, args.Error(1)
}

func (m *MockTaskRepository) BundleByID(ctx context.Context, taskID string) (*models.TaskBundle, error) {
	args := m.Called(ctx, taskID)

	bundle, _ := args.Get(0).(*models.TaskBundle)

	return bundle, args.Error(1)
}

func (m *MockTaskRepository) SaveBundle(ctx context.Context, bundle *models.TaskBundle) error {
	args := m.Called(ctx, bundle)

	return args.Error(0)
}

// MockDefinitionRepository is a mock implementation of persistence.DefinitionRepository interface.
type MockDefinitionRepository struct {
	mock.Mock
}

func (m *MockDefinitionRepository) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)

	defs, _ := args.Get(0).([]*models.WorkflowDefinition)

	return defs, args.Error(1)
}

func (m *MockDefinitionRepository) DefinitionByKey(ctx context.Context, key string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, key)

	def, _ := args.Get(0).(*models.WorkflowDefinition)

	return def, args.Error(1)
}

func (m *MockDefinitionRepository) SaveDefinition(ctx context.Context, def *models.WorkflowDefinition) error {
	args := m.Called(ctx, def)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Tasks() persistence.TaskRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.TaskRepository)

	return repo
}

func (m *MockPersistence) Definitions() persistence.DefinitionRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.DefinitionRepository)

	return repo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
