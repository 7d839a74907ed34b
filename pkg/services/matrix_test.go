package services_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/mocks"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence/memory"
	"github.com/bigbit/approvalflow/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMatrixService(t *testing.T) (*services.Matrix, *memory.Persistence) {
	t.Helper()

	p := memory.NewPersistence()

	return services.NewMatrix(p, nil, slog.Default()), p
}

func TestLoadMatrixReturnsFullDefinition(t *testing.T) {
	service, _ := newMatrixService(t)

	def, err := service.LoadMatrix(t.Context(), "design_input_review")
	require.NoError(t, err)
	assert.Equal(t, "设计输入评审", def.Name)
	assert.Len(t, def.Fields, 5)

	_, err = service.LoadMatrix(t.Context(), "")
	require.ErrorIs(t, err, services.ErrDefinitionKeyRequired)

	_, err = service.LoadMatrix(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
}

func TestSaveMatrixRoundTrip(t *testing.T) {
	service, _ := newMatrixService(t)

	def, err := service.LoadMatrix(t.Context(), "project_change")
	require.NoError(t, err)

	def.Fields[0].Reviewer = models.PermissionEditable
	require.NoError(t, service.SaveMatrix(t.Context(), adminSession, def))

	reloaded, err := service.LoadMatrix(t.Context(), "project_change")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionEditable, reloaded.Fields[0].Reviewer)

	// Saving again without changes is a no-op overwrite.
	require.NoError(t, service.SaveMatrix(t.Context(), adminSession, reloaded))
}

func TestSaveMatrixValidation(t *testing.T) {
	service, _ := newMatrixService(t)

	tests := []struct {
		name    string
		def     *models.WorkflowDefinition
		wantErr error
	}{
		{"nil definition", nil, services.ErrDefinitionKeyRequired},
		{"missing key", &models.WorkflowDefinition{Name: "x"}, services.ErrDefinitionKeyRequired},
		{"missing name", &models.WorkflowDefinition{Key: "x"}, services.ErrDefinitionNameRequired},
		{"no fields", &models.WorkflowDefinition{Key: "x", Name: "X"}, services.ErrFieldsRequired},
		{
			"duplicate field",
			&models.WorkflowDefinition{Key: "x", Name: "X", Fields: []models.FieldPermission{
				{FieldKey: "a", FieldName: "A", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "a", FieldName: "A again", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
			}},
			services.ErrDuplicateFieldKey,
		},
		{
			"bad level",
			&models.WorkflowDefinition{Key: "x", Name: "X", Fields: []models.FieldPermission{
				{FieldKey: "a", FieldName: "A", Initiator: "writable", Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
			}},
			services.ErrInvalidPermissionLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := service.SaveMatrix(t.Context(), adminSession, tc.def)
			require.ErrorIs(t, err, tc.wantErr)
			assert.True(t, services.IsValidationError(err))
		})
	}
}

func TestListDefinitionsSortedByKey(t *testing.T) {
	service, _ := newMatrixService(t)

	defs, err := service.ListDefinitions(t.Context())
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "design_input_review", defs[0].Key)
	assert.Equal(t, "project_change", defs[1].Key)
}

func TestSaveMatrixPublishesUpdate(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "design_input_review", mock.AnythingOfType("events.MatrixUpdated")).Return(nil)

	service := services.NewMatrix(memory.NewPersistence(), bus, slog.Default())

	def, err := service.LoadMatrix(t.Context(), "design_input_review")
	require.NoError(t, err)

	require.NoError(t, service.SaveMatrix(t.Context(), adminSession, def))

	bus.AssertExpectations(t)

	published, ok := bus.Calls[0].Arguments.Get(2).(events.MatrixUpdated)
	require.True(t, ok)
	assert.Equal(t, events.MatrixUpdatedEvent, published.GetType())
	assert.Equal(t, "design_input_review", published.DefinitionKey)
	assert.Equal(t, "user-001", published.UpdatedBy)
}

func TestSaveMatrixToleratesPublishFailure(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	p := memory.NewPersistence()
	service := services.NewMatrix(p, bus, slog.Default())

	def, err := service.LoadMatrix(t.Context(), "project_change")
	require.NoError(t, err)

	// The save itself still succeeds; the event is best effort.
	require.NoError(t, service.SaveMatrix(t.Context(), adminSession, def))

	stored, err := p.Definitions().DefinitionByKey(t.Context(), "project_change")
	require.NoError(t, err)
	assert.Equal(t, def.Name, stored.Name)
}
