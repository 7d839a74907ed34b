package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigbit/approvalflow/pkg/eventbus"
	"github.com/bigbit/approvalflow/pkg/events"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// Matrix is the application service for workflow definitions and their
// per-role field permission matrices.
type Matrix struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// NewMatrix creates the matrix service. Publisher is optional.
func NewMatrix(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Matrix {
	return &Matrix{
		persistence: p,
		publisher:   publisher,
		logger:      logger.With("module", "matrix_service"),
	}
}

// ListDefinitions returns all workflow definitions, sorted by key.
func (m *Matrix) ListDefinitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	defs, err := m.persistence.Definitions().Definitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	return defs, nil
}

// LoadMatrix returns one definition with its full permission matrix.
func (m *Matrix) LoadMatrix(ctx context.Context, definitionKey string) (*models.WorkflowDefinition, error) {
	if definitionKey == "" {
		return nil, ErrDefinitionKeyRequired
	}

	def, err := m.persistence.Definitions().DefinitionByKey(ctx, definitionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}

	return def, nil
}

// SaveMatrix validates and persists a definition's permission matrix, then
// announces the update. Saves are idempotent full replacements.
func (m *Matrix) SaveMatrix(ctx context.Context, session models.Session, def *models.WorkflowDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	if err := m.persistence.Definitions().SaveDefinition(ctx, def); err != nil {
		return fmt.Errorf("failed to save definition: %w", err)
	}

	m.logger.InfoContext(ctx, "Permission matrix saved",
		"definition_key", def.Key,
		"fields", len(def.Fields),
		"updated_by", session.User.ID,
	)

	if m.publisher != nil {
		updated := events.MatrixUpdated{
			BaseEvent:     events.NewBaseEvent(events.MatrixUpdatedEvent, ""),
			DefinitionKey: def.Key,
			UpdatedBy:     session.User.ID,
		}
		if err := m.publisher.Publish(ctx, def.Key, updated); err != nil {
			m.logger.ErrorContext(ctx, "Failed to publish matrix update", "definition_key", def.Key, "error", err)
		}
	}

	return nil
}

func validateDefinition(def *models.WorkflowDefinition) error {
	if def == nil || def.Key == "" {
		return ErrDefinitionKeyRequired
	}

	if def.Name == "" {
		return ErrDefinitionNameRequired
	}

	if len(def.Fields) == 0 {
		return ErrFieldsRequired
	}

	seen := make(map[string]bool, len(def.Fields))

	for _, field := range def.Fields {
		if seen[field.FieldKey] {
			return fmt.Errorf("%w: %q", ErrDuplicateFieldKey, field.FieldKey)
		}

		seen[field.FieldKey] = true

		for _, level := range []models.PermissionLevel{field.Initiator, field.Reviewer, field.Approver} {
			if !level.IsValid() {
				return fmt.Errorf("%w: %q on field %q", ErrInvalidPermissionLevel, level, field.FieldKey)
			}
		}
	}

	return nil
}
