package permissions

import (
	"context"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// Editor holds a per-session working copy of one definition's permission
// matrix. Edits accumulate locally; Save overwrites the stored definition
// and Reset reloads it, discarding pending edits. Neither operation changes
// anything when called repeatedly without further edits.
type Editor struct {
	definitions persistence.DefinitionRepository
	key         string
	working     *models.WorkflowDefinition
	dirty       bool
}

// NewEditor loads the definition and opens a working copy on it.
func NewEditor(ctx context.Context, definitions persistence.DefinitionRepository, definitionKey string) (*Editor, error) {
	def, err := definitions.DefinitionByKey(ctx, definitionKey)
	if err != nil {
		return nil, err
	}

	return &Editor{
		definitions: definitions,
		key:         definitionKey,
		working:     def,
	}, nil
}

// Fields returns the working copy's fields in declared order.
func (e *Editor) Fields() []models.FieldPermission {
	return append([]models.FieldPermission(nil), e.working.Fields...)
}

// Dirty reports whether the working copy has unsaved edits.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Set changes one cell of the working copy. Editing a fieldKey that is not
// present is a deliberate no-op: stale views may still reference removed
// fields and their edits are simply ignored. Invalid roles or levels are
// likewise ignored rather than corrupting the copy.
func (e *Editor) Set(fieldKey string, role models.Role, level models.PermissionLevel) {
	if !role.IsValid() || !level.IsValid() {
		return
	}

	field := e.working.Field(fieldKey)
	if field == nil {
		return
	}

	switch role {
	case models.RoleInitiator:
		if field.Initiator == level {
			return
		}

		field.Initiator = level
	case models.RoleReviewer:
		if field.Reviewer == level {
			return
		}

		field.Reviewer = level
	case models.RoleApprover:
		if field.Approver == level {
			return
		}

		field.Approver = level
	}

	e.dirty = true
}

// Save persists the working copy, overwriting the stored definition.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.definitions.SaveDefinition(ctx, e.working); err != nil {
		return err
	}

	e.dirty = false

	return nil
}

// Reset discards pending edits and reloads the stored values.
func (e *Editor) Reset(ctx context.Context) error {
	def, err := e.definitions.DefinitionByKey(ctx, e.key)
	if err != nil {
		return err
	}

	e.working = def
	e.dirty = false

	return nil
}
