// Package permissions resolves per-field form permissions from workflow
// definitions and manages per-session edits to a definition's permission
// matrix.
package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
)

// ErrUnknownRole indicates a role outside the closed workflow role set.
// Unknown roles are rejected at the boundary, never defaulted.
var ErrUnknownRole = errors.New("unknown workflow role")

// ResolvedPermission is one field's effective permission for a role.
type ResolvedPermission struct {
	FieldKey  string                 `json:"field_key"`
	FieldName string                 `json:"field_name"`
	Level     models.PermissionLevel `json:"level"`
}

// Resolver reads field permissions from stored workflow definitions.
type Resolver struct {
	definitions persistence.DefinitionRepository
}

// NewResolver creates a resolver backed by the given definition repository.
func NewResolver(definitions persistence.DefinitionRepository) *Resolver {
	return &Resolver{definitions: definitions}
}

// Resolve returns one permission entry per field declared by the definition,
// preserving the definition's field order. It is a pure read.
func (r *Resolver) Resolve(ctx context.Context, definitionKey string, role models.Role) ([]ResolvedPermission, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	def, err := r.definitions.DefinitionByKey(ctx, definitionKey)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedPermission, 0, len(def.Fields))
	for _, field := range def.Fields {
		resolved = append(resolved, ResolvedPermission{
			FieldKey:  field.FieldKey,
			FieldName: field.FieldName,
			Level:     field.Level(role),
		})
	}

	return resolved, nil
}
