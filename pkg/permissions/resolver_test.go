package permissions

import (
	"testing"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/bigbit/approvalflow/pkg/persistence"
	"github.com/bigbit/approvalflow/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOneEntryPerFieldInDeclaredOrder(t *testing.T) {
	store := memory.NewPersistence()
	resolver := NewResolver(store.Definitions())

	defs, err := store.Definitions().Definitions(t.Context())
	require.NoError(t, err)

	for _, def := range defs {
		for _, role := range []models.Role{models.RoleInitiator, models.RoleReviewer, models.RoleApprover} {
			resolved, err := resolver.Resolve(t.Context(), def.Key, role)
			require.NoError(t, err)
			require.Len(t, resolved, len(def.Fields))

			seen := make(map[string]bool, len(resolved))

			for i, perm := range resolved {
				assert.Equal(t, def.Fields[i].FieldKey, perm.FieldKey, "order must match declaration")
				assert.False(t, seen[perm.FieldKey], "no duplicate entries")
				assert.True(t, perm.Level.IsValid())
				seen[perm.FieldKey] = true
			}
		}
	}
}

func TestResolveLevelsPerRole(t *testing.T) {
	store := memory.NewPersistence()
	resolver := NewResolver(store.Definitions())

	resolved, err := resolver.Resolve(t.Context(), "design_input_review", models.RoleReviewer)
	require.NoError(t, err)

	byKey := make(map[string]models.PermissionLevel, len(resolved))
	for _, perm := range resolved {
		byKey[perm.FieldKey] = perm.Level
	}

	assert.Equal(t, models.PermissionReadonly, byKey["projectCode"])
	assert.Equal(t, models.PermissionEditable, byKey["reviewOpinion"])
	assert.Equal(t, models.PermissionHidden, byKey["approvalResult"])
}

func TestResolveUnknownDefinition(t *testing.T) {
	store := memory.NewPersistence()
	resolver := NewResolver(store.Definitions())

	_, err := resolver.Resolve(t.Context(), "no_such_process", models.RoleReviewer)
	require.ErrorIs(t, err, persistence.ErrDefinitionNotFound)
}

func TestResolveUnknownRoleRejected(t *testing.T) {
	store := memory.NewPersistence()
	resolver := NewResolver(store.Definitions())

	_, err := resolver.Resolve(t.Context(), "design_input_review", models.Role("admin"))
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestEditorSaveAndReload(t *testing.T) {
	store := memory.NewPersistence()

	editor, err := NewEditor(t.Context(), store.Definitions(), "design_input_review")
	require.NoError(t, err)
	assert.False(t, editor.Dirty())

	editor.Set("reviewOpinion", models.RoleApprover, models.PermissionEditable)
	assert.True(t, editor.Dirty())

	require.NoError(t, editor.Save(t.Context()))
	assert.False(t, editor.Dirty())

	// Round-trip: the stored definition now carries the edit.
	def, err := store.Definitions().DefinitionByKey(t.Context(), "design_input_review")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionEditable, def.Field("reviewOpinion").Approver)

	// Saving again without edits changes nothing.
	require.NoError(t, editor.Save(t.Context()))

	again, err := store.Definitions().DefinitionByKey(t.Context(), "design_input_review")
	require.NoError(t, err)
	assert.Equal(t, def, again)
}

func TestEditorResetDiscardsEdits(t *testing.T) {
	store := memory.NewPersistence()

	editor, err := NewEditor(t.Context(), store.Definitions(), "design_input_review")
	require.NoError(t, err)

	editor.Set("projectCode", models.RoleInitiator, models.PermissionHidden)
	require.NoError(t, editor.Reset(t.Context()))
	assert.False(t, editor.Dirty())

	for _, field := range editor.Fields() {
		if field.FieldKey == "projectCode" {
			assert.Equal(t, models.PermissionEditable, field.Initiator)
		}
	}

	// Reset with no pending edits is a no-op.
	before := editor.Fields()
	require.NoError(t, editor.Reset(t.Context()))
	assert.Equal(t, before, editor.Fields())
}

func TestEditorUnknownFieldKeyIsNoOp(t *testing.T) {
	store := memory.NewPersistence()

	editor, err := NewEditor(t.Context(), store.Definitions(), "design_input_review")
	require.NoError(t, err)

	before := editor.Fields()

	editor.Set("removedField", models.RoleReviewer, models.PermissionEditable)
	assert.False(t, editor.Dirty())
	assert.Equal(t, before, editor.Fields())

	// Invalid role or level is ignored the same way.
	editor.Set("projectCode", models.Role("admin"), models.PermissionEditable)
	editor.Set("projectCode", models.RoleReviewer, models.PermissionLevel("owner"))
	assert.False(t, editor.Dirty())
	assert.Equal(t, before, editor.Fields())
}
