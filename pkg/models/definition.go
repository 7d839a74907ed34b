package models

// PermissionLevel represents a role's access to a single form field.
type PermissionLevel string

const (
	PermissionHidden   PermissionLevel = "hidden"
	PermissionReadonly PermissionLevel = "readonly"
	PermissionEditable PermissionLevel = "editable"
)

var validPermissionLevels = map[PermissionLevel]bool{
	PermissionHidden:   true,
	PermissionReadonly: true,
	PermissionEditable: true,
}

// IsValid reports whether the permission level is one of the known levels.
func (p PermissionLevel) IsValid() bool {
	return validPermissionLevels[p]
}

// Role is the closed set of workflow roles. Unknown roles are rejected at
// the boundary rather than defaulted silently.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleReviewer  Role = "reviewer"
	RoleApprover  Role = "approver"
)

var validRoles = map[Role]bool{
	RoleInitiator: true,
	RoleReviewer:  true,
	RoleApprover:  true,
}

// IsValid reports whether the role is one of the known workflow roles.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// FieldPermission declares a form field and its per-role permission levels.
type FieldPermission struct {
	FieldKey  string          `json:"field_key"  validate:"required"`
	FieldName string          `json:"field_name" validate:"required"`
	FieldType string          `json:"field_type"`
	Initiator PermissionLevel `json:"initiator"  validate:"required"`
	Reviewer  PermissionLevel `json:"reviewer"   validate:"required"`
	Approver  PermissionLevel `json:"approver"   validate:"required"`
}

// Level returns the permission level for the given role.
func (f FieldPermission) Level(role Role) PermissionLevel {
	switch role {
	case RoleInitiator:
		return f.Initiator
	case RoleReviewer:
		return f.Reviewer
	case RoleApprover:
		return f.Approver
	default:
		return PermissionHidden
	}
}

// WorkflowDefinition is the static description of a process's fields and
// per-role field permissions. Definitions are shared read-only reference
// data, not owned by any single task. FieldKey is unique within a definition.
type WorkflowDefinition struct {
	Key    string            `json:"key"  validate:"required"`
	Name   string            `json:"name" validate:"required"`
	Fields []FieldPermission `json:"fields"`
}

// Field returns the declared field permission for key, or nil if absent.
func (d *WorkflowDefinition) Field(key string) *FieldPermission {
	for i := range d.Fields {
		if d.Fields[i].FieldKey == key {
			return &d.Fields[i]
		}
	}

	return nil
}
