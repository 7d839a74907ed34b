// Package web provides HTTP request and response types for the approval API.
package web

import "github.com/bigbit/approvalflow/pkg/models"

// SubmitActionRequest represents the request body for acting on a task.
type SubmitActionRequest struct {
	Action       string   `json:"action"         validate:"required,oneof=approve reject forward countersign withdraw"`
	Comment      string   `json:"comment,omitempty"`
	TargetUsers  []string `json:"target_users,omitempty"`
	RejectToNode string   `json:"reject_to_node,omitempty"`
}

// Params converts the request into engine parameters.
func (r SubmitActionRequest) Params() models.ApprovalParams {
	return models.ApprovalParams{
		Action:       models.ActionType(r.Action),
		Comment:      r.Comment,
		TargetUsers:  r.TargetUsers,
		RejectToNode: r.RejectToNode,
	}
}

// SaveMatrixRequest represents the request body for replacing a definition's
// permission matrix. The key comes from the URL.
type SaveMatrixRequest struct {
	Name   string                   `json:"name"   validate:"required"`
	Fields []models.FieldPermission `json:"fields" validate:"required,min=1,dive"`
}

// Definition builds the definition the matrix service persists.
func (r SaveMatrixRequest) Definition(key string) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		Key:    key,
		Name:   r.Name,
		Fields: r.Fields,
	}
}
