package memory

import (
	"time"

	"github.com/bigbit/approvalflow/pkg/models"
)

// Fixture data mirroring the demo office-automation dataset: two workflow
// definitions with per-role field permissions, and a handful of tasks in
// different queues.

func fixtureDefinitions() []*models.WorkflowDefinition {
	return []*models.WorkflowDefinition{
		{
			Key:  "design_input_review",
			Name: "设计输入评审",
			Fields: []models.FieldPermission{
				{FieldKey: "projectCode", FieldName: "项目编号", FieldType: "input", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "projectName", FieldName: "项目名称", FieldType: "input", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "designContent", FieldName: "设计内容", FieldType: "textarea", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "reviewOpinion", FieldName: "评审意见", FieldType: "textarea", Initiator: models.PermissionHidden, Reviewer: models.PermissionEditable, Approver: models.PermissionReadonly},
				{FieldKey: "approvalResult", FieldName: "审批结果", FieldType: "select", Initiator: models.PermissionHidden, Reviewer: models.PermissionHidden, Approver: models.PermissionEditable},
			},
		},
		{
			Key:  "project_change",
			Name: "项目变更申请",
			Fields: []models.FieldPermission{
				{FieldKey: "projectCode", FieldName: "项目编号", FieldType: "input", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "changeType", FieldName: "变更类型", FieldType: "select", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "changeReason", FieldName: "变更原因", FieldType: "textarea", Initiator: models.PermissionEditable, Reviewer: models.PermissionReadonly, Approver: models.PermissionReadonly},
				{FieldKey: "impact", FieldName: "影响分析", FieldType: "textarea", Initiator: models.PermissionEditable, Reviewer: models.PermissionEditable, Approver: models.PermissionReadonly},
			},
		},
	}
}

func fixtureBundles() []*models.TaskBundle {
	createTime := time.Date(2024, 12, 24, 10, 0, 0, 0, time.Local)
	dueDate := time.Date(2024, 12, 26, 18, 0, 0, 0, time.Local)
	submitTime := time.Date(2024, 12, 24, 9, 30, 0, 0, time.Local)

	return []*models.TaskBundle{
		{
			Task: &models.Task{
				ID:                  "task-001",
				ProcessInstanceID:   "proc-001",
				ProcessDefinitionID: "design_input_review:1:1",
				ProcessName:         "设计输入评审",
				TaskName:            "技术负责人审核",
				TaskDefinitionKey:   "techReview",
				FormKey:             "design_input_review",
				Status:              models.TaskStatusPending,
				Priority:            models.PriorityHigh,
				Initiator:           models.UserRef{ID: "user-003", Name: "王五", Department: "研发部"},
				Assignee:            &models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
				CreatedAt:           createTime,
				DueDate:             &dueDate,
			},
			FormSchema: &models.FormSchema{
				Key:   "design_input_review",
				Title: "设计输入评审",
				Fields: []models.SchemaField{
					{Key: "projectCode", Title: "项目编号", Kind: models.FieldText, Required: true},
					{Key: "projectName", Title: "项目名称", Kind: models.FieldText, Required: true},
					{Key: "designContent", Title: "设计内容", Kind: models.FieldTextarea, Required: true, MinLength: 10},
					{Key: "reviewOpinion", Title: "评审意见", Kind: models.FieldTextarea},
					{Key: "approvalResult", Title: "审批结果", Kind: models.FieldSelect, Options: []models.FieldOption{
						{Label: "通过", Value: "pass"},
						{Label: "不通过", Value: "fail"},
					}},
				},
			},
			Nodes: []*models.ProcessNode{
				{ID: "start", Name: "提交申请", Type: models.NodeTypeStart, Status: models.NodeStatusCompleted, Assignee: "王五", CompletedAt: &submitTime},
				{ID: "techReview", Name: "技术负责人审核", Type: models.NodeTypeUserTask, Status: models.NodeStatusActive, Assignee: "管理员"},
				{ID: "chiefApproval", Name: "总工审批", Type: models.NodeTypeUserTask, Status: models.NodeStatusPending},
				{ID: "end", Name: "归档", Type: models.NodeTypeEnd, Status: models.NodeStatusPending},
			},
			Records: []*models.ApprovalRecord{
				{
					ID:        "record-001",
					Operator:  models.UserRef{ID: "user-003", Name: "王五", Department: "研发部"},
					Action:    models.ActionSubmit,
					Timestamp: submitTime,
					NodeName:  "提交申请",
					Comment:   "请审核设计输入材料。",
				},
			},
			UserOptions: []models.UserOption{
				{ID: "user-002", Name: "李工", Department: "技术部"},
				{ID: "user-004", Name: "李四", Department: "采购部"},
				{ID: "user-005", Name: "赵六", Department: "项目部"},
			},
			NodeOptions: []models.NodeOption{
				{ID: "start", Name: "提交申请"},
			},
		},
		{
			Task: &models.Task{
				ID:                  "task-002",
				ProcessInstanceID:   "proc-002",
				ProcessDefinitionID: "purchase_contract:1:1",
				ProcessName:         "采购合同审批",
				TaskName:            "部门负责人审批",
				TaskDefinitionKey:   "deptApproval",
				Status:              models.TaskStatusPending,
				Priority:            models.PriorityMedium,
				Initiator:           models.UserRef{ID: "user-004", Name: "李四", Department: "采购部"},
				Assignee:            &models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
				CreatedAt:           time.Date(2024, 12, 23, 14, 30, 0, 0, time.Local),
			},
			Nodes: []*models.ProcessNode{
				{ID: "start", Name: "提交申请", Type: models.NodeTypeStart, Status: models.NodeStatusCompleted, Assignee: "李四"},
				{ID: "deptApproval", Name: "部门负责人审批", Type: models.NodeTypeUserTask, Status: models.NodeStatusActive, Assignee: "管理员"},
				{ID: "end", Name: "归档", Type: models.NodeTypeEnd, Status: models.NodeStatusPending},
			},
			Records: []*models.ApprovalRecord{
				{
					ID:        "record-101",
					Operator:  models.UserRef{ID: "user-004", Name: "李四", Department: "采购部"},
					Action:    models.ActionSubmit,
					Timestamp: time.Date(2024, 12, 23, 14, 30, 0, 0, time.Local),
					NodeName:  "提交申请",
				},
			},
			UserOptions: []models.UserOption{
				{ID: "user-002", Name: "李工", Department: "技术部"},
			},
		},
		{
			Task: &models.Task{
				ID:                  "task-done-001",
				ProcessInstanceID:   "proc-done-001",
				ProcessDefinitionID: "design_input_review:1:1",
				ProcessName:         "设计输入评审",
				TaskName:            "技术负责人审核",
				TaskDefinitionKey:   "techReview",
				Status:              models.TaskStatusApproved,
				Priority:            models.PriorityHigh,
				Initiator:           models.UserRef{ID: "user-006", Name: "张三", Department: "研发部"},
				CreatedAt:           time.Date(2024, 12, 20, 10, 0, 0, 0, time.Local),
			},
			Nodes: []*models.ProcessNode{
				{ID: "start", Name: "提交申请", Type: models.NodeTypeStart, Status: models.NodeStatusCompleted, Assignee: "张三"},
				{ID: "techReview", Name: "技术负责人审核", Type: models.NodeTypeUserTask, Status: models.NodeStatusCompleted, Assignee: "管理员"},
				{ID: "end", Name: "归档", Type: models.NodeTypeEnd, Status: models.NodeStatusCompleted},
			},
			Records: []*models.ApprovalRecord{
				{
					ID:        "record-201",
					Operator:  models.UserRef{ID: "user-006", Name: "张三", Department: "研发部"},
					Action:    models.ActionSubmit,
					Timestamp: time.Date(2024, 12, 20, 10, 0, 0, 0, time.Local),
					NodeName:  "提交申请",
				},
				{
					ID:              "record-202",
					Operator:        models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
					Action:          models.ActionApprove,
					Timestamp:       time.Date(2024, 12, 20, 15, 20, 0, 0, time.Local),
					NodeName:        "技术负责人审核",
					Comment:         "已审核，同意。",
					DurationMinutes: 320,
				},
			},
		},
		{
			Task: &models.Task{
				ID:                  "task-init-001",
				ProcessInstanceID:   "proc-init-001",
				ProcessDefinitionID: "expense_claim:1:1",
				ProcessName:         "费用报销",
				TaskName:            "财务审核",
				TaskDefinitionKey:   "financeReview",
				Status:              models.TaskStatusPending,
				Priority:            models.PriorityMedium,
				Initiator:           models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
				Assignee:            &models.UserRef{ID: "user-008", Name: "财务小周", Department: "财务部"},
				CreatedAt:           time.Date(2024, 12, 23, 9, 0, 0, 0, time.Local),
			},
			Nodes: []*models.ProcessNode{
				{ID: "start", Name: "提交申请", Type: models.NodeTypeStart, Status: models.NodeStatusCompleted, Assignee: "管理员"},
				{ID: "financeReview", Name: "财务审核", Type: models.NodeTypeUserTask, Status: models.NodeStatusActive, Assignee: "财务小周"},
				{ID: "end", Name: "归档", Type: models.NodeTypeEnd, Status: models.NodeStatusPending},
			},
			Records: []*models.ApprovalRecord{
				{
					ID:        "record-301",
					Operator:  models.UserRef{ID: "user-001", Name: "管理员", Department: "技术部"},
					Action:    models.ActionSubmit,
					Timestamp: time.Date(2024, 12, 23, 9, 0, 0, 0, time.Local),
					NodeName:  "提交申请",
				},
			},
		},
	}
}
