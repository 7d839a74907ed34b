package models

// TaskBundle is everything a task-handling screen needs in one load: the
// task itself, the form schema, the owned node sequence and timeline, and
// the selectable targets for forward/countersign/reject.
type TaskBundle struct {
	Task        *Task             `json:"task"`
	FormSchema  *FormSchema       `json:"form_schema,omitempty"`
	Nodes       []*ProcessNode    `json:"nodes"`
	Records     []*ApprovalRecord `json:"records"`
	UserOptions []UserOption      `json:"user_options,omitempty"`
	NodeOptions []NodeOption      `json:"node_options,omitempty"`
}

// RejectableNodes lists the nodes preceding the active one, in order. These
// are the valid reject targets.
func (b *TaskBundle) RejectableNodes() []NodeOption {
	active := ActiveNodeIndex(b.Nodes)
	if active <= 0 {
		return nil
	}

	options := make([]NodeOption, 0, active)
	for _, n := range b.Nodes[:active] {
		if n.Type == NodeTypeGateway || n.Type == NodeTypeServiceTask {
			continue
		}

		options = append(options, NodeOption{ID: n.ID, Name: n.Name})
	}

	return options
}
