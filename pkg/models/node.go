package models

import "time"

// NodeType represents the kind of step a process node is.
type NodeType string

const (
	NodeTypeStart       NodeType = "start"
	NodeTypeEnd         NodeType = "end"
	NodeTypeUserTask    NodeType = "userTask"
	NodeTypeGateway     NodeType = "gateway"
	NodeTypeServiceTask NodeType = "serviceTask"
)

// NodeStatus represents the progress state of a process node.
type NodeStatus string

const (
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusActive    NodeStatus = "active"
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// ProcessNode is a discrete step in a process. A non-terminal task has
// exactly one node with status active; a terminal task has none.
type ProcessNode struct {
	ID          string     `json:"id"   validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Type        NodeType   `json:"type" validate:"required"`
	Status      NodeStatus `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProcessEdge is an explicit connection between two nodes, used by the full
// graph rendering mode.
type ProcessEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// ActiveNodeIndex returns the index of the single active node, or -1 if none.
func ActiveNodeIndex(nodes []*ProcessNode) int {
	for i, n := range nodes {
		if n.Status == NodeStatusActive {
			return i
		}
	}

	return -1
}
