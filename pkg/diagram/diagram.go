// Package diagram renders a process definition's node list as a linear
// progress strip. Only the simplified linear mode is implemented; full graph
// rendering with gateway branching is declared but not built.
package diagram

import (
	"errors"

	"github.com/bigbit/approvalflow/pkg/models"
)

// ErrFullModeNotImplemented marks the unbuilt graph rendering mode. Callers
// fall back to the simplified strip.
var ErrFullModeNotImplemented = errors.New("full diagram rendering is not implemented")

var statusLabels = map[models.NodeStatus]string{
	models.NodeStatusCompleted: "已完成",
	models.NodeStatusActive:    "进行中",
	models.NodeStatusPending:   "待处理",
	models.NodeStatusSkipped:   "已跳过",
}

// StatusLabel returns the display label of a node status. Unknown statuses
// render as the raw value.
func StatusLabel(status models.NodeStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}

	return string(status)
}

// NodeView is one node of the rendered strip.
type NodeView struct {
	Node        models.ProcessNode `json:"node"`
	StatusLabel string             `json:"status_label"`
	Active      bool               `json:"active"`
	// ConnectorDone marks the connector entering this node as traversed.
	// The first node has no connector and is always false.
	ConnectorDone bool `json:"connector_done"`
}

// Strip is the simplified linear rendering of a process.
type Strip struct {
	Nodes    []NodeView `json:"nodes"`
	Progress int        `json:"progress"` // percent, 0..100
}

// ActiveIndex locates the active node. An explicit id wins over the status
// scan, so callers can highlight a node the viewer navigated to. Returns -1
// when nothing matches.
func ActiveIndex(nodes []*models.ProcessNode, activeNodeID string) int {
	if activeNodeID != "" {
		for i, node := range nodes {
			if node.ID == activeNodeID {
				return i
			}
		}

		return -1
	}

	return models.ActiveNodeIndex(nodes)
}

// Progress computes the completion percentage: position of the active node
// over the total node count, clamped to zero when no node is active yet.
// A fully terminated process with no active node reports zero on purpose;
// callers use the task status, not the diagram, to show completion.
func Progress(nodes []*models.ProcessNode, activeIndex int) int {
	if len(nodes) == 0 {
		return 0
	}

	percent := (activeIndex + 1) * 100 / len(nodes)
	if percent < 0 {
		return 0
	}

	if percent > 100 {
		return 100
	}

	return percent
}

// RenderStrip builds the simplified linear view. A connector counts as
// traversed when it sits at or before the active node, or when the node it
// leaves from is completed, so skipped nodes do not break the line.
func RenderStrip(nodes []*models.ProcessNode, activeNodeID string) Strip {
	activeIndex := ActiveIndex(nodes, activeNodeID)
	views := make([]NodeView, 0, len(nodes))

	for i, node := range nodes {
		active := node.Status == models.NodeStatusActive || (activeNodeID != "" && node.ID == activeNodeID)
		connectorDone := i > 0 && (i <= activeIndex || nodes[i-1].Status == models.NodeStatusCompleted)

		views = append(views, NodeView{
			Node:          *node,
			StatusLabel:   StatusLabel(node.Status),
			Active:        active,
			ConnectorDone: connectorDone,
		})
	}

	return Strip{Nodes: views, Progress: Progress(nodes, activeIndex)}
}

// RenderGraph is the full rendering mode with explicit edges and gateway
// branches. Not implemented.
func RenderGraph(nodes []*models.ProcessNode, edges []models.ProcessEdge) (Strip, error) {
	return Strip{}, ErrFullModeNotImplemented
}
