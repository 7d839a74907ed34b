package engine

import "sync"

// Gate serializes actions per task. A submission that arrives while another
// action on the same task is still committing is rejected outright; nothing
// is queued. The caller re-submits against the post-commit state, where the
// preconditions are checked again.
type Gate struct {
	mu       sync.Mutex
	inflight map[string]bool
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{inflight: make(map[string]bool)}
}

// TryAcquire marks the task busy. It returns false if an action is already
// in flight for the task.
func (g *Gate) TryAcquire(taskID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[taskID] {
		return false
	}

	g.inflight[taskID] = true

	return true
}

// Release clears the busy mark once the action has run to completion,
// whether it succeeded or failed.
func (g *Gate) Release(taskID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inflight, taskID)
}
