package models

// UserRef identifies a user acting on or assigned to a task.
type UserRef struct {
	ID         string `json:"id"   validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// UserOption is a selectable user for forward/countersign targets.
type UserOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// NodeOption is a selectable node for reject routing.
type NodeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session carries the acting user through engine and service calls.
// It is passed explicitly rather than read from ambient state, so tests
// can simulate multiple users against the same task.
type Session struct {
	User UserRef `json:"user" validate:"required"`
}

// Operator returns the session user as a timeline operator reference.
func (s Session) Operator() UserRef {
	return s.User
}
