// Package policy decides which operations an actor may perform on a task.
// It is a pure lookup over the actor id and the task's creator/assignee;
// it performs no I/O and never mutates anything.
package policy

import (
	"github.com/hkaneko/taskboard/internal/model"
)

// Operation names a task operation subject to authorization.
type Operation string

// Operations gated by the policy.
const (
	OpCreate         Operation = "create"
	OpView           Operation = "view"
	OpUpdate         Operation = "update"
	OpToggleComplete Operation = "toggle-complete"
	OpReassign       Operation = "reassign"
	OpDelete         Operation = "delete"
)

// Authorize reports whether actorID may perform op on t.
//
// The rules: any authenticated actor may create; only the assignee may
// view, update, or toggle completion; only the creator may reassign;
// either creator or assignee may delete. Unknown operations are denied.
func Authorize(actorID string, t *model.Task, op Operation) bool {
	switch op {
	case OpCreate:
		return true
	case OpView, OpUpdate, OpToggleComplete:
		return actorID == t.AssigneeID
	case OpReassign:
		return actorID == t.CreatorID
	case OpDelete:
		return actorID == t.CreatorID || actorID == t.AssigneeID
	}
	return false
}
