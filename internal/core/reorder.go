package core

import "github.com/valter-silva-au/worktally/pkg/models"

// CheckReorder reports why moving dragged in front of target is not
// allowed, or nil if it is.
func (r *Registry) CheckReorder(draggedID, targetID string) error {
	di := r.taskIndex(draggedID)
	if di < 0 {
		return notFound("task", draggedID)
	}
	ti := r.taskIndex(targetID)
	if ti < 0 {
		return notFound("task", targetID)
	}
	if di == ti {
		return invalidOp("reordering tasks", "task %s cannot be moved relative to itself", draggedID)
	}
	if r.tasks[di].ParentID != r.tasks[ti].ParentID {
		return invalidOp("reordering tasks", "tasks %s and %s have different parents", draggedID, targetID)
	}
	return nil
}

// Reorder moves dragged to sit immediately before target in the task order.
// Both must share a parent; any other request leaves the order alone and
// returns false. Moving a task under a different parent is not supported.
func (r *Registry) Reorder(draggedID, targetID string) bool {
	if r.CheckReorder(draggedID, targetID) != nil {
		return false
	}
	di := r.taskIndex(draggedID)
	dragged := r.tasks[di]

	rest := make([]models.Task, 0, len(r.tasks))
	rest = append(rest, r.tasks[:di]...)
	rest = append(rest, r.tasks[di+1:]...)

	out := make([]models.Task, 0, len(r.tasks))
	for _, t := range rest {
		if t.ID == targetID {
			out = append(out, dragged)
		}
		out = append(out, t)
	}
	r.tasks = out
	return true
}
