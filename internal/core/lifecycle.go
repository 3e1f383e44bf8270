package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// NewTask holds the caller-supplied fields of a task being created. Zero
// Status and Priority default to To Do and Medium.
type NewTask struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	AssigneeID   string            `json:"assignee,omitempty"`
	Status       models.Status     `json:"status,omitempty"`
	Priority     models.Priority   `json:"priority,omitempty"`
	TagIDs       []string          `json:"tags,omitempty"`
	DueDate      *time.Time        `json:"due_date,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	ParentID     string            `json:"parent,omitempty"`
}

// TaskLifecycle creates, updates and deletes tasks in a registry.
type TaskLifecycle struct {
	reg *Registry
	now func() time.Time
}

// NewTaskLifecycle creates a TaskLifecycle over reg. A nil now uses time.Now.
func NewTaskLifecycle(reg *Registry, now func() time.Time) *TaskLifecycle {
	if now == nil {
		now = time.Now
	}
	return &TaskLifecycle{reg: reg, now: now}
}

// Create adds a task with a fresh ID, stamped with the current time and
// actor, and places it first in the task order.
func (l *TaskLifecycle) Create(in NewTask, actorID string) (models.Task, error) {
	t := models.Task{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		AssigneeID:   in.AssigneeID,
		Status:       in.Status,
		Priority:     in.Priority,
		TagIDs:       dedupe(in.TagIDs),
		DueDate:      in.DueDate,
		DateAdded:    l.now(),
		AddedBy:      actorID,
		CustomFields: make(map[string]string, len(in.CustomFields)),
		ParentID:     in.ParentID,
	}
	for k, v := range in.CustomFields {
		t.CustomFields[k] = v
	}
	if t.Status == "" {
		t.Status = models.StatusToDo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if err := validateTask(t); err != nil {
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}
	if err := l.reg.checkTaskRefs(t); err != nil {
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}

	t.ID = l.reg.ids.NewID(TaskIDPrefix)
	l.reg.tasks = append([]models.Task{t}, l.reg.tasks...)
	return t.Clone(), nil
}

// Update replaces the stored task with the same ID. DateAdded and AddedBy are
// history, TimeLogged belongs to the timer and moving a task to another
// parent is not supported, so those four fields keep their stored values.
func (l *TaskLifecycle) Update(t models.Task) (models.Task, error) {
	i := l.reg.taskIndex(t.ID)
	if i < 0 {
		return models.Task{}, fmt.Errorf("updating task: %w", notFound("task", t.ID))
	}
	stored := l.reg.tasks[i]

	next := t.Clone()
	next.Name = strings.TrimSpace(next.Name)
	next.TagIDs = dedupe(next.TagIDs)
	next.DateAdded = stored.DateAdded
	next.AddedBy = stored.AddedBy
	next.TimeLogged = stored.TimeLogged
	next.ParentID = stored.ParentID
	if err := validateTask(next); err != nil {
		return models.Task{}, fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	if err := l.reg.checkTaskRefs(next); err != nil {
		return models.Task{}, fmt.Errorf("updating task %s: %w", t.ID, err)
	}

	l.reg.tasks[i] = next
	return next.Clone(), nil
}

// Delete removes a task and every descendant in one step and returns the
// removed IDs in task order. The descendant set is grown by repeated passes
// over the task list until a pass adds nothing, so depth is unbounded.
func (l *TaskLifecycle) Delete(taskID string) ([]string, error) {
	if l.reg.taskIndex(taskID) < 0 {
		return nil, fmt.Errorf("deleting task: %w", notFound("task", taskID))
	}

	doomed := map[string]bool{taskID: true}
	for grew := true; grew; {
		grew = false
		for _, t := range l.reg.tasks {
			if t.ParentID != "" && doomed[t.ParentID] && !doomed[t.ID] {
				doomed[t.ID] = true
				grew = true
			}
		}
	}

	kept := make([]models.Task, 0, len(l.reg.tasks)-len(doomed))
	deleted := make([]string, 0, len(doomed))
	for _, t := range l.reg.tasks {
		if doomed[t.ID] {
			deleted = append(deleted, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	l.reg.tasks = kept
	return deleted, nil
}

func validateTask(t models.Task) error {
	if t.Name == "" {
		return invalidOp("validating task", "name is required")
	}
	if !t.Status.IsValid() {
		return invalidOp("validating task", "invalid status %q", t.Status)
	}
	if !t.Priority.IsValid() {
		return invalidOp("validating task", "invalid priority %q", t.Priority)
	}
	return nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
