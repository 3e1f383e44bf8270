package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// Event types written by Workspace.
const (
	EventTaskCreated        = "task.created"
	EventTaskUpdated        = "task.updated"
	EventTaskDeleted        = "task.deleted"
	EventTaskReordered      = "task.reordered"
	EventTaskReorderIgnored = "task.reorder_ignored"
	EventUserAdded          = "user.added"
	EventUserUpdated        = "user.updated"
	EventUserRemoved        = "user.removed"
	EventTagAdded           = "tag.added"
	EventTagRemoved         = "tag.removed"
	EventFieldAdded         = "field.added"
	EventFieldRemoved       = "field.removed"
	EventTimerStarted       = "timer.started"
	EventTimerStopped       = "timer.stopped"
	EventTimerDiscarded     = "timer.discarded"
)

// Workspace is the mutation and query API over one registry, one timer and
// the acting user. Every call is serialized, so no caller ever observes a
// half-applied mutation.
type Workspace interface {
	CreateTask(in NewTask) (models.Task, error)
	UpdateTask(t models.Task) (models.Task, error)
	DeleteTask(taskID string) ([]string, error)
	Task(taskID string) (models.Task, error)
	Tasks() []models.Task

	AddUser(in UserInput) (models.User, error)
	UpdateUser(u models.User) (models.User, error)
	RemoveUser(userID string) error
	Users() []models.User

	AddTag(in TagInput) (models.Tag, error)
	RemoveTag(tagID string) error
	Tags() []models.Tag

	AddCustomField(name string) (models.CustomField, error)
	RemoveCustomField(fieldID string) error
	CustomFields() []models.CustomField

	ToggleTimer(taskID string) (TimerTransition, error)
	StopTimer() (TimerTransition, error)
	ActiveTimer() (models.ActiveTimer, bool)
	Elapsed() time.Duration

	ReorderSiblings(draggedID, targetID string) bool

	TotalLoggedTime(taskID string) (time.Duration, error)
	VisibleRows(q Query) ([]Row, error)
	Columns() []Column
	Stats() Stats

	Snapshot() models.Snapshot
	Restore(snap models.Snapshot) error

	SetActor(userID string) error
	Actor() string
}

type workspace struct {
	mu        sync.Mutex
	reg       *Registry
	lifecycle *TaskLifecycle
	timer     *TimerController
	events    EventLogger
	now       func() time.Time
	actor     string
}

// NewWorkspace wraps reg. The actor starts as the first user, if any. A nil
// events discards events; a nil now uses time.Now.
func NewWorkspace(reg *Registry, events EventLogger, now func() time.Time) Workspace {
	if now == nil {
		now = time.Now
	}
	w := &workspace{
		reg:       reg,
		lifecycle: NewTaskLifecycle(reg, now),
		timer:     NewTimerController(reg, reg, now),
		events:    events,
		now:       now,
	}
	w.actor = w.firstUser()
	return w
}

func (w *workspace) log(eventType string, data map[string]any) {
	if w.events == nil {
		return
	}
	if w.actor != "" {
		data["actor"] = w.actor
	}
	// Event log failures must not fail the mutation that already happened.
	_ = w.events.LogEvent(eventType, data)
}

func (w *workspace) firstUser() string {
	if users := w.reg.Users(); len(users) > 0 {
		return users[0].ID
	}
	return ""
}

// --- Tasks ---

func (w *workspace) CreateTask(in NewTask) (models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.lifecycle.Create(in, w.actor)
	if err != nil {
		return models.Task{}, err
	}
	w.log(EventTaskCreated, map[string]any{"task_id": t.ID, "name": t.Name, "parent": t.ParentID})
	return t, nil
}

func (w *workspace) UpdateTask(t models.Task) (models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	updated, err := w.lifecycle.Update(t)
	if err != nil {
		return models.Task{}, err
	}
	w.log(EventTaskUpdated, map[string]any{
		"task_id":  updated.ID,
		"status":   string(updated.Status),
		"priority": string(updated.Priority),
	})
	return updated, nil
}

// DeleteTask removes the task and its subtree. If the running timer belongs
// to a removed task it goes idle without crediting anything.
func (w *workspace) DeleteTask(taskID string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	active, running := w.timer.Active()
	deleted, err := w.lifecycle.Delete(taskID)
	if err != nil {
		return nil, err
	}
	w.log(EventTaskDeleted, map[string]any{"task_id": taskID, "deleted": deleted, "count": len(deleted)})
	if running && w.timer.Discard(deleted) {
		w.log(EventTimerDiscarded, map[string]any{"task_id": active.TaskID})
	}
	return deleted, nil
}

func (w *workspace) Task(taskID string) (models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.Task(taskID)
}

func (w *workspace) Tasks() []models.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.Tasks()
}

// --- Users ---

func (w *workspace) AddUser(in UserInput) (models.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	u, err := w.reg.AddUser(in)
	if err != nil {
		return models.User{}, err
	}
	if w.actor == "" {
		w.actor = u.ID
	}
	w.log(EventUserAdded, map[string]any{"user_id": u.ID, "name": u.Name})
	return u, nil
}

func (w *workspace) UpdateUser(u models.User) (models.User, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	updated, err := w.reg.UpdateUser(u)
	if err != nil {
		return models.User{}, err
	}
	w.log(EventUserUpdated, map[string]any{"user_id": updated.ID, "name": updated.Name})
	return updated, nil
}

// RemoveUser deletes the user and unassigns its tasks. Removing the acting
// user hands the role to the first remaining user.
func (w *workspace) RemoveUser(userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reg.RemoveUser(userID); err != nil {
		return err
	}
	w.log(EventUserRemoved, map[string]any{"user_id": userID})
	if w.actor == userID {
		w.actor = w.firstUser()
	}
	return nil
}

func (w *workspace) Users() []models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.Users()
}

// --- Tags ---

func (w *workspace) AddTag(in TagInput) (models.Tag, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tag, err := w.reg.AddTag(in)
	if err != nil {
		return models.Tag{}, err
	}
	w.log(EventTagAdded, map[string]any{"tag_id": tag.ID, "name": tag.Name})
	return tag, nil
}

func (w *workspace) RemoveTag(tagID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reg.RemoveTag(tagID); err != nil {
		return err
	}
	w.log(EventTagRemoved, map[string]any{"tag_id": tagID})
	return nil
}

func (w *workspace) Tags() []models.Tag {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.Tags()
}

// --- Custom fields ---

func (w *workspace) AddCustomField(name string) (models.CustomField, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.reg.AddCustomField(name)
	if err != nil {
		return models.CustomField{}, err
	}
	w.log(EventFieldAdded, map[string]any{"field_id": f.ID, "name": f.Name})
	return f, nil
}

func (w *workspace) RemoveCustomField(fieldID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reg.RemoveCustomField(fieldID); err != nil {
		return err
	}
	w.log(EventFieldRemoved, map[string]any{"field_id": fieldID})
	return nil
}

func (w *workspace) CustomFields() []models.CustomField {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.CustomFields()
}

// --- Timer ---

func (w *workspace) ToggleTimer(taskID string) (TimerTransition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tr, err := w.timer.Toggle(taskID)
	if err != nil {
		return TimerTransition{}, err
	}
	w.logTransition(tr)
	return tr, nil
}

func (w *workspace) StopTimer() (TimerTransition, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tr, err := w.timer.Stop()
	if err != nil {
		return TimerTransition{}, err
	}
	w.logTransition(tr)
	return tr, nil
}

func (w *workspace) logTransition(tr TimerTransition) {
	if tr.Stopped != "" {
		w.log(EventTimerStopped, map[string]any{
			"task_id":    tr.Stopped,
			"credited_s": tr.Credited.Seconds(),
		})
	}
	if tr.Started != "" {
		w.log(EventTimerStarted, map[string]any{"task_id": tr.Started})
	}
}

func (w *workspace) ActiveTimer() (models.ActiveTimer, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timer.Active()
}

func (w *workspace) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timer.Elapsed()
}

// --- Ordering ---

// ReorderSiblings moves dragged before target when both share a parent.
// Anything else is ignored; the reason goes to the event log.
func (w *workspace) ReorderSiblings(draggedID, targetID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reg.CheckReorder(draggedID, targetID); err != nil {
		w.log(EventTaskReorderIgnored, map[string]any{
			"dragged": draggedID,
			"target":  targetID,
			"reason":  err.Error(),
		})
		return false
	}
	w.reg.Reorder(draggedID, targetID)
	w.log(EventTaskReordered, map[string]any{"dragged": draggedID, "target": targetID})
	return true
}

// --- Queries ---

func (w *workspace) TotalLoggedTime(taskID string) (time.Duration, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return TotalTime(taskID, w.reg.Tasks())
}

func (w *workspace) VisibleRows(q Query) ([]Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return VisibleRows(w.reg.Tasks(), w.catalog(), q)
}

func (w *workspace) Columns() []Column {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog().Columns()
}

func (w *workspace) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ComputeStats(w.reg.Tasks(), w.reg.Users(), w.now())
}

func (w *workspace) catalog() *Catalog {
	return NewCatalog(w.reg.Users(), w.reg.Tags(), w.reg.CustomFields())
}

// --- Snapshots and actor ---

func (w *workspace) Snapshot() models.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reg.Snapshot()
}

// Restore replaces all state with snap. A running timer whose task is gone
// afterwards is discarded, and an actor who is gone is replaced.
func (w *workspace) Restore(snap models.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.reg.Restore(snap); err != nil {
		return err
	}
	if active, ok := w.timer.Active(); ok {
		if _, err := w.reg.Task(active.TaskID); err != nil {
			w.timer.Discard([]string{active.TaskID})
			w.log(EventTimerDiscarded, map[string]any{"task_id": active.TaskID})
		}
	}
	if _, err := w.reg.User(w.actor); err != nil {
		w.actor = w.firstUser()
	}
	return nil
}

func (w *workspace) SetActor(userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.reg.User(userID); err != nil {
		return fmt.Errorf("setting actor: %w", err)
	}
	w.actor = userID
	return nil
}

func (w *workspace) Actor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actor
}
