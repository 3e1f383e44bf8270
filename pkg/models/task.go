package models

import "time"

// Status represents the workflow state of a task.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusDone       Status = "Done"
)

// ValidStatuses returns all statuses in workflow order.
func ValidStatuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusInReview, StatusDone}
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the workflow position of the status, or -1 if unknown.
func (s Status) Rank() int {
	for i, valid := range ValidStatuses() {
		if s == valid {
			return i
		}
	}
	return -1
}

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// ValidPriorities returns all priorities from least to most urgent.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the urgency of the priority (Low=0), or -1 if unknown.
func (p Priority) Rank() int {
	for i, valid := range ValidPriorities() {
		if p == valid {
			return i
		}
	}
	return -1
}

// Task is a unit of work, possibly nested under another task.
//
// Users and tags are referenced by ID. AddedBy is historical and may point at
// a user that no longer exists. TimeLogged holds self time only; time logged
// against descendants is aggregated on demand.
type Task struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	AssigneeID   string            `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Status       Status            `yaml:"status" json:"status"`
	Priority     Priority          `yaml:"priority" json:"priority"`
	TagIDs       []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	DueDate      *time.Time        `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	DateAdded    time.Time         `yaml:"date_added" json:"date_added"`
	AddedBy      string            `yaml:"added_by" json:"added_by"`
	TimeLogged   time.Duration     `yaml:"time_logged" json:"time_logged"`
	CustomFields map[string]string `yaml:"custom_fields,omitempty" json:"custom_fields,omitempty"`
	ParentID     string            `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// IsRoot reports whether the task has no parent.
func (t Task) IsRoot() bool {
	return t.ParentID == ""
}

// HasTag reports whether the tag ID is in the task's tag set.
func (t Task) HasTag(tagID string) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (t Task) Clone() Task {
	c := t
	if t.TagIDs != nil {
		c.TagIDs = append([]string(nil), t.TagIDs...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.CustomFields = make(map[string]string, len(t.CustomFields))
	for k, v := range t.CustomFields {
		c.CustomFields[k] = v
	}
	return c
}

// ActiveTimer records which task, if any, is accumulating elapsed time.
type ActiveTimer struct {
	TaskID    string    `yaml:"task_id" json:"task_id"`
	StartTime time.Time `yaml:"start_time" json:"start_time"`
}
