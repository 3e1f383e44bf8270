package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// seqIDs implements IDGenerator with predictable IDs: U-1, T-2, ...
type seqIDs struct {
	n int
}

func (s *seqIDs) NewID(prefix string) string {
	s.n++
	return fmt.Sprintf("%s%d", prefix, s.n)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingLogger implements EventLogger and keeps every event in memory.
type recordingLogger struct {
	events []recordedEvent
}

type recordedEvent struct {
	Type string
	Data map[string]any
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.events = append(l.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (l *recordingLogger) types() []string {
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

// mkTask builds a task literal for pure-function tests.
func mkTask(id, parent string, logged time.Duration) models.Task {
	return models.Task{
		ID:           id,
		Name:         id,
		Status:       models.StatusToDo,
		Priority:     models.PriorityMedium,
		TimeLogged:   logged,
		ParentID:     parent,
		CustomFields: map[string]string{},
	}
}

// mustCreate creates a task through the lifecycle or fails the test.
func mustCreate(t *testing.T, l *TaskLifecycle, in NewTask, actor string) models.Task {
	t.Helper()
	task, err := l.Create(in, actor)
	if err != nil {
		t.Fatalf("Create(%q) error: %v", in.Name, err)
	}
	return task
}

func taskIDs(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Task.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
