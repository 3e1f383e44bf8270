package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	writeAll(t, log, []Event{
		{Time: base, Level: "INFO", Type: "task.created", Data: map[string]any{"task_id": "T-1"}},
		{Time: base.Add(time.Minute), Level: "INFO", Type: "task.created", Data: map[string]any{"task_id": "T-2", "parent": "T-1"}},
		{Time: base.Add(2 * time.Minute), Level: "INFO", Type: "task.updated", Data: map[string]any{"task_id": "T-1"}},
		{Time: base.Add(3 * time.Minute), Level: "INFO", Type: "timer.started", Data: map[string]any{"task_id": "T-1"}},
		{Time: base.Add(5 * time.Minute), Level: "INFO", Type: "timer.stopped", Data: map[string]any{"task_id": "T-1", "credited_s": 120.0}},
		{Time: base.Add(6 * time.Minute), Level: "INFO", Type: "timer.started", Data: map[string]any{"task_id": "T-2"}},
		{Time: base.Add(7 * time.Minute), Level: "INFO", Type: "timer.stopped", Data: map[string]any{"task_id": "T-2", "credited_s": 10.0}},
		{Time: base.Add(8 * time.Minute), Level: "INFO", Type: "timer.started", Data: map[string]any{"task_id": "T-2"}},
		{Time: base.Add(9 * time.Minute), Level: "INFO", Type: "timer.discarded", Data: map[string]any{"task_id": "T-2"}},
		{Time: base.Add(10 * time.Minute), Level: "INFO", Type: "task.deleted", Data: map[string]any{"task_id": "T-1", "count": 2.0}},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.TasksCreated != 2 {
		t.Errorf("TasksCreated = %d, want 2", m.TasksCreated)
	}
	if m.TasksUpdated != 1 {
		t.Errorf("TasksUpdated = %d, want 1", m.TasksUpdated)
	}
	if m.TasksDeleted != 2 {
		t.Errorf("TasksDeleted = %d, want 2", m.TasksDeleted)
	}
	if m.TimerSessions != 2 {
		t.Errorf("TimerSessions = %d, want 2", m.TimerSessions)
	}
	if m.TimersDiscarded != 1 {
		t.Errorf("TimersDiscarded = %d, want 1", m.TimersDiscarded)
	}
	if m.TimeLogged != 130*time.Second {
		t.Errorf("TimeLogged = %v, want 2m10s", m.TimeLogged)
	}
	if m.TimeByTask["T-1"] != 2*time.Minute {
		t.Errorf("TimeByTask[T-1] = %v, want 2m0s", m.TimeByTask["T-1"])
	}
	if m.TimeByTask["T-2"] != 10*time.Second {
		t.Errorf("TimeByTask[T-2] = %v, want 10s", m.TimeByTask["T-2"])
	}
	if m.EventCount != 10 {
		t.Errorf("EventCount = %d, want 10", m.EventCount)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", m.OldestEvent, base)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(10*time.Minute)) {
		t.Errorf("NewestEvent = %v, want %v", m.NewestEvent, base.Add(10*time.Minute))
	}
}

func TestMetricsCalculator_SinceFilter(t *testing.T) {
	log := NewMemoryEventLog()
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	writeAll(t, log, []Event{
		{Time: base, Type: "task.created"},
		{Time: base.Add(2 * time.Hour), Type: "task.created"},
		{Time: base.Add(3 * time.Hour), Type: "task.created"},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TasksCreated != 2 {
		t.Errorf("TasksCreated = %d, want 2", m.TasksCreated)
	}
}

func TestMetricsCalculator_Empty(t *testing.T) {
	m, err := NewMetricsCalculator(NewMemoryEventLog()).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("expected empty metrics, got %+v", m)
	}
	if m.TimeByTask == nil {
		t.Error("TimeByTask should be an empty map, not nil")
	}
}

func TestDeletedCount(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want int
	}{
		{"int from workspace", map[string]any{"count": 3}, 3},
		{"float from json", map[string]any{"count": 4.0}, 4},
		{"missing", nil, 1},
		{"wrong type", map[string]any{"count": "many"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deletedCount(Event{Data: tt.data}); got != tt.want {
				t.Errorf("deletedCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"7d", now.AddDate(0, 0, -7), false},
		{"24h", now.Add(-24 * time.Hour), false},
		{"0d", now, false},
		{"d", time.Time{}, true},
		{"3w", time.Time{}, true},
		{"xd", time.Time{}, true},
		{"-2d", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSince(tt.in, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSince(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
