package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TasksCreated    int                      `json:"tasks_created"`
	TasksUpdated    int                      `json:"tasks_updated"`
	TasksDeleted    int                      `json:"tasks_deleted"`
	TimerSessions   int                      `json:"timer_sessions"`
	TimersDiscarded int                      `json:"timers_discarded"`
	TimeLogged      time.Duration            `json:"time_logged"`
	TimeByTask      map[string]time.Duration `json:"time_by_task"`
	EventCount      int                      `json:"event_count"`
	OldestEvent     *time.Time               `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time               `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into
// metrics. A task.deleted event counts every task in its subtree.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{TimeByTask: make(map[string]time.Duration)}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.updated":
			m.TasksUpdated++
		case "task.deleted":
			m.TasksDeleted += deletedCount(event)
		case "timer.stopped":
			m.TimerSessions++
			if secs, ok := event.Data["credited_s"].(float64); ok && secs > 0 {
				d := time.Duration(secs * float64(time.Second))
				m.TimeLogged += d
				m.TimeByTask[event.TaskID()] += d
			}
		case "timer.discarded":
			m.TimersDiscarded++
		}
	}

	return m, nil
}

// deletedCount reads the subtree size of a task.deleted event. Events decoded
// from JSON carry numbers as float64.
func deletedCount(event Event) int {
	switch n := event.Data["count"].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 1
	}
}

// ParseSince parses a window like "7d" or "24h" into the time that far
// before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
