package observability

import (
	"fmt"
	"time"
)

// EventRecorder turns workspace notifications into Events on an EventLog.
// It satisfies core.EventLogger.
type EventRecorder struct {
	log EventLog
	now func() time.Time
}

// NewEventRecorder creates an EventRecorder writing to log. A nil now uses
// time.Now.
func NewEventRecorder(log EventLog, now func() time.Time) *EventRecorder {
	if now == nil {
		now = time.Now
	}
	return &EventRecorder{log: log, now: now}
}

var eventMessages = map[string]string{
	"task.created":         "task created",
	"task.updated":         "task updated",
	"task.deleted":         "task deleted",
	"task.reordered":       "task reordered",
	"task.reorder_ignored": "reorder ignored",
	"user.added":           "user added",
	"user.updated":         "user updated",
	"user.removed":         "user removed",
	"tag.added":            "tag added",
	"tag.removed":          "tag removed",
	"field.added":          "custom field added",
	"field.removed":        "custom field removed",
	"timer.started":        "timer started",
	"timer.stopped":        "timer stopped",
	"timer.discarded":      "timer discarded",
}

// LogEvent writes one event. Ignored requests and discarded timers are
// recorded at WARN level.
func (r *EventRecorder) LogEvent(eventType string, data map[string]any) error {
	msg, ok := eventMessages[eventType]
	if !ok {
		msg = eventType
	}
	level := "INFO"
	switch eventType {
	case "task.reorder_ignored", "timer.discarded":
		level = "WARN"
	}

	if err := r.log.Write(Event{
		Time:    r.now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: msg,
		Data:    data,
	}); err != nil {
		return fmt.Errorf("recording %s: %w", eventType, err)
	}
	return nil
}
