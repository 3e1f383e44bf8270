package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert conditions.
const (
	ConditionOverdue          = "task_overdue"
	ConditionDueToday         = "task_due_today"
	ConditionTimerTooLong     = "timer_running_too_long"
	ConditionUrgentUnassigned = "urgent_task_unassigned"
)

// Alert represents a triggered alert condition about one task.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`

	TaskID   string     `json:"task_id"`
	TaskName string     `json:"task_name"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	// RunningFor is set on timer alerts.
	RunningFor time.Duration `json:"running_for,omitempty"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	// TimerHours flags a timer left running longer than this. Zero disables it.
	TimerHours       int  `yaml:"timer_hours" json:"timer_hours"`
	DueToday         bool `yaml:"due_today" json:"due_today"`
	UrgentUnassigned bool `yaml:"urgent_unassigned" json:"urgent_unassigned"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		TimerHours:       8,
		DueToday:         true,
		UrgentUnassigned: true,
	}
}

// TaskSource supplies the current tasks and the live timer. core.Workspace
// satisfies it.
type TaskSource interface {
	Tasks() []models.Task
	ActiveTimer() (models.ActiveTimer, bool)
}

// AlertEngine evaluates alert conditions against the current workspace.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine.
type alertEngine struct {
	tasks      TaskSource
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine. A nil now uses time.Now.
func NewAlertEngine(tasks TaskSource, thresholds AlertThresholds, now func() time.Time) AlertEngine {
	if now == nil {
		now = time.Now
	}
	return &alertEngine{
		tasks:      tasks,
		thresholds: thresholds,
		now:        now,
	}
}

// Evaluate checks all alert conditions, returning any triggered alerts
// ordered by severity, then by ID.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()
	tasks := ae.tasks.Tasks()

	var alerts []Alert
	alerts = append(alerts, ae.checkDueDates(tasks, now)...)
	if ae.thresholds.UrgentUnassigned {
		alerts = append(alerts, ae.checkUrgentUnassigned(tasks, now)...)
	}

	alerts = append(alerts, ae.checkLongTimer(tasks, now)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank(alerts[i].Severity), severityRank(alerts[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts, nil
}

// checkDueDates flags open tasks that are overdue or, when enabled, due today.
// Each task raises at most one alert. A task due earlier today is reported as
// due today while that alert is enabled and as overdue otherwise; the dashboard
// stats count it under both headings.
func (ae *alertEngine) checkDueDates(tasks []models.Task, now time.Time) []Alert {
	var alerts []Alert
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == models.StatusDone {
			continue
		}
		due := t.DueDate.In(now.Location())
		today := sameDay(due, now)
		switch {
		case due.Before(now) && !(today && ae.thresholds.DueToday):
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("overdue-%s", t.ID),
				Condition:   ConditionOverdue,
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("task %q was due %s", t.Name, due.Format("Jan 2")),
				TriggeredAt: now,
				TaskID:      t.ID,
				TaskName:    t.Name,
				DueDate:     t.DueDate,
			})
		case today && ae.thresholds.DueToday:
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("due-today-%s", t.ID),
				Condition:   ConditionDueToday,
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %q is due today", t.Name),
				TriggeredAt: now,
				TaskID:      t.ID,
				TaskName:    t.Name,
				DueDate:     t.DueDate,
			})
		}
	}
	return alerts
}

// checkUrgentUnassigned flags open urgent tasks nobody owns.
func (ae *alertEngine) checkUrgentUnassigned(tasks []models.Task, now time.Time) []Alert {
	var alerts []Alert
	for _, t := range tasks {
		if t.Priority != models.PriorityUrgent || t.AssigneeID != "" || t.Status == models.StatusDone {
			continue
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("unassigned-%s", t.ID),
			Condition:   ConditionUrgentUnassigned,
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("urgent task %q has no assignee", t.Name),
			TriggeredAt: now,
			TaskID:      t.ID,
			TaskName:    t.Name,
		})
	}
	return alerts
}

// checkLongTimer flags the live timer when it has been running longer than
// the threshold. Only the in-process timer counts: timer events left in a
// persistent log by an earlier process describe a timer that no longer runs.
func (ae *alertEngine) checkLongTimer(tasks []models.Task, now time.Time) []Alert {
	if ae.thresholds.TimerHours <= 0 {
		return nil
	}
	active, running := ae.tasks.ActiveTimer()
	if !running {
		return nil
	}

	var name string
	for _, t := range tasks {
		if t.ID == active.TaskID {
			name = t.Name
			break
		}
	}
	if name == "" {
		return nil
	}

	elapsed := now.Sub(active.StartTime)
	if elapsed <= time.Duration(ae.thresholds.TimerHours)*time.Hour {
		return nil
	}
	return []Alert{{
		ID:          fmt.Sprintf("timer-%s", active.TaskID),
		Condition:   ConditionTimerTooLong,
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("timer on %q has been running for more than %d hours", name, ae.thresholds.TimerHours),
		TriggeredAt: now,
		TaskID:      active.TaskID,
		TaskName:    name,
		RunningFor:  elapsed,
	}}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
