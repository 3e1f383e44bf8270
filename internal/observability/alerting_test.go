package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// staticTasks is a TaskSource over a fixed slice with an idle timer.
type staticTasks []models.Task

func (s staticTasks) Tasks() []models.Task { return s }

func (staticTasks) ActiveTimer() (models.ActiveTimer, bool) { return models.ActiveTimer{}, false }

// timedTasks is a TaskSource whose timer runs on one task.
type timedTasks struct {
	staticTasks
	timer models.ActiveTimer
}

func (s timedTasks) ActiveTimer() (models.ActiveTimer, bool) { return s.timer, true }

var alertNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func alertIDs(alerts []Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}

func evaluate(t *testing.T, src TaskSource, th AlertThresholds) []Alert {
	t.Helper()
	engine := NewAlertEngine(src, th, func() time.Time { return alertNow })
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}
	return alerts
}

func TestAlertEngine_DueDates(t *testing.T) {
	tasks := []models.Task{
		{ID: "T-1", Name: "Ship release", Status: models.StatusToDo, Priority: models.PriorityHigh, DueDate: at(alertNow.AddDate(0, 0, -2))},
		{ID: "T-2", Name: "Write notes", Status: models.StatusInProgress, Priority: models.PriorityLow, DueDate: at(alertNow.Add(-4 * time.Hour))},
		{ID: "T-3", Name: "Plan sprint", Status: models.StatusToDo, Priority: models.PriorityLow, DueDate: at(alertNow.AddDate(0, 0, 3))},
		{ID: "T-4", Name: "Old and done", Status: models.StatusDone, Priority: models.PriorityLow, DueDate: at(alertNow.AddDate(0, 0, -5))},
		{ID: "T-5", Name: "No date", Status: models.StatusToDo, Priority: models.PriorityLow},
	}

	alerts := evaluate(t, staticTasks(tasks), DefaultAlertThresholds())

	got := alertIDs(alerts)
	want := []string{"overdue-T-1", "due-today-T-2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("alerts = %v, want %v", got, want)
	}
	if alerts[0].Severity != SeverityHigh {
		t.Errorf("overdue severity = %s, want high", alerts[0].Severity)
	}
	if !strings.Contains(alerts[0].Message, "Ship release") {
		t.Errorf("overdue message %q should name the task", alerts[0].Message)
	}
	if alerts[1].Severity != SeverityMedium {
		t.Errorf("due today severity = %s, want medium", alerts[1].Severity)
	}
	if !alerts[1].TriggeredAt.Equal(alertNow) {
		t.Errorf("TriggeredAt = %v, want %v", alerts[1].TriggeredAt, alertNow)
	}
}

func TestAlertEngine_DueTodayDisabled(t *testing.T) {
	tasks := []models.Task{
		{ID: "T-1", Name: "Later today", Status: models.StatusToDo, DueDate: at(alertNow.Add(2 * time.Hour))},
	}
	th := DefaultAlertThresholds()
	th.DueToday = false

	if alerts := evaluate(t, staticTasks(tasks), th); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alertIDs(alerts))
	}
}

func TestAlertEngine_DueEarlierToday(t *testing.T) {
	tasks := []models.Task{
		{ID: "T-1", Name: "Standup notes", Status: models.StatusToDo, DueDate: at(alertNow.Add(-3 * time.Hour))},
	}

	tests := []struct {
		name     string
		dueToday bool
		want     string
	}{
		{"due today enabled", true, "due-today-T-1"},
		{"due today disabled", false, "overdue-T-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultAlertThresholds()
			th.DueToday = tt.dueToday
			got := alertIDs(evaluate(t, staticTasks(tasks), th))
			if strings.Join(got, ",") != tt.want {
				t.Errorf("alerts = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestAlertEngine_UrgentUnassigned(t *testing.T) {
	tasks := []models.Task{
		{ID: "T-1", Name: "Outage", Status: models.StatusToDo, Priority: models.PriorityUrgent},
		{ID: "T-2", Name: "Owned outage", Status: models.StatusToDo, Priority: models.PriorityUrgent, AssigneeID: "U-1"},
		{ID: "T-3", Name: "Closed outage", Status: models.StatusDone, Priority: models.PriorityUrgent},
		{ID: "T-4", Name: "Minor", Status: models.StatusToDo, Priority: models.PriorityHigh},
	}

	alerts := evaluate(t, staticTasks(tasks), DefaultAlertThresholds())
	if got := alertIDs(alerts); len(got) != 1 || got[0] != "unassigned-T-1" {
		t.Fatalf("alerts = %v, want [unassigned-T-1]", got)
	}
	if alerts[0].Severity != SeverityLow {
		t.Errorf("severity = %s, want low", alerts[0].Severity)
	}

	th := DefaultAlertThresholds()
	th.UrgentUnassigned = false
	if alerts := evaluate(t, staticTasks(tasks), th); len(alerts) != 0 {
		t.Errorf("expected no alerts when disabled, got %v", alertIDs(alerts))
	}
}

func TestAlertEngine_LongTimers(t *testing.T) {
	tasks := staticTasks{
		{ID: "T-1", Name: "Refactor", Status: models.StatusInProgress, Priority: models.PriorityMedium},
		{ID: "T-2", Name: "Review", Status: models.StatusInProgress, Priority: models.PriorityMedium},
	}
	running := func(id string, ago time.Duration) TaskSource {
		return timedTasks{staticTasks: tasks, timer: models.ActiveTimer{TaskID: id, StartTime: alertNow.Add(-ago)}}
	}

	tests := []struct {
		name string
		src  TaskSource
		want []string
	}{
		{"running past threshold", running("T-1", 9*time.Hour), []string{"timer-T-1"}},
		{"running within threshold", running("T-1", 7*time.Hour), nil},
		{"exactly at threshold", running("T-2", 8*time.Hour), nil},
		{"idle", tasks, nil},
		{"task no longer exists", running("T-9", 20*time.Hour), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alertIDs(evaluate(t, tt.src, DefaultAlertThresholds()))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("alerts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertEngine_LongTimerCarriesTaskAndDuration(t *testing.T) {
	src := timedTasks{
		staticTasks: staticTasks{{ID: "T-1", Name: "Refactor", Status: models.StatusInProgress}},
		timer:       models.ActiveTimer{TaskID: "T-1", StartTime: alertNow.Add(-9*time.Hour - 30*time.Minute)},
	}
	alerts := evaluate(t, src, DefaultAlertThresholds())
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want one timer alert", alertIDs(alerts))
	}
	a := alerts[0]
	if a.Condition != ConditionTimerTooLong || a.TaskID != "T-1" || a.TaskName != "Refactor" {
		t.Errorf("alert = %+v", a)
	}
	if a.RunningFor != 9*time.Hour+30*time.Minute {
		t.Errorf("RunningFor = %s, want 9h30m", a.RunningFor)
	}
}

// A timer.started left in a persistent log by an earlier process must not
// raise an alert when the live timer is idle.
func TestAlertEngine_IdleTimerIgnoresStaleStartEvent(t *testing.T) {
	log := NewMemoryEventLog()
	writeAll(t, log, []Event{{
		Time: alertNow.Add(-10 * time.Hour), Level: "INFO", Type: "timer.started",
		Data: map[string]any{"task_id": "T-1"},
	}})
	tasks := staticTasks{{ID: "T-1", Name: "seeded", Status: models.StatusInProgress}}

	if alerts := evaluate(t, tasks, DefaultAlertThresholds()); len(alerts) != 0 {
		t.Errorf("expected no alerts with an idle timer, got %v", alertIDs(alerts))
	}
}

func TestAlertEngine_TimerThresholdZeroDisables(t *testing.T) {
	src := timedTasks{
		staticTasks: staticTasks{{ID: "T-1", Name: "Refactor", Status: models.StatusToDo}},
		timer:       models.ActiveTimer{TaskID: "T-1", StartTime: alertNow.Add(-48 * time.Hour)},
	}
	th := DefaultAlertThresholds()
	th.TimerHours = 0

	if alerts := evaluate(t, src, th); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %v", alertIDs(alerts))
	}
}

func TestAlertEngine_DueAlertsCarryTask(t *testing.T) {
	due := alertNow.AddDate(0, 0, -2)
	alerts := evaluate(t, staticTasks{{ID: "T-1", Name: "Ship release", Status: models.StatusToDo, DueDate: &due}}, DefaultAlertThresholds())
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want one", alertIDs(alerts))
	}
	a := alerts[0]
	if a.Condition != ConditionOverdue || a.TaskID != "T-1" || a.TaskName != "Ship release" {
		t.Errorf("alert = %+v", a)
	}
	if a.DueDate == nil || !a.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", a.DueDate, due)
	}
}

func TestAlertEngine_OrderedBySeverity(t *testing.T) {
	src := timedTasks{
		staticTasks: staticTasks{
			{ID: "T-1", Name: "Unowned", Status: models.StatusToDo, Priority: models.PriorityUrgent},
			{ID: "T-2", Name: "Late", Status: models.StatusToDo, Priority: models.PriorityLow, DueDate: at(alertNow.AddDate(0, 0, -1))},
			{ID: "T-3", Name: "Timed", Status: models.StatusInProgress, Priority: models.PriorityLow},
		},
		timer: models.ActiveTimer{TaskID: "T-3", StartTime: alertNow.Add(-9 * time.Hour)},
	}

	alerts := evaluate(t, src, DefaultAlertThresholds())
	var got []AlertSeverity
	for _, a := range alerts {
		got = append(got, a.Severity)
	}
	want := []AlertSeverity{SeverityHigh, SeverityMedium, SeverityLow}
	if len(got) != len(want) {
		t.Fatalf("severities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("severities = %v, want %v", got, want)
			break
		}
	}
}

func TestDefaultAlertThresholds(t *testing.T) {
	th := DefaultAlertThresholds()
	if th.TimerHours != 8 {
		t.Errorf("TimerHours = %d, want 8", th.TimerHours)
	}
	if !th.DueToday || !th.UrgentUnassigned {
		t.Errorf("expected due_today and urgent_unassigned enabled, got %+v", th)
	}
}
