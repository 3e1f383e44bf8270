package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// TimeLogger credits elapsed time to a task. Registry implements it.
type TimeLogger interface {
	LogTime(taskID string, d time.Duration) error
}

// TaskLookup reports whether a task exists.
type TaskLookup interface {
	Task(id string) (models.Task, error)
}

// TimerState names the two states of the stopwatch.
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
)

// TimerTransition describes what a Toggle or Stop did, for logging.
type TimerTransition struct {
	Stopped  string        // task that was credited, if any
	Credited time.Duration // time credited to Stopped
	Started  string        // task that started accumulating, if any
}

// TimerController is the single process-wide stopwatch. It is either idle or
// running against exactly one task, and converts elapsed wall-clock time into
// logged time when it stops or switches.
type TimerController struct {
	logger TimeLogger
	tasks  TaskLookup
	now    func() time.Time
	active *models.ActiveTimer
}

// NewTimerController creates an idle controller. A nil now uses time.Now.
func NewTimerController(logger TimeLogger, tasks TaskLookup, now func() time.Time) *TimerController {
	if now == nil {
		now = time.Now
	}
	return &TimerController{logger: logger, tasks: tasks, now: now}
}

// State returns the current state.
func (tc *TimerController) State() TimerState {
	if tc.active == nil {
		return TimerIdle
	}
	return TimerRunning
}

// Active returns the running timer, if any.
func (tc *TimerController) Active() (models.ActiveTimer, bool) {
	if tc.active == nil {
		return models.ActiveTimer{}, false
	}
	return *tc.active, true
}

// Elapsed returns how long the running timer has been accumulating. It is a
// display value only; nothing is credited until the timer stops.
func (tc *TimerController) Elapsed() time.Duration {
	if tc.active == nil {
		return 0
	}
	return clampElapsed(tc.now().Sub(tc.active.StartTime))
}

// Toggle starts a timer on taskID, stops it if it is already running on
// taskID, or switches to taskID from another task. Switching credits the
// previous task with its full interval before the new one starts at zero.
func (tc *TimerController) Toggle(taskID string) (TimerTransition, error) {
	if _, err := tc.tasks.Task(taskID); err != nil {
		return TimerTransition{}, fmt.Errorf("toggling timer: %w", err)
	}

	now := tc.now()
	var tr TimerTransition
	if tc.active != nil {
		credited, err := tc.credit(now)
		if err != nil {
			return TimerTransition{}, err
		}
		tr.Stopped, tr.Credited = tc.active.TaskID, credited
		stoppedSame := tc.active.TaskID == taskID
		tc.active = nil
		if stoppedSame {
			return tr, nil
		}
	}

	tc.active = &models.ActiveTimer{TaskID: taskID, StartTime: now}
	tr.Started = taskID
	return tr, nil
}

// Stop credits the running timer and goes idle. Stopping an idle timer does
// nothing.
func (tc *TimerController) Stop() (TimerTransition, error) {
	if tc.active == nil {
		return TimerTransition{}, nil
	}
	credited, err := tc.credit(tc.now())
	if err != nil {
		return TimerTransition{}, err
	}
	tr := TimerTransition{Stopped: tc.active.TaskID, Credited: credited}
	tc.active = nil
	return tr, nil
}

// Discard goes idle without crediting anything if the running timer's task
// is among deleted. It reports whether the timer was discarded.
func (tc *TimerController) Discard(deleted []string) bool {
	if tc.active == nil {
		return false
	}
	for _, id := range deleted {
		if id == tc.active.TaskID {
			tc.active = nil
			return true
		}
	}
	return false
}

func (tc *TimerController) credit(now time.Time) (time.Duration, error) {
	elapsed := clampElapsed(now.Sub(tc.active.StartTime))
	if err := tc.logger.LogTime(tc.active.TaskID, elapsed); err != nil {
		return 0, fmt.Errorf("crediting timer for task %s: %w", tc.active.TaskID, err)
	}
	return elapsed, nil
}

// clampElapsed guards against the wall clock moving backwards.
func clampElapsed(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
