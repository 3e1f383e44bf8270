package core

import (
	"fmt"
	"time"
)

// FormatDuration renders logged time in whole minutes: "0m", "45m", "2h 5m".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	minutes := int64(d / time.Minute)
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatTimer renders a running timer as HH:MM:SS.
func FormatTimer(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatDate renders a date the short way it appears in tables: "Jan 2".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2")
}

// DueState classifies a due date relative to today.
type DueState string

const (
	DueNone     DueState = "none"
	DueOverdue  DueState = "overdue"
	DueToday    DueState = "today"
	DueUpcoming DueState = "upcoming"
)

// DueStateOf compares calendar days in now's location, so a task due later
// today is "today", not "upcoming".
func DueStateOf(due *time.Time, now time.Time) DueState {
	if due == nil {
		return DueNone
	}
	d := startOfDay(due.In(now.Location()))
	today := startOfDay(now)
	switch {
	case d.Before(today):
		return DueOverdue
	case d.Equal(today):
		return DueToday
	default:
		return DueUpcoming
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
