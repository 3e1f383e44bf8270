package core

import (
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// UserLoad counts the open work assigned to one user.
type UserLoad struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	ToDo       int    `json:"to_do"`
	InProgress int    `json:"in_progress"`
}

// Stats is the headline summary shown on the dashboard.
type Stats struct {
	Total      int           `json:"total"`
	InProgress int           `json:"in_progress"`
	DueToday   int           `json:"due_today"`
	Overdue    int           `json:"overdue"`
	Completed  int           `json:"completed"`
	TimeLogged time.Duration `json:"time_logged"`
	Workload   []UserLoad    `json:"workload"`
}

// ComputeStats summarizes tasks as of now. Overdue means due before now and
// not done; due today compares calendar days in now's location. Workload has
// one entry per user, in user order.
func ComputeStats(tasks []models.Task, users []models.User, now time.Time) Stats {
	s := Stats{Total: len(tasks), Workload: make([]UserLoad, 0, len(users))}
	load := make(map[string]*UserLoad, len(users))
	for _, u := range users {
		s.Workload = append(s.Workload, UserLoad{UserID: u.ID, Name: u.Name})
	}
	for i := range s.Workload {
		load[s.Workload[i].UserID] = &s.Workload[i]
	}

	for _, t := range tasks {
		s.TimeLogged += t.TimeLogged
		switch t.Status {
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusDone:
			s.Completed++
		}
		// A task due earlier today counts as both due today and overdue.
		// Alerts raise only one of the two for it.
		if t.DueDate != nil {
			if DueStateOf(t.DueDate, now) == DueToday {
				s.DueToday++
			}
			if t.DueDate.Before(now) && t.Status != models.StatusDone {
				s.Overdue++
			}
		}
		if l, ok := load[t.AssigneeID]; ok {
			switch t.Status {
			case models.StatusToDo:
				l.ToDo++
			case models.StatusInProgress:
				l.InProgress++
			}
		}
	}
	return s
}
