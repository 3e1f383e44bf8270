package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// ChildIndex maps each parent ID to its children, in task order. Build one
// per query batch; it is not updated when tasks change.
type ChildIndex struct {
	byID     map[string]*models.Task
	children map[string][]string
	order    []string
}

// NewChildIndex indexes tasks by ID and by parent.
func NewChildIndex(tasks []models.Task) *ChildIndex {
	idx := &ChildIndex{
		byID:     make(map[string]*models.Task, len(tasks)),
		children: make(map[string][]string),
		order:    make([]string, 0, len(tasks)),
	}
	for i := range tasks {
		t := &tasks[i]
		idx.byID[t.ID] = t
		idx.order = append(idx.order, t.ID)
		idx.children[t.ParentID] = append(idx.children[t.ParentID], t.ID)
	}
	return idx
}

// Children returns the IDs of the direct children of parentID. The empty
// string yields the roots.
func (idx *ChildIndex) Children(parentID string) []string {
	return idx.children[parentID]
}

// TotalTime returns the task's own logged time plus the total time of all
// its descendants.
func (idx *ChildIndex) TotalTime(taskID string) (time.Duration, error) {
	if _, ok := idx.byID[taskID]; !ok {
		return 0, notFound("task", taskID)
	}
	return idx.total(taskID, make(map[string]bool), nil)
}

// TotalTimes returns the total time of every task in the batch, sharing
// intermediate results between subtrees.
func (idx *ChildIndex) TotalTimes() (map[string]time.Duration, error) {
	memo := make(map[string]time.Duration, len(idx.order))
	for _, id := range idx.order {
		if _, ok := memo[id]; ok {
			continue
		}
		if _, err := idx.total(id, make(map[string]bool), memo); err != nil {
			return nil, err
		}
	}
	return memo, nil
}

// total walks the subtree of id. path holds the IDs on the current descent
// and catches cycles; memo may be nil.
func (idx *ChildIndex) total(id string, path map[string]bool, memo map[string]time.Duration) (time.Duration, error) {
	if d, ok := memo[id]; ok {
		return d, nil
	}
	if path[id] {
		return 0, fmt.Errorf("aggregating time for task %s: %w", id, ErrCycleDetected)
	}
	path[id] = true
	defer delete(path, id)

	sum := idx.byID[id].TimeLogged
	for _, child := range idx.children[id] {
		d, err := idx.total(child, path, memo)
		if err != nil {
			return 0, err
		}
		sum += d
	}
	if memo != nil {
		memo[id] = sum
	}
	return sum, nil
}

// TotalTime is a convenience for a single lookup over tasks.
func TotalTime(taskID string, tasks []models.Task) (time.Duration, error) {
	return NewChildIndex(tasks).TotalTime(taskID)
}
