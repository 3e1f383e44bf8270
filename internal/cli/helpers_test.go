package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/pkg/models"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestWorkspace seeds:
//
//	T-A Alpha (60s, Ada, High, In Progress, due yesterday)
//	  T-B Beta (30s)
//	T-C Gamma (Done, Urgent)
func newTestWorkspace(t *testing.T) (core.Workspace, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	ws := core.NewWorkspace(core.NewRegistry(core.NewIDGenerator()), nil, clock.Now)

	now := clock.Now()
	yesterday := now.AddDate(0, 0, -1)
	err := ws.Restore(models.Snapshot{
		Version:      models.SnapshotVersion,
		Users:        []models.User{{ID: "U-1", Name: "Ada", JobTitle: "Engineer"}},
		Tags:         []models.Tag{{ID: "TAG-1", Name: "backend", Color: "#3366ff"}},
		CustomFields: []models.CustomField{{ID: "CF-1", Name: "Sprint"}},
		Tasks: []models.Task{
			{ID: "T-A", Name: "Alpha", Status: models.StatusInProgress, Priority: models.PriorityHigh, AssigneeID: "U-1",
				TagIDs: []string{"TAG-1"}, DueDate: &yesterday, DateAdded: now, AddedBy: "U-1",
				TimeLogged: 60 * time.Second, CustomFields: map[string]string{"CF-1": "12"}},
			{ID: "T-B", Name: "Beta", Status: models.StatusToDo, Priority: models.PriorityLow,
				DateAdded: now, AddedBy: "U-1", TimeLogged: 30 * time.Second, ParentID: "T-A"},
			{ID: "T-C", Name: "Gamma", Status: models.StatusDone, Priority: models.PriorityUrgent, DateAdded: now, AddedBy: "U-1"},
		},
	})
	if err != nil {
		t.Fatalf("restoring snapshot: %v", err)
	}
	return ws, clock
}

// useWorkspace installs ws as the package workspace for the duration of the test.
func useWorkspace(t *testing.T, ws core.Workspace) {
	t.Helper()
	orig := Workspace
	Workspace = ws
	t.Cleanup(func() { Workspace = orig })
}

// captureOutput points cmd's output at a buffer for the duration of the test.
func captureOutput(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(nil) })
	return &buf
}
