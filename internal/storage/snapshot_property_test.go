package storage

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
	"pgregory.net/rapid"
)

func genName(t *rapid.T, label string) string {
	return rapid.StringMatching(`[A-Za-z][A-Za-z0-9 _.-]{0,19}`).Draw(t, label)
}

func genTime(t *rapid.T, label string) time.Time {
	secs := rapid.Int64Range(0, 5*365*24*3600).Draw(t, label)
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second)
}

func genSnapshot(t *rapid.T) models.Snapshot {
	snap := models.Snapshot{Version: models.SnapshotVersion}

	nUsers := rapid.IntRange(0, 4).Draw(t, "nUsers")
	for i := 0; i < nUsers; i++ {
		snap.Users = append(snap.Users, models.User{
			ID:       fmt.Sprintf("U-%d", i),
			Name:     genName(t, fmt.Sprintf("userName%d", i)),
			JobTitle: genName(t, fmt.Sprintf("jobTitle%d", i)),
		})
	}
	nTags := rapid.IntRange(0, 3).Draw(t, "nTags")
	for i := 0; i < nTags; i++ {
		snap.Tags = append(snap.Tags, models.Tag{
			ID:    fmt.Sprintf("TAG-%d", i),
			Name:  genName(t, fmt.Sprintf("tagName%d", i)),
			Color: rapid.StringMatching(`#[0-9a-f]{6}`).Draw(t, fmt.Sprintf("tagColor%d", i)),
		})
	}
	nFields := rapid.IntRange(0, 2).Draw(t, "nFields")
	for i := 0; i < nFields; i++ {
		snap.CustomFields = append(snap.CustomFields, models.CustomField{
			ID:   fmt.Sprintf("CF-%d", i),
			Name: genName(t, fmt.Sprintf("fieldName%d", i)),
		})
	}

	nTasks := rapid.IntRange(0, 8).Draw(t, "nTasks")
	for i := 0; i < nTasks; i++ {
		task := models.Task{
			ID:          fmt.Sprintf("T-%d", i),
			Name:        genName(t, fmt.Sprintf("taskName%d", i)),
			Description: genName(t, fmt.Sprintf("desc%d", i)),
			Status:      rapid.SampledFrom(models.ValidStatuses()).Draw(t, fmt.Sprintf("status%d", i)),
			Priority:    rapid.SampledFrom(models.ValidPriorities()).Draw(t, fmt.Sprintf("priority%d", i)),
			DateAdded:   genTime(t, fmt.Sprintf("added%d", i)),
			AddedBy:     fmt.Sprintf("U-%d", rapid.IntRange(0, 9).Draw(t, fmt.Sprintf("addedBy%d", i))),
			TimeLogged:  time.Duration(rapid.Int64Range(0, 1_000_000).Draw(t, fmt.Sprintf("logged%d", i))) * time.Millisecond,
		}
		if nUsers > 0 && rapid.Bool().Draw(t, fmt.Sprintf("assigned%d", i)) {
			task.AssigneeID = fmt.Sprintf("U-%d", rapid.IntRange(0, nUsers-1).Draw(t, fmt.Sprintf("assignee%d", i)))
		}
		for j := 0; j < nTags; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("tag%d_%d", i, j)) {
				task.TagIDs = append(task.TagIDs, fmt.Sprintf("TAG-%d", j))
			}
		}
		for j := 0; j < nFields; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("field%d_%d", i, j)) {
				if task.CustomFields == nil {
					task.CustomFields = make(map[string]string)
				}
				task.CustomFields[fmt.Sprintf("CF-%d", j)] = genName(t, fmt.Sprintf("fieldValue%d_%d", i, j))
			}
		}
		if rapid.Bool().Draw(t, fmt.Sprintf("hasDue%d", i)) {
			due := genTime(t, fmt.Sprintf("due%d", i))
			task.DueDate = &due
		}
		if i > 0 && rapid.Bool().Draw(t, fmt.Sprintf("hasParent%d", i)) {
			task.ParentID = fmt.Sprintf("T-%d", rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i)))
		}
		snap.Tasks = append(snap.Tasks, task)
	}
	return snap
}

// normalize replaces empty collections with nil so that YAML's treatment of
// empty lists does not affect comparisons.
func normalize(s models.Snapshot) models.Snapshot {
	if len(s.Users) == 0 {
		s.Users = nil
	}
	if len(s.Tags) == 0 {
		s.Tags = nil
	}
	if len(s.CustomFields) == 0 {
		s.CustomFields = nil
	}
	if len(s.Tasks) == 0 {
		s.Tasks = nil
	}
	tasks := make([]models.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		if len(t.TagIDs) == 0 {
			t.TagIDs = nil
		}
		if len(t.CustomFields) == 0 {
			t.CustomFields = nil
		}
		tasks[i] = t
	}
	if s.Tasks != nil {
		s.Tasks = tasks
	}
	return s
}

func snapshotsEqual(a, b models.Snapshot) bool {
	return reflect.DeepEqual(a, b)
}

// Saving a snapshot and loading it back yields the same snapshot, with task
// display order preserved.
func TestSnapshotRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		snap := genSnapshot(rt)
		store := NewSnapshotStore(filepath.Join(t.TempDir(), "tally.yaml"))

		if err := store.Save(snap); err != nil {
			rt.Fatalf("Save() error = %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			rt.Fatalf("Load() error = %v", err)
		}

		if !snapshotsEqual(normalize(loaded), normalize(snap)) {
			rt.Fatalf("round trip mismatch:\n got  %+v\n want %+v", loaded, snap)
		}
	})
}
