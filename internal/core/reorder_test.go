package core

import (
	"errors"
	"testing"
)

func TestReorder_MovesBeforeTarget(t *testing.T) {
	reg, lc, _ := newTestRegistry()
	c := mustCreate(t, lc, NewTask{Name: "c"}, "")
	b := mustCreate(t, lc, NewTask{Name: "b"}, "")
	a := mustCreate(t, lc, NewTask{Name: "a"}, "")
	// order: a b c

	if !reg.Reorder(c.ID, a.ID) {
		t.Fatal("Reorder(c, a) = false, want true")
	}
	if ids := taskIDs(reg.Tasks()); !equalStrings(ids, []string{c.ID, a.ID, b.ID}) {
		t.Errorf("order = %v, want [c a b]", ids)
	}

	if !reg.Reorder(c.ID, b.ID) {
		t.Fatal("Reorder(c, b) = false, want true")
	}
	if ids := taskIDs(reg.Tasks()); !equalStrings(ids, []string{a.ID, c.ID, b.ID}) {
		t.Errorf("order = %v, want [a c b]", ids)
	}
}

func TestReorder_InvalidRequestsAreNoops(t *testing.T) {
	reg, lc, _ := newTestRegistry()
	p := mustCreate(t, lc, NewTask{Name: "p"}, "")
	child := mustCreate(t, lc, NewTask{Name: "child", ParentID: p.ID}, "")
	root := mustCreate(t, lc, NewTask{Name: "root"}, "")
	before := taskIDs(reg.Tasks())

	tests := []struct {
		name            string
		dragged, target string
		wantErr         error
	}{
		{"different parents", child.ID, root.ID, ErrInvalidOperation},
		{"self", root.ID, root.ID, ErrInvalidOperation},
		{"unknown dragged", "T-404", root.ID, ErrNotFound},
		{"unknown target", root.ID, "T-404", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.CheckReorder(tt.dragged, tt.target); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckReorder error = %v, want %v", err, tt.wantErr)
			}
			if reg.Reorder(tt.dragged, tt.target) {
				t.Error("Reorder = true, want false")
			}
			if ids := taskIDs(reg.Tasks()); !equalStrings(ids, before) {
				t.Errorf("order = %v, want unchanged %v", ids, before)
			}
		})
	}
}

func TestReorder_SubtasksAmongThemselves(t *testing.T) {
	reg, lc, _ := newTestRegistry()
	p := mustCreate(t, lc, NewTask{Name: "p"}, "")
	x := mustCreate(t, lc, NewTask{Name: "x", ParentID: p.ID}, "")
	y := mustCreate(t, lc, NewTask{Name: "y", ParentID: p.ID}, "")
	// order: y x p

	if !reg.Reorder(x.ID, y.ID) {
		t.Fatal("Reorder(x, y) = false, want true")
	}
	if ids := taskIDs(reg.Tasks()); !equalStrings(ids, []string{x.ID, y.ID, p.ID}) {
		t.Errorf("order = %v, want [x y p]", ids)
	}
}
