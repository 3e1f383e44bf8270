package cli

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
)

func TestCompletions_NilWorkspace(t *testing.T) {
	useWorkspace(t, nil)

	funcs := map[string]func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective){
		"taskIDs": completeTaskIDs,
		"columns": completeColumnKeys,
		"filter":  completeFilters(core.FilterText),
	}
	for name, fn := range funcs {
		got, dir := fn(nil, nil, "")
		if got != nil {
			t.Errorf("%s: got %v, want nil", name, got)
		}
		if dir != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("%s: directive = %v, want NoFileComp", name, dir)
		}
	}
}

func TestCompleteTaskIDs(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	useWorkspace(t, ws)

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"T-A\tAlpha", "T-B\tBeta", "T-C\tGamma"}},
		{"T-B", []string{"T-B\tBeta"}},
		{"X", nil},
	}
	for _, tt := range tests {
		got, _ := completeTaskIDs(nil, nil, tt.prefix)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeTaskIDs(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestCompleteColumnKeys(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	useWorkspace(t, ws)

	got, _ := completeColumnKeys(nil, nil, "")
	if len(got) != len(core.DefaultColumns)+1 {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(core.DefaultColumns)+1, got)
	}
	if got[len(got)-1] != "cf:CF-1\tSprint" {
		t.Errorf("last key = %q, want custom field column", got[len(got)-1])
	}

	got, _ = completeColumnKeys(nil, nil, "st")
	if !reflect.DeepEqual(got, []string{"status\tStatus"}) {
		t.Errorf("completeColumnKeys(st) = %v", got)
	}
}

func TestCompleteFilters(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	useWorkspace(t, ws)

	tests := []struct {
		name   string
		kind   core.FilterKind
		typed  string
		want   []string
		noSpac bool
	}{
		{"select columns only", core.FilterSelect, "", []string{"assignee=", "status=", "priority="}, true},
		{"text columns by prefix", core.FilterText, "na", []string{"name="}, true},
		{"status values", core.FilterSelect, "status=In", []string{"status=In Progress", "status=In Review"}, false},
		{"assignee values", core.FilterSelect, "assignee=", []string{"assignee=Ada"}, false},
		{"text has no values", core.FilterText, "name=", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dir := completeFilters(tt.kind)(nil, nil, tt.typed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if hasNoSpace := dir&cobra.ShellCompDirectiveNoSpace != 0; hasNoSpace != tt.noSpac {
				t.Errorf("NoSpace = %v, want %v", hasNoSpace, tt.noSpac)
			}
		})
	}
}

func TestRowsCompletionsRegistered(t *testing.T) {
	for _, flag := range []string{"sort", "expand", "filter", "select"} {
		if _, ok := rowsCmd.GetFlagCompletionFunc(flag); !ok {
			t.Errorf("no completion registered for --%s", flag)
		}
	}
}
