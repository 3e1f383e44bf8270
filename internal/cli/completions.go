package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/pkg/models"
)

// completeTaskIDs lists task IDs with the task name as description.
func completeTaskIDs(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Workspace == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, task := range Workspace.Tasks() {
		if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
			ids = append(ids, task.ID+"\t"+task.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeColumnKeys lists the keys accepted by --sort.
func completeColumnKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Workspace == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var keys []string
	for _, col := range Workspace.Columns() {
		if strings.HasPrefix(string(col.Key), toComplete) {
			keys = append(keys, string(col.Key)+"\t"+col.Label)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// completeFilters completes "column=" for --filter and --select. Once the
// column is typed, select columns offer their known values.
func completeFilters(kind core.FilterKind) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Workspace == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		if key, _, ok := strings.Cut(toComplete, "="); ok {
			if kind != core.FilterSelect {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var out []string
			for _, v := range selectValues(core.ColumnKey(key)) {
				if candidate := key + "=" + v; strings.HasPrefix(candidate, toComplete) {
					out = append(out, candidate)
				}
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		}

		var out []string
		for _, col := range Workspace.Columns() {
			if kind == core.FilterSelect && col.Filter != core.FilterSelect {
				continue
			}
			if strings.HasPrefix(string(col.Key), toComplete) {
				out = append(out, string(col.Key)+"=")
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func selectValues(key core.ColumnKey) []string {
	var values []string
	switch key {
	case core.ColumnStatus:
		for _, s := range models.ValidStatuses() {
			values = append(values, string(s))
		}
	case core.ColumnPriority:
		for _, p := range models.ValidPriorities() {
			values = append(values, string(p))
		}
	case core.ColumnAssignee, core.ColumnAddedBy:
		for _, u := range Workspace.Users() {
			values = append(values, u.Name)
		}
	}
	return values
}

// registerRowsCompletions wires flag completion for the view flags.
func registerRowsCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("sort", completeColumnKeys)
	_ = cmd.RegisterFlagCompletionFunc("expand", completeTaskIDs)
	_ = cmd.RegisterFlagCompletionFunc("filter", completeFilters(core.FilterText))
	_ = cmd.RegisterFlagCompletionFunc("select", completeFilters(core.FilterSelect))
}
