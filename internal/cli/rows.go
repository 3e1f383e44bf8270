package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/pkg/models"
)

var (
	rowsFilters   []string
	rowsSelects   []string
	rowsSort      string
	rowsDesc      bool
	rowsExpandAll bool
	rowsExpand    []string
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print the task table",
	Long: `Print the visible rows of the task table: filtered, sorted among siblings
and flattened with only the expanded subtrees shown.

Text filters match a case-insensitive substring (--filter name=deploy).
Select filters keep tasks whose value is one of a list (--select status="To Do,Done").
Ancestors of matching tasks are always kept so every row keeps its context.
Columns are addressed by key; custom fields use cf:<field id>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}

		q, err := buildQuery(Workspace.Tasks(), rowsFilters, rowsSelects, rowsSort, rowsDesc, rowsExpandAll, rowsExpand)
		if err != nil {
			return err
		}
		rows, err := Workspace.VisibleRows(q)
		if err != nil {
			return fmt.Errorf("computing rows: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		cat := core.NewCatalog(Workspace.Users(), Workspace.Tags(), Workspace.CustomFields())
		view := tableView{
			columns:  Workspace.Columns(),
			catalog:  cat,
			expanded: q.Expanded,
			parents:  parentSet(Workspace.Tasks()),
		}
		if active, running := Workspace.ActiveTimer(); running {
			view.timerTask = active.TaskID
			view.elapsed = core.FormatTimer(Workspace.Elapsed())
		}
		fmt.Fprintln(out, view.render(rows))
		fmt.Fprintf(out, "%d row(s)\n", len(rows))
		return nil
	},
}

// buildQuery turns the command-line view flags into a core.Query.
func buildQuery(tasks []models.Task, filters, selects []string, sortCol string, desc, expandAll bool, expand []string) (core.Query, error) {
	spec, err := parseFilters(filters, selects)
	if err != nil {
		return core.Query{}, err
	}

	q := core.Query{Filters: spec}
	if sortCol != "" {
		dir := core.SortAscending
		if desc {
			dir = core.SortDescending
		}
		q.Sort = &core.SortSpec{Column: core.ColumnKey(sortCol), Direction: dir}
	}

	if expandAll {
		q.Expanded = core.ExpandAll(tasks)
	} else {
		q.Expanded = make(core.ExpandedSet, len(expand))
		for _, id := range expand {
			q.Expanded[id] = true
		}
	}
	return q, nil
}

// parseFilters reads "col=text" text filters and "col=v1,v2" select filters.
// A column may carry both.
func parseFilters(texts, selects []string) (core.FilterSpec, error) {
	spec := make(core.FilterSpec)
	for _, raw := range texts {
		key, value, err := splitFilter(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing --filter: %w", err)
		}
		f := spec[key]
		f.Text = value
		spec[key] = f
	}
	for _, raw := range selects {
		key, value, err := splitFilter(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing --select: %w", err)
		}
		f := spec[key]
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				f.Values = append(f.Values, v)
			}
		}
		spec[key] = f
	}
	return spec, nil
}

func splitFilter(raw string) (core.ColumnKey, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected column=value, got %q", raw)
	}
	return core.ColumnKey(key), value, nil
}

func parentSet(tasks []models.Task) map[string]bool {
	parents := make(map[string]bool)
	for _, t := range tasks {
		if t.ParentID != "" {
			parents[t.ParentID] = true
		}
	}
	return parents
}

// --- Rendering ---

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableTimerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true).Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type tableView struct {
	columns   []core.Column
	catalog   *core.Catalog
	expanded  core.ExpandedSet
	parents   map[string]bool
	timerTask string
	elapsed   string
}

func (v tableView) render(rows []core.Row) string {
	headers := make([]string, len(v.columns))
	for i, col := range v.columns {
		headers[i] = col.Label
	}

	data := make([][]string, len(rows))
	timerRow := -1
	for i, r := range rows {
		data[i] = v.cells(r)
		if r.Task.ID == v.timerTask {
			timerRow = i
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == timerRow:
				return tableTimerStyle
			default:
				return tableCellStyle
			}
		}).
		String()
}

func (v tableView) cells(r core.Row) []string {
	out := make([]string, len(v.columns))
	for i, col := range v.columns {
		switch col.Key {
		case core.ColumnName:
			out[i] = strings.Repeat("  ", r.Depth) + v.marker(r.Task.ID) + r.Task.Name
		case core.ColumnTimeLogged:
			out[i] = core.FormatDuration(r.Total)
			if r.Task.ID == v.timerTask {
				out[i] += " (" + v.elapsed + ")"
			}
		default:
			cell := col.Value(r.Task, v.catalog)
			if cell.Present {
				out[i] = cell.Text
			} else {
				out[i] = "-"
			}
		}
	}
	return out
}

func (v tableView) marker(taskID string) string {
	switch {
	case !v.parents[taskID]:
		return "  "
	case v.expanded[taskID]:
		return "▾ "
	default:
		return "▸ "
	}
}

func init() {
	rowsCmd.Flags().StringArrayVar(&rowsFilters, "filter", nil, "Text filter as column=text (repeatable)")
	rowsCmd.Flags().StringArrayVar(&rowsSelects, "select", nil, "Select filter as column=v1,v2 (repeatable)")
	rowsCmd.Flags().StringVar(&rowsSort, "sort", "", "Column to sort siblings by")
	rowsCmd.Flags().BoolVar(&rowsDesc, "desc", false, "Sort descending")
	rowsCmd.Flags().BoolVar(&rowsExpandAll, "expand-all", false, "Show every subtree")
	rowsCmd.Flags().StringSliceVar(&rowsExpand, "expand", nil, "Task IDs whose children are shown")
	registerRowsCompletions(rowsCmd)
	rootCmd.AddCommand(rowsCmd)
}
