package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// Filter is the per-column predicate. Text is a case-insensitive substring;
// Values is a set of allowed display values. An empty filter always passes.
type Filter struct {
	Text   string   `json:"text,omitempty" yaml:"text,omitempty"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Active reports whether the filter constrains anything.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Text) != "" || len(f.Values) > 0
}

// FilterSpec holds one filter per column. All active filters must pass.
type FilterSpec map[ColumnKey]Filter

// SortDirection orders a sorted column.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SortSpec selects the sort column and direction. An empty direction sorts
// ascending.
type SortSpec struct {
	Column    ColumnKey     `json:"column" yaml:"column"`
	Direction SortDirection `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// ExpandedSet holds the IDs of tasks whose children are shown.
type ExpandedSet map[string]bool

// ExpandAll returns a set that expands every task in tasks.
func ExpandAll(tasks []models.Task) ExpandedSet {
	set := make(ExpandedSet, len(tasks))
	for _, t := range tasks {
		set[t.ID] = true
	}
	return set
}

// Query bundles the caller-held view state.
type Query struct {
	Filters  FilterSpec  `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort     *SortSpec   `json:"sort,omitempty" yaml:"sort,omitempty"`
	Expanded ExpandedSet `json:"expanded,omitempty" yaml:"expanded,omitempty"`
}

// Row is one line of the flattened tree. Total is the task's own time plus
// that of all its descendants, visible or not.
type Row struct {
	Task  models.Task   `json:"task"`
	Depth int           `json:"depth"`
	Total time.Duration `json:"total"`
}

type boundFilter struct {
	col    Column
	filter Filter
}

// FilterTasks keeps every task that matches all active filters together with
// the ancestors of those matches, in input order. A match whose ancestor
// chain does not resolve to a root is dropped, and so are its ancestors
// unless another match keeps them.
func FilterTasks(tasks []models.Task, cat *Catalog, filters FilterSpec) ([]models.Task, error) {
	bound, err := bindFilters(cat, filters)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	included := make(map[string]bool, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if included[t.ID] || !matchesAll(*t, cat, bound) {
			continue
		}
		chain, ok := ancestorChain(t, byID)
		if !ok {
			continue
		}
		included[t.ID] = true
		for _, id := range chain {
			included[id] = true
		}
	}

	out := make([]models.Task, 0, len(included))
	for _, t := range tasks {
		if included[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func bindFilters(cat *Catalog, filters FilterSpec) ([]boundFilter, error) {
	keys := make([]string, 0, len(filters))
	for key, f := range filters {
		if f.Active() {
			keys = append(keys, string(key))
		}
	}
	sort.Strings(keys)

	bound := make([]boundFilter, 0, len(keys))
	for _, key := range keys {
		col, err := cat.ResolveColumn(ColumnKey(key))
		if err != nil {
			return nil, fmt.Errorf("filtering tasks: %w", err)
		}
		bound = append(bound, boundFilter{col: col, filter: filters[ColumnKey(key)]})
	}
	return bound, nil
}

func matchesAll(t models.Task, cat *Catalog, bound []boundFilter) bool {
	for _, b := range bound {
		if !matches(t, cat, b.col, b.filter) {
			return false
		}
	}
	return true
}

func matches(t models.Task, cat *Catalog, col Column, f Filter) bool {
	v := col.Value(t, cat)
	if !v.Present {
		return false
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		if col.Match != nil {
			if !col.Match(t, cat, text) {
				return false
			}
		} else if !containsFold(v.Text, text) {
			return false
		}
	}
	if len(f.Values) > 0 {
		member := false
		for _, want := range f.Values {
			if strings.EqualFold(v.Text, want) {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}
	return true
}

// ancestorChain returns the IDs of t's ancestors, nearest first. ok is false
// when a parent is missing or the chain loops.
func ancestorChain(t *models.Task, byID map[string]*models.Task) (chain []string, ok bool) {
	seen := map[string]bool{t.ID: true}
	for cur := t; cur.ParentID != ""; {
		parent, exists := byID[cur.ParentID]
		if !exists || seen[parent.ID] {
			return nil, false
		}
		seen[parent.ID] = true
		chain = append(chain, parent.ID)
		cur = parent
	}
	return chain, true
}

// SortSiblings returns tasks with each group of siblings sorted among
// themselves. Every group keeps the slots it occupied, so tasks under
// different parents never trade places. The sort is stable.
func SortSiblings(tasks []models.Task, cat *Catalog, spec SortSpec) ([]models.Task, error) {
	col, err := cat.ResolveColumn(spec.Column)
	if err != nil {
		return nil, fmt.Errorf("sorting tasks: %w", err)
	}
	var desc bool
	switch spec.Direction {
	case "", SortAscending:
	case SortDescending:
		desc = true
	default:
		return nil, invalidOp("sorting tasks", "unknown sort direction %q", spec.Direction)
	}

	out := make([]models.Task, len(tasks))
	copy(out, tasks)

	slots := make(map[string][]int)
	var parents []string
	for i, t := range out {
		if _, ok := slots[t.ParentID]; !ok {
			parents = append(parents, t.ParentID)
		}
		slots[t.ParentID] = append(slots[t.ParentID], i)
	}

	for _, parentID := range parents {
		idx := slots[parentID]
		group := make([]models.Task, len(idx))
		values := make([]CellValue, len(idx))
		for j, i := range idx {
			group[j] = out[i]
		}
		order := make([]int, len(idx))
		for j := range order {
			order[j] = j
			values[j] = col.Value(group[j], cat)
		}
		sort.SliceStable(order, func(a, b int) bool {
			return compareCells(values[order[a]], values[order[b]], desc) < 0
		})
		for j, i := range idx {
			out[i] = group[order[j]]
		}
	}
	return out, nil
}

// compareCells orders two values of one column. Absent values come last in
// both directions.
func compareCells(a, b CellValue, desc bool) int {
	switch {
	case !a.Present && !b.Present:
		return 0
	case !a.Present:
		return 1
	case !b.Present:
		return -1
	}

	var c int
	if a.Numeric && b.Numeric {
		switch {
		case a.Num < b.Num:
			c = -1
		case a.Num > b.Num:
			c = 1
		}
	} else {
		c = strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	}
	if desc {
		return -c
	}
	return c
}

// Materialize flattens the forest into display rows. Roots come in slice
// order; a task's children follow it directly, but only when the task is in
// expanded. Collapsed subtrees are skipped, not removed.
func Materialize(tasks []models.Task, expanded ExpandedSet) []Row {
	idx := NewChildIndex(tasks)
	rows := make([]Row, 0, len(tasks))
	visited := make(map[string]bool, len(tasks))

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		rows = append(rows, Row{Task: *idx.byID[id], Depth: depth})
		if !expanded[id] {
			return
		}
		for _, child := range idx.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, root := range idx.Children("") {
		walk(root, 0)
	}
	return rows
}

// VisibleRows runs the whole pipeline: filter with ancestor preservation,
// sibling-scoped sort, then materialization. Row totals are aggregated over
// the full task set.
func VisibleRows(tasks []models.Task, cat *Catalog, q Query) ([]Row, error) {
	totals, err := NewChildIndex(tasks).TotalTimes()
	if err != nil {
		return nil, fmt.Errorf("computing visible rows: %w", err)
	}

	visible, err := FilterTasks(tasks, cat, q.Filters)
	if err != nil {
		return nil, err
	}
	if q.Sort != nil && q.Sort.Column != "" {
		visible, err = SortSiblings(visible, cat, *q.Sort)
		if err != nil {
			return nil, err
		}
	}

	rows := Materialize(visible, q.Expanded)
	for i := range rows {
		rows[i].Total = totals[rows[i].Task.ID]
	}
	return rows, nil
}
