package core

import (
	"sort"
	"strings"

	"github.com/valter-silva-au/worktally/pkg/models"
)

// ColumnKey identifies a column of the task table.
type ColumnKey string

// Built-in columns. Custom fields use CustomFieldColumn.
const (
	ColumnName        ColumnKey = "name"
	ColumnDescription ColumnKey = "description"
	ColumnAssignee    ColumnKey = "assignee"
	ColumnStatus      ColumnKey = "status"
	ColumnPriority    ColumnKey = "priority"
	ColumnTags        ColumnKey = "tags"
	ColumnDueDate     ColumnKey = "dueDate"
	ColumnDateAdded   ColumnKey = "dateAdded"
	ColumnAddedBy     ColumnKey = "addedBy"
	ColumnTimeLogged  ColumnKey = "timeLogged"
)

const customFieldColumnPrefix = "cf:"

// DefaultColumns is the column order of a fresh table.
var DefaultColumns = []ColumnKey{
	ColumnName, ColumnAssignee, ColumnStatus, ColumnPriority, ColumnTags, ColumnDueDate, ColumnTimeLogged,
}

// CustomFieldColumn returns the column key of a custom-field definition.
func CustomFieldColumn(fieldID string) ColumnKey {
	return ColumnKey(customFieldColumnPrefix + fieldID)
}

// FilterKind says how a column is filtered.
type FilterKind string

const (
	// FilterText matches a case-insensitive substring.
	FilterText FilterKind = "text"
	// FilterSelect matches membership in a set of discrete values.
	FilterSelect FilterKind = "select"
)

// CellValue is the resolved value of one task in one column. Absent values
// never match an active filter and always sort last.
type CellValue struct {
	Present bool
	Text    string // display form, used for text filters and select membership
	Num     int64  // ordering key when Numeric
	Numeric bool
}

func textCell(s string) CellValue {
	return CellValue{Present: true, Text: s}
}

func numCell(n int64, display string) CellValue {
	return CellValue{Present: true, Text: display, Num: n, Numeric: true}
}

// Column resolves one column's value for any task.
type Column struct {
	Key    ColumnKey
	Label  string
	Filter FilterKind
	Value  func(models.Task, *Catalog) CellValue
	// Match, when set, replaces substring matching against Value().Text.
	Match func(t models.Task, c *Catalog, query string) bool
}

// Catalog resolves the users, tags and custom fields that tasks reference.
type Catalog struct {
	users  map[string]models.User
	tags   map[string]models.Tag
	fields map[string]models.CustomField
	order  []models.CustomField
}

// NewCatalog indexes the shared entities for column resolution.
func NewCatalog(users []models.User, tags []models.Tag, fields []models.CustomField) *Catalog {
	c := &Catalog{
		users:  make(map[string]models.User, len(users)),
		tags:   make(map[string]models.Tag, len(tags)),
		fields: make(map[string]models.CustomField, len(fields)),
		order:  append([]models.CustomField(nil), fields...),
	}
	for _, u := range users {
		c.users[u.ID] = u
	}
	for _, t := range tags {
		c.tags[t.ID] = t
	}
	for _, f := range fields {
		c.fields[f.ID] = f
	}
	return c
}

// UserName returns the name of a user, if it exists.
func (c *Catalog) UserName(id string) (string, bool) {
	u, ok := c.users[id]
	return u.Name, ok
}

// TagNames returns the names of the task's tags in tag-set order.
func (c *Catalog) TagNames(t models.Task) []string {
	names := make([]string, 0, len(t.TagIDs))
	for _, id := range t.TagIDs {
		if tag, ok := c.tags[id]; ok {
			names = append(names, tag.Name)
		}
	}
	return names
}

var builtinColumns = map[ColumnKey]Column{
	ColumnName: {
		Key: ColumnName, Label: "Task", Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue { return textCell(t.Name) },
	},
	ColumnDescription: {
		Key: ColumnDescription, Label: "Description", Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue { return optionalText(t.Description) },
	},
	ColumnAssignee: {
		Key: ColumnAssignee, Label: "Assignee", Filter: FilterSelect,
		Value: func(t models.Task, c *Catalog) CellValue { return userCell(c, t.AssigneeID) },
	},
	ColumnStatus: {
		Key: ColumnStatus, Label: "Status", Filter: FilterSelect,
		Value: func(t models.Task, _ *Catalog) CellValue {
			return numCell(int64(t.Status.Rank()), string(t.Status))
		},
	},
	ColumnPriority: {
		Key: ColumnPriority, Label: "Priority", Filter: FilterSelect,
		Value: func(t models.Task, _ *Catalog) CellValue {
			return numCell(int64(t.Priority.Rank()), string(t.Priority))
		},
	},
	ColumnTags: {
		Key: ColumnTags, Label: "Tags", Filter: FilterText,
		Value: func(t models.Task, c *Catalog) CellValue {
			names := c.TagNames(t)
			sort.Strings(names)
			return textCell(strings.Join(names, ", "))
		},
		Match: func(t models.Task, c *Catalog, query string) bool {
			for _, name := range c.TagNames(t) {
				if containsFold(name, query) {
					return true
				}
			}
			return false
		},
	},
	ColumnDueDate: {
		Key: ColumnDueDate, Label: "Due Date", Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue {
			if t.DueDate == nil {
				return CellValue{}
			}
			return numCell(t.DueDate.UnixNano(), FormatDate(*t.DueDate))
		},
	},
	ColumnDateAdded: {
		Key: ColumnDateAdded, Label: "Date Added", Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue {
			return numCell(t.DateAdded.UnixNano(), FormatDate(t.DateAdded))
		},
	},
	ColumnAddedBy: {
		Key: ColumnAddedBy, Label: "Added By", Filter: FilterSelect,
		Value: func(t models.Task, c *Catalog) CellValue { return userCell(c, t.AddedBy) },
	},
	ColumnTimeLogged: {
		Key: ColumnTimeLogged, Label: "Time Logged", Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue {
			return numCell(int64(t.TimeLogged), FormatDuration(t.TimeLogged))
		},
	},
}

// ResolveColumn looks up a built-in column or a custom-field column.
func (c *Catalog) ResolveColumn(key ColumnKey) (Column, error) {
	if col, ok := builtinColumns[key]; ok {
		return col, nil
	}
	fieldID, ok := strings.CutPrefix(string(key), customFieldColumnPrefix)
	if !ok {
		return Column{}, invalidOp("resolving column", "unknown column %q", key)
	}
	field, ok := c.fields[fieldID]
	if !ok {
		return Column{}, notFound("custom field", fieldID)
	}
	return Column{
		Key:    key,
		Label:  field.Name,
		Filter: FilterText,
		Value: func(t models.Task, _ *Catalog) CellValue {
			return optionalText(t.CustomFields[fieldID])
		},
	}, nil
}

// Columns returns the default columns followed by one column per custom
// field, in definition order.
func (c *Catalog) Columns() []Column {
	cols := make([]Column, 0, len(DefaultColumns)+len(c.order))
	for _, key := range DefaultColumns {
		cols = append(cols, builtinColumns[key])
	}
	for _, f := range c.order {
		col, _ := c.ResolveColumn(CustomFieldColumn(f.ID))
		cols = append(cols, col)
	}
	return cols
}

func userCell(c *Catalog, id string) CellValue {
	if id == "" {
		return CellValue{}
	}
	name, ok := c.UserName(id)
	if !ok {
		return CellValue{}
	}
	return textCell(name)
}

func optionalText(s string) CellValue {
	if s == "" {
		return CellValue{}
	}
	return textCell(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
