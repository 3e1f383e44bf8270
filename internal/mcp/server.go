// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the worktally workspace as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/internal/observability"
	"github.com/valter-silva-au/worktally/pkg/models"
)

// Server wraps a workspace and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	ws          core.Workspace
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
	now         func() time.Time
}

// NewServer creates a new MCP server over ws. metricsCalc and alertEngine may
// be nil, in which case the matching tools report that they are unavailable.
func NewServer(ws core.Workspace, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		ws:          ws,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tally", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves over stdio, blocking until the client disconnects or the context
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. T-3f2a9c1e"`
}

type taskOutput struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Status       string            `json:"status"`
	Priority     string            `json:"priority"`
	Assignee     string            `json:"assignee,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	DueDate      string            `json:"due_date,omitempty"`
	DateAdded    string            `json:"date_added"`
	AddedBy      string            `json:"added_by,omitempty"`
	TimeLogged   string            `json:"time_logged"`
	Parent       string            `json:"parent,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

type filterInput struct {
	Text   string   `json:"text,omitempty" jsonschema:"case-insensitive substring the cell must contain"`
	Values []string `json:"values,omitempty" jsonschema:"allowed cell values, e.g. statuses"`
}

type listRowsInput struct {
	Filters   map[string]filterInput `json:"filters,omitempty" jsonschema:"filters keyed by column, e.g. status or assignee or cf:<field id>"`
	Sort      string                 `json:"sort,omitempty" jsonschema:"column to sort siblings by"`
	Desc      bool                   `json:"desc,omitempty" jsonschema:"sort descending"`
	Expanded  []string               `json:"expanded,omitempty" jsonschema:"IDs of tasks whose children are shown"`
	ExpandAll bool                   `json:"expand_all,omitempty" jsonschema:"show every level of the tree"`
}

type rowOutput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Depth      int    `json:"depth"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	Assignee   string `json:"assignee,omitempty"`
	Tags       string `json:"tags,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
	TimeLogged string `json:"time_logged"`
	Total      string `json:"total"`
}

type listRowsOutput struct {
	Rows  []rowOutput `json:"rows"`
	Count int         `json:"count"`
}

type createTaskInput struct {
	Name        string   `json:"name" jsonschema:"task name"`
	Description string   `json:"description,omitempty"`
	Assignee    string   `json:"assignee,omitempty" jsonschema:"user ID"`
	Status      string   `json:"status,omitempty" jsonschema:"To Do, In Progress, In Review or Done"`
	Priority    string   `json:"priority,omitempty" jsonschema:"Low, Medium, High or Urgent"`
	Tags        []string `json:"tags,omitempty" jsonschema:"tag IDs"`
	DueDate     string   `json:"due_date,omitempty" jsonschema:"due date as YYYY-MM-DD"`
	Parent      string   `json:"parent,omitempty" jsonschema:"parent task ID for a subtask"`
}

type deleteTaskOutput struct {
	Deleted []string `json:"deleted"`
	Count   int      `json:"count"`
}

type stopTimerInput struct{}

type timerOutput struct {
	State    string `json:"state"`
	TaskID   string `json:"task_id,omitempty"`
	Stopped  string `json:"stopped,omitempty"`
	Credited string `json:"credited,omitempty"`
	Started  string `json:"started,omitempty"`
}

type totalTimeOutput struct {
	TaskID       string  `json:"task_id"`
	TotalSeconds float64 `json:"total_seconds"`
	Total        string  `json:"total"`
}

type getStatsInput struct{}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated    int               `json:"tasks_created"`
	TasksUpdated    int               `json:"tasks_updated"`
	TasksDeleted    int               `json:"tasks_deleted"`
	TimerSessions   int               `json:"timer_sessions"`
	TimersDiscarded int               `json:"timers_discarded"`
	TimeLogged      string            `json:"time_logged"`
	TimeByTask      map[string]string `json:"time_by_task"`
	EventCount      int               `json:"event_count"`
	OldestEvent     string            `json:"oldest_event,omitempty"`
	NewestEvent     string            `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
	TaskID      string `json:"task_id"`
	TaskName    string `json:"task_name"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_rows",
		Description: "List the visible task rows in display order, with optional per-column filters, a sibling sort and the set of expanded tasks.",
	}, s.handleListRows)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get one task by ID, including its own logged time.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task, or a subtask when parent is set. Status defaults to To Do and priority to Medium.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task and all of its descendants. Returns the deleted IDs.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_timer",
		Description: "Start the timer on a task, stop it if it is already running on that task, or switch it from another task.",
	}, s.handleToggleTimer)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "stop_timer",
		Description: "Stop the running timer and credit the elapsed time. Does nothing when idle.",
	}, s.handleStopTimer)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "total_time",
		Description: "Total logged time of a task including all of its descendants.",
	}, s.handleTotalTime)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Dashboard counters: totals, due today, overdue, completed, logged time and per-user workload.",
	}, s.handleGetStats)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Aggregated metrics from the event log: tasks created, updated and deleted, timer sessions and logged time.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue tasks, tasks due today, long-running timers, unassigned urgent tasks).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListRows(_ context.Context, _ *gomcp.CallToolRequest, input listRowsInput) (*gomcp.CallToolResult, listRowsOutput, error) {
	q := core.Query{Filters: make(core.FilterSpec, len(input.Filters))}
	for col, f := range input.Filters {
		q.Filters[core.ColumnKey(col)] = core.Filter{Text: f.Text, Values: f.Values}
	}
	if input.Sort != "" {
		dir := core.SortAscending
		if input.Desc {
			dir = core.SortDescending
		}
		q.Sort = &core.SortSpec{Column: core.ColumnKey(input.Sort), Direction: dir}
	}
	if input.ExpandAll {
		q.Expanded = core.ExpandAll(s.ws.Tasks())
	} else {
		q.Expanded = make(core.ExpandedSet, len(input.Expanded))
		for _, id := range input.Expanded {
			q.Expanded[id] = true
		}
	}

	rows, err := s.ws.VisibleRows(q)
	if err != nil {
		return errorResult(fmt.Sprintf("listing rows: %s", err)), listRowsOutput{Rows: []rowOutput{}}, nil
	}

	cat := s.catalog()
	out := listRowsOutput{
		Rows:  make([]rowOutput, len(rows)),
		Count: len(rows),
	}
	for i, r := range rows {
		out.Rows[i] = rowToOutput(r, cat)
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.ws.Task(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, s.catalog()), nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	in := core.NewTask{
		Name:        input.Name,
		Description: input.Description,
		AssigneeID:  input.Assignee,
		Status:      models.Status(input.Status),
		Priority:    models.Priority(input.Priority),
		TagIDs:      input.Tags,
		ParentID:    input.Parent,
	}
	if input.DueDate != "" {
		due, err := time.Parse(time.DateOnly, input.DueDate)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid due_date %q: want YYYY-MM-DD", input.DueDate)), taskOutput{}, nil
		}
		in.DueDate = &due
	}

	task, err := s.ws.CreateTask(in)
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task, s.catalog()), nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, deleteTaskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), deleteTaskOutput{Deleted: []string{}}, nil
	}

	deleted, err := s.ws.DeleteTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("deleting task %s: %s", input.TaskID, err)), deleteTaskOutput{Deleted: []string{}}, nil
	}
	return nil, deleteTaskOutput{Deleted: deleted, Count: len(deleted)}, nil
}

func (s *Server) handleToggleTimer(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, timerOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), timerOutput{}, nil
	}

	tr, err := s.ws.ToggleTimer(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("toggling timer on %s: %s", input.TaskID, err)), timerOutput{}, nil
	}
	return nil, s.timerToOutput(tr), nil
}

func (s *Server) handleStopTimer(_ context.Context, _ *gomcp.CallToolRequest, _ stopTimerInput) (*gomcp.CallToolResult, timerOutput, error) {
	tr, err := s.ws.StopTimer()
	if err != nil {
		return errorResult(fmt.Sprintf("stopping timer: %s", err)), timerOutput{}, nil
	}
	return nil, s.timerToOutput(tr), nil
}

func (s *Server) handleTotalTime(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, totalTimeOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), totalTimeOutput{}, nil
	}

	total, err := s.ws.TotalLoggedTime(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("totalling time for %s: %s", input.TaskID, err)), totalTimeOutput{}, nil
	}
	return nil, totalTimeOutput{
		TaskID:       input.TaskID,
		TotalSeconds: total.Seconds(),
		Total:        core.FormatDuration(total),
	}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, _ getStatsInput) (*gomcp.CallToolResult, core.Stats, error) {
	return nil, s.ws.Stats(), nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (no event log configured)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr, s.now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:    metrics.TasksCreated,
		TasksUpdated:    metrics.TasksUpdated,
		TasksDeleted:    metrics.TasksDeleted,
		TimerSessions:   metrics.TimerSessions,
		TimersDiscarded: metrics.TimersDiscarded,
		TimeLogged:      core.FormatDuration(metrics.TimeLogged),
		TimeByTask:      make(map[string]string, len(metrics.TimeByTask)),
		EventCount:      metrics.EventCount,
	}
	for id, d := range metrics.TimeByTask {
		out.TimeByTask[id] = core.FormatDuration(d)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
			TaskID:      a.TaskID,
			TaskName:    a.TaskName,
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func (s *Server) catalog() *core.Catalog {
	return core.NewCatalog(s.ws.Users(), s.ws.Tags(), s.ws.CustomFields())
}

func (s *Server) timerToOutput(tr core.TimerTransition) timerOutput {
	out := timerOutput{
		State:   string(core.TimerIdle),
		Stopped: tr.Stopped,
		Started: tr.Started,
	}
	if tr.Stopped != "" {
		out.Credited = core.FormatDuration(tr.Credited)
	}
	if active, ok := s.ws.ActiveTimer(); ok {
		out.State = string(core.TimerRunning)
		out.TaskID = active.TaskID
	}
	return out
}

func taskToOutput(t models.Task, cat *core.Catalog) taskOutput {
	out := taskOutput{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		Assignee:     displayUser(cat, t.AssigneeID),
		Tags:         cat.TagNames(t),
		DateAdded:    t.DateAdded.Format(time.RFC3339),
		AddedBy:      displayUser(cat, t.AddedBy),
		TimeLogged:   core.FormatDuration(t.TimeLogged),
		Parent:       t.ParentID,
		CustomFields: t.CustomFields,
	}
	if t.DueDate != nil {
		out.DueDate = t.DueDate.Format(time.DateOnly)
	}
	return out
}

func rowToOutput(r core.Row, cat *core.Catalog) rowOutput {
	out := rowOutput{
		ID:         r.Task.ID,
		Name:       r.Task.Name,
		Depth:      r.Depth,
		Status:     string(r.Task.Status),
		Priority:   string(r.Task.Priority),
		Assignee:   displayUser(cat, r.Task.AssigneeID),
		TimeLogged: core.FormatDuration(r.Task.TimeLogged),
		Total:      core.FormatDuration(r.Total),
	}
	if col, err := cat.ResolveColumn(core.ColumnTags); err == nil {
		out.Tags = col.Value(r.Task, cat).Text
	}
	if r.Task.DueDate != nil {
		out.DueDate = r.Task.DueDate.Format(time.DateOnly)
	}
	return out
}

// displayUser prefers a user's name and falls back to the raw ID for users
// that have since been removed.
func displayUser(cat *core.Catalog, id string) string {
	if name, ok := cat.UserName(id); ok {
		return name
	}
	return id
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{TimeByTask: make(map[string]string)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
