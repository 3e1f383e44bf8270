package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/pkg/models"
)

// --- Request and response bodies ---

// updateTaskRequest patches a task. Absent fields are left unchanged.
type updateTaskRequest struct {
	Name         *string            `json:"name"`
	Description  *string            `json:"description"`
	Assignee     *string            `json:"assignee"`
	Status       *models.Status     `json:"status"`
	Priority     *models.Priority   `json:"priority"`
	Tags         *[]string          `json:"tags"`
	DueDate      *time.Time         `json:"due_date"`
	ClearDueDate bool               `json:"clear_due_date"`
	CustomFields *map[string]string `json:"custom_fields"`
}

type reorderRequest struct {
	Target string `json:"target" binding:"required"`
}

type rowsRequest struct {
	Filters   core.FilterSpec `json:"filters"`
	Sort      *core.SortSpec  `json:"sort"`
	Expanded  []string        `json:"expanded"`
	ExpandAll bool            `json:"expand_all"`
}

type rowResponse struct {
	Task         models.Task `json:"task"`
	Depth        int         `json:"depth"`
	TotalSeconds float64     `json:"total_s"`
	Total        string      `json:"total"`
}

type columnResponse struct {
	Key    core.ColumnKey  `json:"key"`
	Label  string          `json:"label"`
	Filter core.FilterKind `json:"filter"`
}

type userRequest struct {
	Name      string `json:"name"`
	JobTitle  string `json:"job_title"`
	AvatarURL string `json:"avatar_url"`
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type fieldRequest struct {
	Name string `json:"name"`
}

type timerRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

type timerResponse struct {
	State          core.TimerState `json:"state"`
	TaskID         string          `json:"task_id,omitempty"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	ElapsedSeconds float64         `json:"elapsed_s"`
	Elapsed        string          `json:"elapsed"`
	Stopped        string          `json:"stopped,omitempty"`
	CreditedSecs   float64         `json:"credited_s,omitempty"`
	Started        string          `json:"started,omitempty"`
}

type actorRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// --- Tasks ---

func (s *Server) handleListTasks(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.Tasks())
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.ws.Task(c.Param("id"))
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, task)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in core.NewTask
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.ws.CreateTask(in)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.ws.Task(c.Param("id"))
	if err != nil {
		failFor(c, err)
		return
	}
	req.apply(&task)

	updated, err := s.ws.UpdateTask(task)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

func (r updateTaskRequest) apply(t *models.Task) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Assignee != nil {
		t.AssigneeID = *r.Assignee
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Tags != nil {
		t.TagIDs = *r.Tags
	}
	if r.DueDate != nil {
		t.DueDate = r.DueDate
	}
	if r.ClearDueDate {
		t.DueDate = nil
	}
	if r.CustomFields != nil {
		t.CustomFields = *r.CustomFields
	}
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	deleted, err := s.ws.DeleteTask(c.Param("id"))
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": deleted, "count": len(deleted)})
}

func (s *Server) handleTotalTime(c *gin.Context) {
	id := c.Param("id")
	total, err := s.ws.TotalLoggedTime(id)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"task_id": id,
		"total_s": total.Seconds(),
		"total":   core.FormatDuration(total),
	})
}

// handleReorder always answers 200; moved reports whether anything changed.
func (s *Server) handleReorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	moved := s.ws.ReorderSiblings(c.Param("id"), req.Target)
	ok(c, http.StatusOK, gin.H{"moved": moved})
}

// --- Rows ---

func (s *Server) handleRows(c *gin.Context) {
	var req rowsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}

	q := core.Query{Filters: req.Filters, Sort: req.Sort}
	if req.ExpandAll {
		q.Expanded = core.ExpandAll(s.ws.Tasks())
	} else {
		q.Expanded = make(core.ExpandedSet, len(req.Expanded))
		for _, id := range req.Expanded {
			q.Expanded[id] = true
		}
	}

	rows, err := s.ws.VisibleRows(q)
	if err != nil {
		failFor(c, err)
		return
	}
	out := make([]rowResponse, len(rows))
	for i, r := range rows {
		out[i] = rowResponse{
			Task:         r.Task,
			Depth:        r.Depth,
			TotalSeconds: r.Total.Seconds(),
			Total:        core.FormatDuration(r.Total),
		}
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleColumns(c *gin.Context) {
	cols := s.ws.Columns()
	out := make([]columnResponse, len(cols))
	for i, col := range cols {
		out[i] = columnResponse{Key: col.Key, Label: col.Label, Filter: col.Filter}
	}
	ok(c, http.StatusOK, out)
}

// --- Users, tags and custom fields ---

func (s *Server) handleListUsers(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.Users())
}

func (s *Server) handleAddUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	u, err := s.ws.AddUser(core.UserInput{Name: req.Name, JobTitle: req.JobTitle, AvatarURL: req.AvatarURL})
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	u := models.User{ID: c.Param("id"), Name: req.Name, JobTitle: req.JobTitle, AvatarURL: req.AvatarURL}
	updated, err := s.ws.UpdateUser(u)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

func (s *Server) handleRemoveUser(c *gin.Context) {
	if err := s.ws.RemoveUser(c.Param("id")); err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"removed": c.Param("id")})
}

func (s *Server) handleListTags(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.Tags())
}

func (s *Server) handleAddTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	tag, err := s.ws.AddTag(core.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusCreated, tag)
}

func (s *Server) handleRemoveTag(c *gin.Context) {
	if err := s.ws.RemoveTag(c.Param("id")); err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"removed": c.Param("id")})
}

func (s *Server) handleListFields(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.CustomFields())
}

func (s *Server) handleAddField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	f, err := s.ws.AddCustomField(req.Name)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusCreated, f)
}

func (s *Server) handleRemoveField(c *gin.Context) {
	if err := s.ws.RemoveCustomField(c.Param("id")); err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"removed": c.Param("id")})
}

// --- Timer ---

func (s *Server) handleTimer(c *gin.Context) {
	ok(c, http.StatusOK, s.timerState(core.TimerTransition{}))
}

func (s *Server) handleToggleTimer(c *gin.Context) {
	var req timerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	tr, err := s.ws.ToggleTimer(req.TaskID)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, s.timerState(tr))
}

func (s *Server) handleStopTimer(c *gin.Context) {
	tr, err := s.ws.StopTimer()
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, s.timerState(tr))
}

func (s *Server) timerState(tr core.TimerTransition) timerResponse {
	out := timerResponse{
		State:        core.TimerIdle,
		Elapsed:      core.FormatTimer(0),
		Stopped:      tr.Stopped,
		CreditedSecs: tr.Credited.Seconds(),
		Started:      tr.Started,
	}
	if active, running := s.ws.ActiveTimer(); running {
		elapsed := s.ws.Elapsed()
		start := active.StartTime
		out.State = core.TimerRunning
		out.TaskID = active.TaskID
		out.StartedAt = &start
		out.ElapsedSeconds = elapsed.Seconds()
		out.Elapsed = core.FormatTimer(elapsed)
	}
	return out
}

// --- Stats, snapshots and actor ---

func (s *Server) handleStats(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.Stats())
}

func (s *Server) handleExport(c *gin.Context) {
	ok(c, http.StatusOK, s.ws.Snapshot())
}

// handleImport replaces the whole workspace. A snapshot that fails
// validation is rejected and the workspace is left as it was.
func (s *Server) handleImport(c *gin.Context) {
	var snap models.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.ws.Restore(snap); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"users":  len(snap.Users),
		"tags":   len(snap.Tags),
		"fields": len(snap.CustomFields),
		"tasks":  len(snap.Tasks),
	})
}

func (s *Server) handleGetActor(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"user_id": s.ws.Actor()})
}

func (s *Server) handleSetActor(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := s.ws.SetActor(req.UserID); err != nil {
		failFor(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user_id": req.UserID})
}
