// Package api serves the workspace as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valter-silva-au/worktally/internal/core"
)

// Server is the worktally HTTP server.
type Server struct {
	ws     core.Workspace
	router *gin.Engine
}

// NewServer creates a server over ws with every route registered.
func NewServer(ws core.Workspace) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		router.Use(gin.Logger())
	}

	s := &Server{
		ws:     ws,
		router: router,
	}

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.GET("/tasks/:id/total", s.handleTotalTime)
		api.POST("/tasks/:id/reorder", s.handleReorder)

		api.POST("/rows", s.handleRows)
		api.GET("/columns", s.handleColumns)

		api.GET("/users", s.handleListUsers)
		api.POST("/users", s.handleAddUser)
		api.PUT("/users/:id", s.handleUpdateUser)
		api.DELETE("/users/:id", s.handleRemoveUser)

		api.GET("/tags", s.handleListTags)
		api.POST("/tags", s.handleAddTag)
		api.DELETE("/tags/:id", s.handleRemoveTag)

		api.GET("/fields", s.handleListFields)
		api.POST("/fields", s.handleAddField)
		api.DELETE("/fields/:id", s.handleRemoveField)

		api.GET("/timer", s.handleTimer)
		api.POST("/timer/toggle", s.handleToggleTimer)
		api.POST("/timer/stop", s.handleStopTimer)

		api.GET("/stats", s.handleStats)

		api.GET("/snapshot", s.handleExport)
		api.PUT("/snapshot", s.handleImport)

		api.GET("/actor", s.handleGetActor)
		api.PUT("/actor", s.handleSetActor)
	}

	return s
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}

// statusFor maps workspace errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidOperation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func failFor(c *gin.Context, err error) {
	fail(c, statusFor(err), err)
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
