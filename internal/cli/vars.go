package cli

import (
	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/internal/observability"
	"github.com/valter-silva-au/worktally/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Config    *models.Config
	Workspace core.Workspace
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
