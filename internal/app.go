// Package internal provides the App struct that wires all components of
// worktally together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/worktally/internal/cli"
	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/internal/observability"
	"github.com/valter-silva-au/worktally/internal/storage"
	"github.com/valter-silva-au/worktally/pkg/models"
)

// App holds all service dependencies for worktally.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Storage layer
	Snapshots storage.SnapshotStore

	// Core services
	Workspace core.Workspace

	// Observability
	EventLog    observability.EventLog
	Recorder    *observability.EventRecorder
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of worktally. basePath is the
// directory holding .tallyconfig, the seed snapshot and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventLog != "" {
		app.EventLog, err = observability.NewJSONLEventLog(resolvePath(basePath, cfg.EventLog))
		if err != nil {
			// Non-fatal: keep events in memory if the log file can't be opened.
			app.EventLog = observability.NewMemoryEventLog()
		}
	} else {
		app.EventLog = observability.NewMemoryEventLog()
	}
	app.Recorder = observability.NewEventRecorder(app.EventLog, nil)

	// --- Core services ---
	reg := core.NewRegistry(core.NewIDGenerator())
	app.Workspace = core.NewWorkspace(reg, app.Recorder, nil)

	// --- Seed snapshot ---
	app.Snapshots = storage.NewSnapshotStore(resolvePath(basePath, cfg.SeedFile))
	seed, err := app.Snapshots.Load()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("loading seed: %w", err)
	}
	if err := app.Workspace.Restore(seed); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("seeding workspace from %s: %w", app.Snapshots.Path(), err)
	}
	if cfg.Actor != "" {
		if err := app.Workspace.SetActor(cfg.Actor); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("applying config actor: %w", err)
		}
	}

	// --- Metrics and alerts ---
	app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	thresholds := observability.DefaultAlertThresholds()
	thresholds.TimerHours = cfg.Alerts.TimerHours
	thresholds.DueToday = cfg.Alerts.DueToday
	thresholds.UrgentUnassigned = cfg.Alerts.UrgentUnowned
	app.AlertEngine = observability.NewAlertEngine(app.Workspace, thresholds, nil)
	if cfg.Notifications.Enabled {
		app.Notifier = observability.NewNotifier(cfg.Notifications)
	}

	// --- Wire CLI package-level variables ---
	cli.Config = cfg
	cli.Workspace = app.Workspace

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

func resolvePath(basePath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ResolveBasePath determines the base directory for worktally data.
// It checks the TALLY_HOME env var, then walks up from the current
// directory looking for .tallyconfig, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TALLY_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
