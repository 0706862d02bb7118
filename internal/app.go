// Package internal provides the App struct that wires all components of
// sockboard together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/sockboard/internal/cli"
	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/internal/integration"
	"github.com/valter-silva-au/sockboard/internal/observability"
	"github.com/valter-silva-au/sockboard/internal/storage"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// eventLogFileName is the append-only activity log in the base path.
const eventLogFileName = ".sockboard_events.jsonl"

// App holds all service dependencies for sockboard.
type App struct {
	BasePath string

	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	Store  storage.StateStore
	Engine *core.Engine

	// Table and Notifier are nil in local-only mode.
	Table    core.TaskTable
	Notifier core.ChangeNotifier

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator

	sqliteTable *integration.SQLiteTable
}

// NewApp creates and wires all components. basePath is the directory
// holding the board slot, the configuration file and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("initializing sockboard: %w", err)
	}
	app.Config = globalCfg
	if globalCfg.DeviceID != "" {
		// Persist the device id minted on first run so the event log
		// attribution stays stable across invocations.
		if _, statErr := os.Stat(filepath.Join(basePath, ".sockboard.yaml")); os.IsNotExist(statErr) {
			_ = app.ConfigMgr.Save(globalCfg)
		}
	}

	// --- Remote table ---
	switch {
	case globalCfg.Remote.Configured():
		app.Table = integration.NewSupabaseTable(globalCfg.Remote.URL, globalCfg.Remote.APIKey)
	case globalCfg.LocalTablePath != "":
		table, err := integration.NewSQLiteTable(globalCfg.LocalTablePath)
		if err != nil {
			return nil, fmt.Errorf("initializing sockboard: %w", err)
		}
		app.sqliteTable = table
		app.Table = table
	}
	if app.Table != nil {
		app.Notifier = integration.NewPollingNotifier(app.Table)
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, eventLogFileName)
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath, globalCfg.DeviceID)
	if err != nil {
		// Non-fatal: the board works without activity logging.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Engine ---
	app.Store = storage.NewStateStore(basePath)
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	app.Engine, err = core.NewEngine(core.EngineConfig{
		Store:    app.Store,
		Table:    app.Table,
		Notifier: app.Notifier,
		Events:   events,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing sockboard: %w", err)
	}

	if globalCfg.WarningDays > 0 && globalCfg.WarningDays != app.Engine.WarningDays() {
		_ = app.Engine.SetWarningDays(globalCfg.WarningDays)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Engine = app.Engine
	cli.ConfigMgr = app.ConfigMgr
	cli.Config = app.Config
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases the resources held by the App: the engine's timers and
// subscription, the event log handle and the shared table, if open.
func (a *App) Close() error {
	var firstErr error
	if a.Engine != nil {
		if err := a.Engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.sqliteTable != nil {
		if err := a.sqliteTable.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the data directory. SOCKBOARD_HOME wins; a
// directory in the current tree already holding a board comes next, so
// per-workshop checkouts keep working; otherwise ~/.sockboard.
func ResolveBasePath() string {
	if home := os.Getenv("SOCKBOARD_HOME"); home != "" {
		return home
	}

	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, ".sockboard.yaml")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".sockboard")
	}
	cwd, _ := os.Getwd()
	return cwd
}
