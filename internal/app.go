// Package internal provides the App struct that wires all components of
// taskboard together for one session and initializes the CLI layer.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/taskboard/internal/cli"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// App is one taskboard session. The TaskStore it holds is valid from NewApp
// until Close.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Logging
	Logger    *logrus.Logger
	logCloser io.Closer

	// Storage layer
	Slot     storage.Slot
	TaskRepo *storage.TaskRepository

	// Core
	Store *core.TaskStore

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp loads configuration, opens the durable slot, hydrates the task
// store and hands it to the CLI layer.
func NewApp(ctx context.Context, basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Logging ---
	app.Logger, app.logCloser, err = observability.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	log := app.Logger.WithField("base_path", basePath)

	// --- Storage layer ---
	app.Slot, err = storage.OpenSlot(ctx, cfg.Storage)
	if err != nil {
		_ = app.logCloser.Close()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	app.TaskRepo = storage.NewTaskRepository(app.Slot, cfg.Storage.Key, app.Logger)

	// --- Observability ---
	var evtAdapter core.EventLogger
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, ".taskboard_events.jsonl"))
		if err != nil {
			// Non-fatal: run without the activity log.
			log.WithError(err).Warn("event log disabled")
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}

	// --- Core ---
	opts := []core.StoreOption{}
	if evtAdapter != nil {
		opts = append(opts, core.WithEventLogger(evtAdapter))
	}
	app.Store = core.NewTaskStore(ctx, app.TaskRepo, opts...)
	log.WithFields(logrus.Fields{
		"backend":    cfg.Storage.Backend,
		"task_count": len(app.Store.Tasks()),
	}).Info("session opened")

	// --- CLI wiring ---
	cli.Store = app.Store
	cli.MetricsCalc = app.MetricsCalc
	cli.ViewConfig = cfg.Views

	return app, nil
}

// Close ends the session: the store rejects further use and the slot, event
// log and log file are released.
func (a *App) Close() error {
	a.Store.Close()
	if cli.Store == a.Store {
		cli.Store = nil
		cli.MetricsCalc = nil
	}

	var errs []error
	if a.EventLog != nil {
		errs = append(errs, a.EventLog.Close())
	}
	if a.Slot != nil {
		errs = append(errs, a.Slot.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the taskboard data directory: TASKBOARD_HOME if
// set, else the nearest ancestor of the working directory containing
// .taskboard.yaml, else ~/.taskboard.
func ResolveBasePath() string {
	if home := os.Getenv("TASKBOARD_HOME"); home != "" {
		return home
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
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
		return filepath.Join(home, ".taskboard")
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	taskID, _ := data["task_id"].(string)
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		TaskID:  taskID,
		Message: eventType,
		Data:    data,
	})
}
