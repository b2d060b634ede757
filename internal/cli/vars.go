package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/pkg/models"
	"golang.org/x/text/language"
)

// Session services, set by internal.NewApp and cleared by App.Close.
var (
	Store       *core.TaskStore
	MetricsCalc observability.MetricsCalculator
	ViewConfig  = models.ViewConfig{
		Locale:        "en",
		DefaultSort:   models.SortByDeadline,
		DefaultFilter: models.FilterAll,
	}
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

var errNoSession = errors.New("task store not initialized")

// requireStore returns the session store or an error when the command runs
// outside a session.
func requireStore() (*core.TaskStore, error) {
	if Store == nil {
		return nil, errNoSession
	}
	return Store, nil
}

// cmdContext returns the command context, or Background when the command
// is invoked directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolveTask expands an id or unique id prefix and returns the task.
func resolveTask(store *core.TaskStore, arg string) (models.Task, error) {
	id, err := store.ResolveID(arg)
	if err != nil {
		return models.Task{}, err
	}
	task, ok := store.Task(id)
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, core.ErrTaskNotFound)
	}
	return task, nil
}

// viewLocale returns the configured collation locale, falling back to
// English.
func viewLocale() language.Tag {
	tag, err := language.Parse(ViewConfig.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// formatDate renders a deadline as "Mar 11, 2025".
func formatDate(t time.Time) string {
	return t.Local().Format("Jan 2, 2006")
}

// formatDateTime renders a timestamp as "Mar 11, 2025, 10:30 AM".
func formatDateTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006, 3:04 PM")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
