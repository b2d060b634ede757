package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// testNow is a Tuesday morning in the local zone.
var testNow = time.Date(2025, 3, 11, 10, 0, 0, 0, time.Local)

// setupSession installs a fresh store over an in-memory slot as the CLI
// session and restores the previous session when the test ends.
func setupSession(t *testing.T) *core.TaskStore {
	t.Helper()
	repo := storage.NewTaskRepository(storage.NewMemorySlot(), core.DefaultStorageKey, nil)
	store := core.NewTaskStore(context.Background(), repo,
		core.WithClock(func() time.Time { return testNow }),
		core.WithIDGenerator(core.NewSequentialTaskIDGenerator("t", 2)),
	)

	origStore, origMetrics, origView, origNow := Store, MetricsCalc, ViewConfig, nowFunc
	t.Cleanup(func() {
		Store, MetricsCalc, ViewConfig, nowFunc = origStore, origMetrics, origView, origNow
	})
	Store = store
	MetricsCalc = nil
	ViewConfig = models.ViewConfig{Locale: "en", DefaultSort: models.SortByDeadline, DefaultFilter: models.FilterAll}
	nowFunc = func() time.Time { return testNow }
	return store
}

// seed adds a task due days after testNow's local day ends.
func seed(t *testing.T, store *core.TaskStore, title string, days int, status models.TaskStatus, completed bool) models.Task {
	t.Helper()
	y, m, d := testNow.Date()
	deadline := time.Date(y, m, d+days, 23, 59, 59, 0, time.Local)
	return store.AddTask(context.Background(), models.TaskDraft{
		Title:     title,
		Deadline:  deadline,
		Status:    status,
		Completed: completed,
	})
}

// runCmd resets cmd's flags to their defaults, applies flags, and runs
// RunE with output captured.
func runCmd(t *testing.T, cmd *cobra.Command, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	resetFlags(cmd)
	t.Cleanup(func() { resetFlags(cmd) })
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	defer cmd.SetOut(nil)
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// fakeMetrics returns fixed metrics and records the window it was asked for.
type fakeMetrics struct {
	metrics *observability.Metrics
	err     error
	since   time.Time
}

func (f *fakeMetrics) Calculate(since time.Time) (*observability.Metrics, error) {
	f.since = since
	return f.metrics, f.err
}
