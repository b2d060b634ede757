package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

const testKey = "taskManager_tasks"

func newTestRepo(t *testing.T) (*TaskRepository, *MemorySlot, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	slot := NewMemorySlot()
	return NewTaskRepository(slot, testKey, logger), slot, hook
}

func hasLog(hook *test.Hook, level logrus.Level, substr string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func sampleTasks() []models.Task {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return []models.Task{
		{
			ID:          "a1",
			Title:       "Pay bills",
			Description: "electricity",
			Deadline:    time.Date(2025, 3, 11, 23, 59, 59, 0, time.UTC),
			Status:      models.StatusTodo,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
		{
			ID:        "b2",
			Title:     "Book flights",
			Deadline:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Completed: true,
			Status:    models.StatusInProgress,
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
	}
}

func TestTaskRepository_LoadAbsent(t *testing.T) {
	repo, _, hook := newTestRepo(t)

	tasks := repo.Load(context.Background())
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", tasks)
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("absent slot must not log, got %v", hook.AllEntries())
	}
}

func TestTaskRepository_SaveLoadRoundTrip(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()
	want := sampleTasks()

	repo.Save(ctx, want)
	got := repo.Load(ctx)

	if len(got) != len(want) {
		t.Fatalf("loaded %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if !sameTask(got[i], want[i]) {
			t.Errorf("task %d:\n got  %+v\n want %+v", i, got[i], want[i])
		}
	}
}

func TestTaskRepository_MigratesWithoutRewriting(t *testing.T) {
	repo, slot, _ := newTestRepo(t)
	ctx := context.Background()
	legacy := `[{"id":"1","title":"old","description":"","deadline":"2025-01-01T00:00:00Z","completed":true,"createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}]`
	if err := slot.Put(ctx, testKey, []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	tasks := repo.Load(ctx)
	if len(tasks) != 1 || tasks[0].Status != models.StatusDone {
		t.Fatalf("expected migrated done task, got %+v", tasks)
	}

	data, _, _ := slot.Get(ctx, testKey)
	if string(data) != legacy {
		t.Errorf("Load rewrote storage: %s", data)
	}
}

func TestTaskRepository_CorruptPayloadPreserved(t *testing.T) {
	repo, slot, hook := newTestRepo(t)
	ctx := context.Background()
	if err := slot.Put(ctx, testKey, []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}

	tasks := repo.Load(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %v", tasks)
	}
	data, found, _ := slot.Get(ctx, testKey+".corrupt")
	if !found || string(data) != `{not json` {
		t.Errorf("corrupt payload not preserved: found=%v data=%q", found, data)
	}
	if !hasLog(hook, logrus.ErrorLevel, "corrupt") {
		t.Error("expected an error log for the corrupt payload")
	}
}

func TestTaskRepository_SkipsBadRecordsAndDuplicates(t *testing.T) {
	repo, slot, hook := newTestRepo(t)
	ctx := context.Background()
	payload := `[
		{"id":"1","title":"a","deadline":"2025-01-01T00:00:00Z","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","status":"todo"},
		{"id":"2","title":"b","deadline":"whenever","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","status":"todo"},
		{"id":"1","title":"dup","deadline":"2025-01-01T00:00:00Z","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z","status":"done"}
	]`
	if err := slot.Put(ctx, testKey, []byte(payload)); err != nil {
		t.Fatal(err)
	}

	tasks := repo.Load(ctx)
	if len(tasks) != 1 || tasks[0].Title != "a" {
		t.Fatalf("expected only the first task, got %+v", tasks)
	}
	if !hasLog(hook, logrus.WarnLevel, "skipping unreadable record") {
		t.Error("expected a warning for the unreadable record")
	}
	if !hasLog(hook, logrus.WarnLevel, "duplicate id") {
		t.Error("expected a warning for the duplicate id")
	}
}

func TestTaskRepository_ReadFailureLogged(t *testing.T) {
	repo, slot, hook := newTestRepo(t)
	slot.FailGet = errors.New("disk on fire")

	tasks := repo.Load(context.Background())
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %v", tasks)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected error log, got %v", entry)
	}
	if entry.Data["slot_key"] != testKey {
		t.Errorf("slot_key field = %v, want %s", entry.Data["slot_key"], testKey)
	}
}

func TestTaskRepository_SaveFailureSwallowed(t *testing.T) {
	repo, slot, hook := newTestRepo(t)
	ctx := context.Background()
	repo.Save(ctx, sampleTasks()[:1])

	slot.FailPut = errors.New("quota exceeded")
	repo.Save(ctx, sampleTasks())

	if !hasLog(hook, logrus.ErrorLevel, "saving tasks") {
		t.Error("expected an error log for the failed save")
	}
	slot.FailPut = nil
	if got := repo.Load(ctx); len(got) != 1 {
		t.Errorf("failed save changed stored state: %d tasks", len(got))
	}
}

func TestTaskRepository_ClearIdempotent(t *testing.T) {
	repo, _, hook := newTestRepo(t)
	ctx := context.Background()
	repo.Save(ctx, sampleTasks())

	repo.Clear(ctx)
	repo.Clear(ctx)

	if got := repo.Load(ctx); len(got) != 0 {
		t.Errorf("expected empty after Clear, got %d tasks", len(got))
	}
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected log entries: %v", hook.AllEntries())
	}
}

func TestTaskRepository_NilLogger(t *testing.T) {
	slot := NewMemorySlot()
	slot.FailGet = errors.New("boom")
	repo := NewTaskRepository(slot, testKey, nil)
	if got := repo.Load(context.Background()); len(got) != 0 {
		t.Errorf("expected empty collection, got %v", got)
	}
	if repo.Key() != testKey {
		t.Errorf("Key() = %q", repo.Key())
	}
}

func TestTaskRepository_FileSlotEndToEnd(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	NewTaskRepository(slot, testKey, logger).Save(ctx, sampleTasks())
	got := NewTaskRepository(slot, testKey, logger).Load(ctx)
	if len(got) != 2 || got[1].Status != models.StatusInProgress || !got[1].Completed {
		t.Errorf("unexpected reload: %+v", got)
	}
}
