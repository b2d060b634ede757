package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// ErrNoActiveScope is the panic value raised when a TaskStore is used
// without a live session: a nil store, a store built without a persister,
// or a store that has been closed.
var ErrNoActiveScope = errors.New("task store used outside an active session")

var (
	// ErrTaskNotFound is returned by lookups for an unknown id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousID is returned when an id prefix matches several tasks.
	ErrAmbiguousID = errors.New("task id prefix is ambiguous")
)

// TaskPersister is the persistence adapter the store writes through.
// Implementations never fail: errors are logged and absorbed.
type TaskPersister interface {
	Load(ctx context.Context) []models.Task
	Save(ctx context.Context, tasks []models.Task)
	Clear(ctx context.Context)
}

// StoreOption configures a TaskStore.
type StoreOption func(*TaskStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TaskStore) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen TaskIDGenerator) StoreOption {
	return func(s *TaskStore) { s.ids = gen }
}

// WithEventLogger reports every mutation to log. Logging failures are
// ignored.
func WithEventLogger(log EventLogger) StoreOption {
	return func(s *TaskStore) { s.events = log }
}

// TaskStore is the authoritative in-memory task collection. Each mutation
// builds a new slice, swaps it in, and saves the whole collection before
// returning; readers only ever receive copies.
type TaskStore struct {
	mu        sync.Mutex
	persister TaskPersister
	tasks     []models.Task
	now       func() time.Time
	ids       TaskIDGenerator
	events    EventLogger
	closed    bool
}

// NewTaskStore hydrates a store from persister. It panics with
// ErrNoActiveScope if persister is nil.
func NewTaskStore(ctx context.Context, persister TaskPersister, opts ...StoreOption) *TaskStore {
	if persister == nil {
		panic(fmt.Errorf("creating task store: nil persister: %w", ErrNoActiveScope))
	}
	s := &TaskStore{
		persister: persister,
		now:       time.Now,
		ids:       NewTaskIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = persister.Load(ctx)
	if s.tasks == nil {
		s.tasks = []models.Task{}
	}
	return s
}

// lock acquires the store mutex after checking that the store is live.
func (s *TaskStore) lock() {
	if s == nil {
		panic(ErrNoActiveScope)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic(ErrNoActiveScope)
	}
}

// Close ends the session. Any later call on the store panics; closing twice
// is allowed.
func (s *TaskStore) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Tasks returns a snapshot of the collection in insertion order.
func (s *TaskStore) Tasks() []models.Task {
	s.lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the task with the given id.
func (s *TaskStore) Task(id string) (models.Task, bool) {
	s.lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// ResolveID expands a unique id prefix to the full id. An exact match wins
// over prefix matches.
func (s *TaskStore) ResolveID(prefix string) (string, error) {
	s.lock()
	defer s.mu.Unlock()

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("resolving task id: %w", ErrTaskNotFound)
	}
	var matches []string
	for _, t := range s.tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("resolving task id %q: %w", prefix, ErrTaskNotFound)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("resolving task id %q (%d matches): %w", prefix, len(matches), ErrAmbiguousID)
}

// AddTask creates a task from draft with a fresh id and
// createdAt = updatedAt = now, appends it and persists. An empty or unknown
// draft status becomes todo.
func (s *TaskStore) AddTask(ctx context.Context, draft models.TaskDraft) models.Task {
	s.lock()
	defer s.mu.Unlock()

	status := draft.Status
	if !status.Valid() {
		status = models.StatusTodo
	}
	now := s.now()
	task := models.Task{
		ID:          s.freshID(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Deadline:    draft.Deadline,
		Completed:   draft.Completed,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := make([]models.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	next = append(next, task)
	s.commit(ctx, next)

	s.logEvent(EventTaskCreated, map[string]any{
		"task_id": task.ID,
		"status":  string(task.Status),
	})
	return task
}

// UpdateTask merges the non-nil fields of update into the task and refreshes
// updatedAt. Unknown ids are ignored.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) {
	s.lock()
	defer s.mu.Unlock()

	after, ok := s.mutate(ctx, id, func(t *models.Task) bool {
		if update.Title != nil {
			t.Title = strings.TrimSpace(*update.Title)
		}
		if update.Description != nil {
			t.Description = *update.Description
		}
		if update.Deadline != nil {
			t.Deadline = *update.Deadline
		}
		if update.Completed != nil {
			t.Completed = *update.Completed
		}
		if update.Status != nil && update.Status.Valid() {
			t.Status = *update.Status
		}
		return true
	})
	if ok {
		s.logEvent(EventTaskUpdated, map[string]any{
			"task_id": id,
			"status":  string(after.Status),
		})
	}
}

// DeleteTask removes the task permanently. Unknown ids are ignored.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) {
	s.lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	next := make([]models.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.commit(ctx, next)

	s.logEvent(EventTaskDeleted, map[string]any{"task_id": id})
}

// CompleteTask sets the completion flag and refreshes updatedAt. Status is
// not touched. Unknown ids are ignored.
func (s *TaskStore) CompleteTask(ctx context.Context, id string, completed bool) {
	s.lock()
	defer s.mu.Unlock()

	after, ok := s.mutate(ctx, id, func(t *models.Task) bool {
		t.Completed = completed
		return true
	})
	if !ok {
		return
	}
	event := EventTaskCompleted
	if !completed {
		event = EventTaskReopened
	}
	s.logEvent(event, map[string]any{
		"task_id": id,
		"status":  string(after.Status),
	})
}

// MoveTask places the task in another board column and refreshes updatedAt.
// Dropping a task on its current column, an unknown id, or an unknown
// status is a no-op. Completion is not touched.
func (s *TaskStore) MoveTask(ctx context.Context, id string, status models.TaskStatus) {
	s.lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return
	}
	var from models.TaskStatus
	if _, ok := s.mutate(ctx, id, func(t *models.Task) bool {
		if t.Status == status {
			return false
		}
		from = t.Status
		t.Status = status
		return true
	}); ok {
		s.logEvent(EventTaskMoved, map[string]any{
			"task_id": id,
			"from":    string(from),
			"to":      string(status),
		})
	}
}

// Clear empties the collection and removes the durable slot.
func (s *TaskStore) Clear(ctx context.Context) {
	s.lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	s.tasks = []models.Task{}
	s.persister.Clear(ctx)
	s.logEvent(EventTasksCleared, map[string]any{"task_count": n})
}

// mutate applies change to a copy of the task with the given id. When change
// reports a modification, updatedAt is refreshed and the new collection is
// swapped in and saved. It returns the updated task and whether anything was
// committed. Must be called with s.mu held.
func (s *TaskStore) mutate(ctx context.Context, id string, change func(*models.Task) bool) (models.Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}

	next := make([]models.Task, len(s.tasks))
	copy(next, s.tasks)
	task := next[i]
	if !change(&task) {
		return models.Task{}, false
	}
	task.UpdatedAt = s.stamp(task.CreatedAt)
	next[i] = task
	s.commit(ctx, next)
	return task, true
}

// commit swaps in next and persists it. Must be called with s.mu held.
func (s *TaskStore) commit(ctx context.Context, next []models.Task) {
	s.tasks = next
	s.persister.Save(ctx, next)
}

// stamp returns the current time, never earlier than createdAt.
func (s *TaskStore) stamp(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// freshID draws ids until one is unused. Must be called with s.mu held.
func (s *TaskStore) freshID() string {
	for {
		id := s.ids.GenerateTaskID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *TaskStore) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(eventType, data)
}
