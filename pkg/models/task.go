package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the Kanban column a task is placed in.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inProgress"
	StatusDone       TaskStatus = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known board columns.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the column heading used by renderers.
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// StatusForCompletion is the status assigned to stored records that predate
// the status field.
func StatusForCompletion(completed bool) TaskStatus {
	if completed {
		return StatusDone
	}
	return StatusTodo
}

// ParseStatus accepts the stored spelling plus the common CLI spellings
// ("in_progress", "in-progress", "doing").
func ParseStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to-do", "to_do":
		return StatusTodo, nil
	case "inprogress", "in_progress", "in-progress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of todo, inProgress, done", s)
}

// Task is a unit of work tracked on the board. Tasks are created, mutated
// and removed only through core.TaskStore.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Deadline    time.Time  `json:"deadline" yaml:"deadline"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Status      TaskStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// TaskDraft holds the caller-supplied fields of a new task. Callers validate
// the title and deadline before handing a draft to the store.
type TaskDraft struct {
	Title       string
	Description string
	Deadline    time.Time
	Completed   bool
	Status      TaskStatus
}

// TaskUpdate is a partial update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Completed   *bool
	Status      *TaskStatus
}

// FilterMode selects which tasks a list view shows.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterActive    FilterMode = "active"
	FilterCompleted FilterMode = "completed"
)

// ParseFilter converts user input into a FilterMode.
func ParseFilter(s string) (FilterMode, error) {
	switch f := FilterMode(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("invalid filter %q: must be one of all, active, completed", s)
}

// SortKey selects the ordering of a list view.
type SortKey string

const (
	SortByDeadline  SortKey = "deadline"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
)

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deadline", "":
		return SortByDeadline, nil
	case "createdat", "created_at", "created":
		return SortByCreatedAt, nil
	case "title":
		return SortByTitle, nil
	}
	return "", fmt.Errorf("invalid sort key %q: must be one of deadline, createdAt, title", s)
}

// DeadlineStatus classifies a deadline relative to the current moment.
type DeadlineStatus string

const (
	DeadlineOverdue     DeadlineStatus = "overdue"
	DeadlineToday       DeadlineStatus = "today"
	DeadlineApproaching DeadlineStatus = "approaching"
	DeadlineUpcoming    DeadlineStatus = "upcoming"
)
