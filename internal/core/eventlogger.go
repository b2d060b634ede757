package core

// EventLogger is the subset of the observability event log that the task
// store needs. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types reported by TaskStore.
const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskCompleted = "task.completed"
	EventTaskReopened  = "task.reopened"
	EventTaskMoved     = "task.moved"
	EventTaskDeleted   = "task.deleted"
	EventTasksCleared  = "tasks.cleared"
)
