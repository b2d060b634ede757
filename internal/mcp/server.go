// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task store as MCP tools for AI assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/pkg/models"
	"golang.org/x/text/language"
)

// Server wraps the session's task store and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	store       *core.TaskStore
	metricsCalc observability.MetricsCalculator
	locale      language.Tag
	now         func() time.Time
}

// NewServer creates a new MCP server over store. metricsCalc may be nil if
// the event log is disabled.
func NewServer(store *core.TaskStore, metricsCalc observability.MetricsCalculator, locale language.Tag, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:       store,
		metricsCalc: metricsCalc,
		locale:      locale,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP on stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Deadline       string `json:"deadline"`
	DeadlineStatus string `json:"deadline_status,omitempty"`
	Completed      bool   `json:"completed"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"the task ID or a unique prefix of it"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"all, active or completed (default all)"`
	Sort   string `json:"sort,omitempty" jsonschema:"deadline, createdAt or title (default deadline)"`
	Status string `json:"status,omitempty" jsonschema:"only tasks in this board column: todo, inProgress or done"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Title       string `json:"title" jsonschema:"the task title"`
	Deadline    string `json:"deadline" jsonschema:"YYYY-MM-DD (due at the end of that day), RFC 3339, today or tomorrow"`
	Description string `json:"description,omitempty" jsonschema:"optional longer description"`
	Status      string `json:"status,omitempty" jsonschema:"initial column: todo, inProgress or done (default todo)"`
	Completed   bool   `json:"completed,omitempty" jsonschema:"create the task already completed"`
}

type updateTaskInput struct {
	TaskID      string  `json:"task_id" jsonschema:"the task ID or a unique prefix of it"`
	Title       *string `json:"title,omitempty" jsonschema:"new title"`
	Description *string `json:"description,omitempty" jsonschema:"new description; empty clears it"`
	Deadline    *string `json:"deadline,omitempty" jsonschema:"new deadline, same formats as add_task"`
}

type completeTaskInput struct {
	TaskID    string `json:"task_id" jsonschema:"the task ID or a unique prefix of it"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"true to complete (default), false to reopen"`
}

type moveTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task ID or a unique prefix of it"`
	Status string `json:"status" jsonschema:"target column: todo, inProgress or done"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type getBoardInput struct{}

type columnOutput struct {
	Status string       `json:"status"`
	Label  string       `json:"label"`
	Tasks  []taskOutput `json:"tasks"`
	Count  int          `json:"count"`
}

type boardOutput struct {
	Columns []columnOutput `json:"columns"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksReopened  int            `json:"tasks_reopened"`
	TasksDeleted   int            `json:"tasks_deleted"`
	MovesByStatus  map[string]int `json:"moves_by_status"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, optionally filtered by completion or board column and sorted by deadline, creation time or title.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get one task by ID or unique ID prefix.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Create a task with a title and deadline. Returns the created task including its new ID.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Change a task's title, description or deadline. Omitted fields are left unchanged.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed, or reopen it with completed=false. The board column is not changed.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "move_task",
		Description: "Move a task to another board column (todo, inProgress, done). Completion is not changed.",
	}, s.handleMoveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task permanently.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_board",
		Description: "Get the Kanban board: the todo, inProgress and done columns with their tasks.",
	}, s.handleGetBoard)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get activity counts from the event log: tasks created, updated, completed, reopened, deleted and moved.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter, err := models.ParseFilter(input.Filter)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}
	sortKey, err := models.ParseSortKey(input.Sort)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	tasks := core.FilterTasks(s.store.Tasks(), filter)
	if input.Status != "" {
		status, err := models.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		tasks = core.GroupByStatus(tasks)[status]
	}
	tasks = core.SortTasks(tasks, sortKey, s.locale)

	return nil, listTasksOutput{Tasks: s.toOutputs(tasks), Count: len(tasks)}, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, res := s.resolve(input.TaskID)
	if res != nil {
		return res, taskOutput{}, nil
	}
	return nil, s.toOutput(task), nil
}

func (s *Server) handleAddTask(ctx context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errorResult("title is required"), taskOutput{}, nil
	}
	deadline, err := core.ParseDeadline(input.Deadline, s.now())
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	status := models.StatusTodo
	if input.Status != "" {
		if status, err = models.ParseStatus(input.Status); err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
	}

	task := s.store.AddTask(ctx, models.TaskDraft{
		Title:       title,
		Description: input.Description,
		Deadline:    deadline,
		Completed:   input.Completed,
		Status:      status,
	})
	return nil, s.toOutput(task), nil
}

func (s *Server) handleUpdateTask(ctx context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, res := s.resolve(input.TaskID)
	if res != nil {
		return res, taskOutput{}, nil
	}

	var update models.TaskUpdate
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return errorResult("title must not be empty"), taskOutput{}, nil
		}
		update.Title = &title
	}
	update.Description = input.Description
	if input.Deadline != nil {
		deadline, err := core.ParseDeadline(*input.Deadline, s.now())
		if err != nil {
			return errorResult(err.Error()), taskOutput{}, nil
		}
		update.Deadline = &deadline
	}
	if update.Title == nil && update.Description == nil && update.Deadline == nil {
		return errorResult("nothing to change: give title, description or deadline"), taskOutput{}, nil
	}

	s.store.UpdateTask(ctx, task.ID, update)
	return s.current(task.ID)
}

func (s *Server) handleCompleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input completeTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, res := s.resolve(input.TaskID)
	if res != nil {
		return res, taskOutput{}, nil
	}
	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}
	s.store.CompleteTask(ctx, task.ID, completed)
	return s.current(task.ID)
}

func (s *Server) handleMoveTask(ctx context.Context, _ *gomcp.CallToolRequest, input moveTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, res := s.resolve(input.TaskID)
	if res != nil {
		return res, taskOutput{}, nil
	}
	status, err := models.ParseStatus(input.Status)
	if err != nil {
		return errorResult(err.Error()), taskOutput{}, nil
	}
	s.store.MoveTask(ctx, task.ID, status)
	return s.current(task.ID)
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	task, res := s.resolve(input.TaskID)
	if res != nil {
		return res, messageOutput{}, nil
	}
	s.store.DeleteTask(ctx, task.ID)
	return nil, messageOutput{Message: fmt.Sprintf("task %s deleted", task.ID)}, nil
}

func (s *Server) handleGetBoard(_ context.Context, _ *gomcp.CallToolRequest, _ getBoardInput) (*gomcp.CallToolResult, boardOutput, error) {
	columns := core.BoardColumns(s.store.Tasks())
	out := boardOutput{Columns: make([]columnOutput, len(columns))}
	for i, c := range columns {
		out.Columns[i] = columnOutput{
			Status: string(c.Status),
			Label:  c.Status.Label(),
			Tasks:  s.toOutputs(c.Tasks),
			Count:  len(c.Tasks),
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr, s.now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksUpdated:   metrics.TasksUpdated,
		TasksCompleted: metrics.TasksCompleted,
		TasksReopened:  metrics.TasksReopened,
		TasksDeleted:   metrics.TasksDeleted,
		MovesByStatus:  metrics.MovesByStatus,
		EventCount:     metrics.EventCount,
	}
	if out.MovesByStatus == nil {
		out.MovesByStatus = make(map[string]int)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// resolve looks up a task by ID or prefix, returning a tool error result
// when it cannot.
func (s *Server) resolve(taskID string) (models.Task, *gomcp.CallToolResult) {
	if strings.TrimSpace(taskID) == "" {
		return models.Task{}, errorResult("task_id is required")
	}
	id, err := s.store.ResolveID(taskID)
	if err != nil {
		if errors.Is(err, core.ErrAmbiguousID) {
			return models.Task{}, errorResult(fmt.Sprintf("task_id %q matches several tasks; give more characters", taskID))
		}
		return models.Task{}, errorResult(fmt.Sprintf("task %s not found", taskID))
	}
	task, ok := s.store.Task(id)
	if !ok {
		return models.Task{}, errorResult(fmt.Sprintf("task %s not found", taskID))
	}
	return task, nil
}

// current returns the stored state of id after a mutation.
func (s *Server) current(id string) (*gomcp.CallToolResult, taskOutput, error) {
	task, ok := s.store.Task(id)
	if !ok {
		return errorResult(fmt.Sprintf("task %s not found", id)), taskOutput{}, nil
	}
	return nil, s.toOutput(task), nil
}

func (s *Server) toOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline.Format(time.RFC3339),
		Completed:   t.Completed,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if !t.Completed {
		out.DeadlineStatus = string(core.ClassifyDeadline(t.Deadline, s.now()))
	}
	return out
}

func (s *Server) toOutputs(tasks []models.Task) []taskOutput {
	out := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		out[i] = s.toOutput(t)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{MovesByStatus: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
