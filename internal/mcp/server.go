// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the sock board as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/internal/observability"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// Server wraps the board engine and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	engine      *core.Engine
	metricsCalc observability.MetricsCalculator
}

// NewServer creates an MCP server around the given engine. metricsCalc may
// be nil when no event log is configured.
func NewServer(engine *core.Engine, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		engine:      engine,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "sockboard", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the sample task identifier (e.g. SK-2024-001)"`
}

type taskOutput struct {
	ID             string   `json:"id"`
	Size           string   `json:"size,omitempty"`
	Color          string   `json:"color,omitempty"`
	Other          string   `json:"other,omitempty"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	Deadline       string   `json:"deadline,omitempty"`
	Notes          []string `json:"notes,omitempty"`
	ProcessNotes   []string `json:"process_notes,omitempty"`
	HasBeenRevised bool     `json:"has_been_revised,omitempty"`
	Created        string   `json:"created"`
	Updated        string   `json:"updated"`
}

type listTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter by status (preparing, connecting, material_prep, sampling, post_processing, completed, revision)"`
	Priority string `json:"priority,omitempty" jsonschema:"filter by priority (urgent, high, normal, low)"`
	Search   string `json:"search,omitempty" jsonschema:"case-insensitive text match over id and specs"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type createTaskInput struct {
	TaskID   string `json:"task_id" jsonschema:"required,the new task identifier"`
	Size     string `json:"size,omitempty" jsonschema:"sock size spec, e.g. 39-42"`
	Color    string `json:"color,omitempty" jsonschema:"yarn color spec"`
	Other    string `json:"other,omitempty" jsonschema:"free-form spec details"`
	Priority string `json:"priority,omitempty" jsonschema:"urgent, high, normal or low (default normal)"`
	Deadline string `json:"deadline,omitempty" jsonschema:"RFC 3339 deadline"`
}

type createTaskOutput struct {
	Message string `json:"message"`
}

type updateTaskStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the sample task identifier"`
	Status string `json:"status" jsonschema:"required,the new status (preparing, connecting, material_prep, sampling, post_processing, completed, revision)"`
}

type updateTaskStatusOutput struct {
	Message string `json:"message"`
}

type addNoteInput struct {
	TaskID  string `json:"task_id" jsonschema:"required,the sample task identifier"`
	Note    string `json:"note" jsonschema:"required,the note text"`
	Process bool   `json:"process,omitempty" jsonschema:"true to add a process note instead of a regular note"`
}

type addNoteOutput struct {
	Message string `json:"message"`
}

type getUpcomingInput struct {
	Days int `json:"days,omitempty" jsonschema:"warning window in days (defaults to the board setting)"`
}

type syncNowInput struct{}

type syncNowOutput struct {
	Message  string `json:"message"`
	LastSync string `json:"last_sync,omitempty"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksDeleted    int            `json:"tasks_deleted"`
	TasksCompleted  int            `json:"tasks_completed"`
	RevisionsOpened int            `json:"revisions_opened"`
	StatusChanges   map[string]int `json:"status_changes"`
	Pushes          int            `json:"pushes"`
	Pulls           int            `json:"pulls"`
	EventCount      int            `json:"event_count"`
	OldestEvent     string         `json:"oldest_event,omitempty"`
	NewestEvent     string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a sample task by ID. Returns specs, status, priority, deadline, notes and revision state.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List sample tasks with optional status, priority and text filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a new sample task with specs and priority. New tasks start in the preparing status.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task_status",
		Description: "Move a task through the pipeline: preparing, connecting, material_prep, sampling, post_processing, completed, revision.",
	}, s.handleUpdateTaskStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_note",
		Description: "Append a note (or a process note) to a task.",
	}, s.handleAddNote)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_upcoming",
		Description: "List incomplete tasks whose deadline falls within the warning window.",
	}, s.handleGetUpcoming)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "sync_now",
		Description: "Pull from and push to the configured remote table immediately.",
	}, s.handleSyncNow)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated board activity from the event log: creations, completions, revisions, syncs.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.engine.Get(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}

	return nil, taskToOutput(task), nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter := models.TaskFilter{
		Status:   models.TaskStatus(input.Status),
		Priority: models.Priority(input.Priority),
		Search:   input.Search,
	}
	if input.Status != "" && !models.ValidStatuses[filter.Status] {
		return errorResult(fmt.Sprintf("invalid status %q", input.Status)), listTasksOutput{}, nil
	}
	if input.Priority != "" && !models.ValidPriorities[filter.Priority] {
		return errorResult(fmt.Sprintf("invalid priority %q", input.Priority)), listTasksOutput{}, nil
	}

	tasks := s.engine.Filtered(filter)
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, createTaskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), createTaskOutput{}, nil
	}

	task := models.Task{
		ID: input.TaskID,
		Specs: models.TaskSpecs{
			Size:  input.Size,
			Color: input.Color,
			Other: input.Other,
		},
		Priority: models.Priority(input.Priority),
	}
	if input.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339, input.Deadline)
		if err != nil {
			return errorResult(fmt.Sprintf("parsing deadline: %s", err)), createTaskOutput{}, nil
		}
		task.Deadline = deadline
	}

	if err := s.engine.Create(task); err != nil {
		return errorResult(fmt.Sprintf("creating task %s: %s", input.TaskID, err)), createTaskOutput{}, nil
	}

	return nil, createTaskOutput{Message: fmt.Sprintf("task %s created", input.TaskID)}, nil
}

func (s *Server) handleUpdateTaskStatus(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskStatusInput) (*gomcp.CallToolResult, updateTaskStatusOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), updateTaskStatusOutput{}, nil
	}
	if input.Status == "" {
		return errorResult("status is required"), updateTaskStatusOutput{}, nil
	}

	status := models.TaskStatus(input.Status)
	if !models.ValidStatuses[status] {
		return errorResult(fmt.Sprintf("invalid status %q", input.Status)), updateTaskStatusOutput{}, nil
	}

	if err := s.engine.UpdateStatus(input.TaskID, status); err != nil {
		return errorResult(fmt.Sprintf("updating task %s status: %s", input.TaskID, err)), updateTaskStatusOutput{}, nil
	}

	return nil, updateTaskStatusOutput{
		Message: fmt.Sprintf("task %s status updated to %s", input.TaskID, input.Status),
	}, nil
}

func (s *Server) handleAddNote(_ context.Context, _ *gomcp.CallToolRequest, input addNoteInput) (*gomcp.CallToolResult, addNoteOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), addNoteOutput{}, nil
	}
	if input.Note == "" {
		return errorResult("note is required"), addNoteOutput{}, nil
	}

	var err error
	if input.Process {
		err = s.engine.AddProcessNote(input.TaskID, input.Note)
	} else {
		err = s.engine.AddNote(input.TaskID, input.Note)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("adding note to %s: %s", input.TaskID, err)), addNoteOutput{}, nil
	}

	return nil, addNoteOutput{Message: fmt.Sprintf("note added to %s", input.TaskID)}, nil
}

func (s *Server) handleGetUpcoming(_ context.Context, _ *gomcp.CallToolRequest, input getUpcomingInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var tasks []models.Task
	if input.Days > 0 {
		tasks = core.UpcomingDeadlines(s.engine.Tasks(), input.Days, time.Now().UTC())
	} else {
		tasks = s.engine.Upcoming()
	}
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleSyncNow(ctx context.Context, _ *gomcp.CallToolRequest, _ syncNowInput) (*gomcp.CallToolResult, syncNowOutput, error) {
	if !s.engine.Configured() {
		return errorResult("no remote table configured"), syncNowOutput{}, nil
	}

	if err := s.engine.Sync(ctx); err != nil {
		return errorResult(fmt.Sprintf("syncing: %s", err)), syncNowOutput{}, nil
	}

	out := syncNowOutput{Message: "sync complete"}
	if last := s.engine.LastSync(); !last.IsZero() {
		out.LastSync = last.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics not available (no event log configured)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:    metrics.TasksCreated,
		TasksDeleted:    metrics.TasksDeleted,
		TasksCompleted:  metrics.TasksCompleted,
		RevisionsOpened: metrics.RevisionsOpened,
		StatusChanges:   metrics.StatusChanges,
		Pushes:          metrics.Pushes,
		Pulls:           metrics.Pulls,
		EventCount:      metrics.EventCount,
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

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:             t.ID,
		Size:           t.Specs.Size,
		Color:          t.Specs.Color,
		Other:          t.Specs.Other,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Notes:          t.Notes,
		ProcessNotes:   t.ProcessNotes,
		HasBeenRevised: t.HasBeenRevised,
		Created:        t.CreatedAt.Format(time.RFC3339),
		Updated:        t.UpdatedAt.Format(time.RFC3339),
	}
	if !t.Deadline.IsZero() {
		out.Deadline = t.Deadline.Format(time.RFC3339)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{StatusChanges: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
