package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// ─── TaskCreateTool ─────────────────────────────────────────────────────────

// TaskCreateTool handles the task_create MCP tool.
type TaskCreateTool struct {
	store *store.Store
}

// NewTaskCreateTool creates a TaskCreateTool.
func NewTaskCreateTool(s *store.Store) *TaskCreateTool {
	return &TaskCreateTool{store: s}
}

// Definition returns the MCP tool definition for task_create.
func (t *TaskCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("task_create",
		mcp.WithDescription("Add a task to a project. Use dependency_add afterwards to say which tasks must finish first."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short task title"),
		),
		mcp.WithString("description",
			mcp.Description("Details, acceptance criteria"),
		),
		mcp.WithNumber("phase_id",
			mcp.Description("Phase the task belongs to (optional)"),
		),
		mcp.WithString("priority",
			mcp.Description("Task priority (default: medium)"),
			mcp.Enum("low", "medium", "high", "critical"),
		),
		mcp.WithNumber("estimate_hours",
			mcp.Description("Estimated effort in hours"),
		),
	)
}

// Handle processes the task_create tool call.
func (t *TaskCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id", "phase_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	title := strings.TrimSpace(req.GetString("title", ""))
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return errorResult("create task", err), nil
	}

	params := store.CreateTaskParams{
		ProjectID:     projectID,
		Title:         title,
		Description:   req.GetString("description", ""),
		Priority:      req.GetString("priority", ""),
		EstimateHours: floatArg(req, "estimate_hours", 0),
	}
	if phaseID := idArg(req, "phase_id"); phaseID != 0 {
		phases, err := t.store.ListPhases(ctx, projectID)
		if err != nil {
			return errorResult("create task", err), nil
		}
		found := false
		for _, ph := range phases {
			if ph.ID == phaseID {
				found = true
				break
			}
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("phase #%d does not belong to project #%d", phaseID, projectID)), nil
		}
		params.PhaseID = &phaseID
	}

	task, err := t.store.CreateTask(ctx, params)
	if err != nil {
		return errorResult("create task", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task created: #%d %s [%s, priority %s]", task.ID, task.Title, task.Status, task.Priority)), nil
}

// ─── TaskListTool ───────────────────────────────────────────────────────────

// TaskListTool handles the task_list MCP tool.
type TaskListTool struct {
	store *store.Store
}

// NewTaskListTool creates a TaskListTool.
func NewTaskListTool(s *store.Store) *TaskListTool {
	return &TaskListTool{store: s}
}

// Definition returns the MCP tool definition for task_list.
func (t *TaskListTool) Definition() mcp.Tool {
	return mcp.NewTool("task_list",
		mcp.WithDescription("List a project's tasks grouped by phase, with status and the tasks each one depends on."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("status",
			mcp.Description("Only show tasks with this status"),
			mcp.Enum("todo", "in_progress", "done"),
		),
	)
}

// Handle processes the task_list tool call.
func (t *TaskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	var filter store.TaskStatus
	if s := req.GetString("status", ""); s != "" {
		st, err := store.ParseStatus(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = st
	}

	phases, err := t.store.ListPhases(ctx, projectID)
	if err != nil {
		return errorResult("list tasks", err), nil
	}
	tasks, err := t.store.ListTasks(ctx, projectID)
	if err != nil {
		return errorResult("list tasks", err), nil
	}
	edges, err := t.store.ListEdges(ctx, projectID)
	if err != nil {
		return errorResult("list tasks", err), nil
	}

	preds := make(map[int64][]int64)
	for _, e := range edges {
		preds[e.TaskID] = append(preds[e.TaskID], e.PredecessorTaskID)
	}
	done := make(map[int64]bool)
	for _, task := range tasks {
		if task.Status == store.StatusDone {
			done[task.ID] = true
		}
	}

	byPhase := make(map[int64][]store.Task)
	var unphased []store.Task
	shown := 0
	for _, task := range tasks {
		if filter != "" && task.Status != filter {
			continue
		}
		shown++
		if task.PhaseID == nil {
			unphased = append(unphased, task)
			continue
		}
		byPhase[*task.PhaseID] = append(byPhase[*task.PhaseID], task)
	}
	if shown == 0 {
		return mcp.NewToolResultText("No matching tasks."), nil
	}

	isDone := func(id int64) bool { return done[id] }
	line := func(b *strings.Builder, task store.Task) {
		fmt.Fprintf(b, "- #%d [%s] %s (%s)", task.ID, task.Status, task.Title, task.Priority)
		if ps := preds[task.ID]; len(ps) > 0 {
			fmt.Fprintf(b, " ← depends on %s", formatIDs(ps))
			if task.Status != store.StatusDone && depgraph.Blocked(task.ID, edges, isDone) {
				b.WriteString(" (blocked)")
			}
		}
		b.WriteString("\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Tasks (%d)\n", shown)
	for _, ph := range phases {
		list := byPhase[ph.ID]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n", ph.Name)
		for _, task := range list {
			line(&b, task)
		}
	}
	if len(unphased) > 0 {
		b.WriteString("\n### No phase\n")
		for _, task := range unphased {
			line(&b, task)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── TaskSetStatusTool ──────────────────────────────────────────────────────

// TaskSetStatusTool handles the task_set_status MCP tool.
type TaskSetStatusTool struct {
	store *store.Store
}

// NewTaskSetStatusTool creates a TaskSetStatusTool.
func NewTaskSetStatusTool(s *store.Store) *TaskSetStatusTool {
	return &TaskSetStatusTool{store: s}
}

// Definition returns the MCP tool definition for task_set_status.
func (t *TaskSetStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("task_set_status",
		mcp.WithDescription("Change a task's status."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status"),
			mcp.Enum("todo", "in_progress", "done"),
		),
	)
}

// Handle processes the task_set_status tool call.
func (t *TaskSetStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "task_id"); res != nil {
		return res, nil
	}
	id := idArg(req, "task_id")
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	status, err := store.ParseStatus(req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.UpdateTaskStatus(ctx, id, status); err != nil {
		return errorResult("update task", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task #%d is now %s", id, status)), nil
}

// ─── TaskDeleteTool ─────────────────────────────────────────────────────────

// TaskDeleteTool handles the task_delete MCP tool.
type TaskDeleteTool struct {
	store *store.Store
}

// NewTaskDeleteTool creates a TaskDeleteTool.
func NewTaskDeleteTool(s *store.Store) *TaskDeleteTool {
	return &TaskDeleteTool{store: s}
}

// Definition returns the MCP tool definition for task_delete.
func (t *TaskDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("task_delete",
		mcp.WithDescription("Delete a task. Every dependency that involves the task is removed with it."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task ID to delete"),
		),
	)
}

// Handle processes the task_delete tool call.
func (t *TaskDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "task_id"); res != nil {
		return res, nil
	}
	id := idArg(req, "task_id")
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	if err := t.store.DeleteTask(ctx, id); err != nil {
		return errorResult("delete task", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task #%d deleted", id)), nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
