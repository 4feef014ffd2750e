package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// ─── DependencyAddTool ──────────────────────────────────────────────────────

// DependencyAddTool handles the dependency_add MCP tool.
type DependencyAddTool struct {
	tasks depgraph.TaskStore
	guard *depgraph.Guard
}

// NewDependencyAddTool creates a DependencyAddTool.
func NewDependencyAddTool(tasks depgraph.TaskStore, guard *depgraph.Guard) *DependencyAddTool {
	return &DependencyAddTool{tasks: tasks, guard: guard}
}

// Definition returns the MCP tool definition for dependency_add.
func (t *DependencyAddTool) Definition() mcp.Tool {
	return mcp.NewTool("dependency_add",
		mcp.WithDescription(
			"Record that a task cannot start until another task is done. "+
				"Rejected when the task would depend on itself, the dependency already exists, "+
				"or it would create a cycle.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project both tasks belong to"),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The dependent task (waits)"),
		),
		mcp.WithNumber("depends_on_task_id",
			mcp.Required(),
			mcp.Description("The predecessor task (must finish first)"),
		),
	)
}

// Handle processes the dependency_add tool call.
func (t *DependencyAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id", "task_id", "depends_on_task_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	taskID := idArg(req, "task_id")
	predID := idArg(req, "depends_on_task_id")
	switch {
	case projectID == 0:
		return mcp.NewToolResultError("'project_id' is required"), nil
	case taskID == 0:
		return mcp.NewToolResultError("'task_id' is required"), nil
	case predID == 0:
		return mcp.NewToolResultError("'depends_on_task_id' is required"), nil
	}

	ids, err := t.tasks.ListTaskIDs(ctx, projectID)
	if err != nil {
		return errorResult("add dependency", &depgraph.StorageError{Op: "list tasks", Err: err}), nil
	}
	for _, id := range []int64{taskID, predID} {
		if _, ok := ids[id]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task #%d is not in project #%d", id, projectID)), nil
		}
	}

	edge, err := t.guard.AddEdge(ctx, projectID, taskID, predID)
	if err != nil {
		return errorResult("add dependency", err), nil
	}
	return mcp.NewToolResultText(
		fmt.Sprintf("Dependency #%d created: task #%d depends on task #%d", edge.ID, edge.TaskID, edge.PredecessorTaskID),
	), nil
}

// ─── DependencyRemoveTool ───────────────────────────────────────────────────

// DependencyRemoveTool handles the dependency_remove MCP tool.
type DependencyRemoveTool struct {
	guard *depgraph.Guard
}

// NewDependencyRemoveTool creates a DependencyRemoveTool.
func NewDependencyRemoveTool(guard *depgraph.Guard) *DependencyRemoveTool {
	return &DependencyRemoveTool{guard: guard}
}

// Definition returns the MCP tool definition for dependency_remove.
func (t *DependencyRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("dependency_remove",
		mcp.WithDescription("Remove a dependency by its ID. Use dependency_list to find IDs."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project the dependency belongs to"),
		),
		mcp.WithNumber("dependency_id",
			mcp.Required(),
			mcp.Description("Dependency ID to remove"),
		),
	)
}

// Handle processes the dependency_remove tool call.
func (t *DependencyRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id", "dependency_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	edgeID := idArg(req, "dependency_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if edgeID == 0 {
		return mcp.NewToolResultError("'dependency_id' is required"), nil
	}

	if err := t.guard.RemoveEdge(ctx, projectID, edgeID); err != nil {
		return errorResult("remove dependency", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Dependency #%d removed", edgeID)), nil
}

// ─── DependencyListTool ─────────────────────────────────────────────────────

// DependencyListTool handles the dependency_list MCP tool.
type DependencyListTool struct {
	store *store.Store
	guard *depgraph.Guard
}

// NewDependencyListTool creates a DependencyListTool.
func NewDependencyListTool(s *store.Store, guard *depgraph.Guard) *DependencyListTool {
	return &DependencyListTool{store: s, guard: guard}
}

// Definition returns the MCP tool definition for dependency_list.
func (t *DependencyListTool) Definition() mcp.Tool {
	return mcp.NewTool("dependency_list",
		mcp.WithDescription("List a project's dependencies, or only the predecessors of one task."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithNumber("task_id",
			mcp.Description("If set, only list what this task depends on"),
		),
	)
}

// Handle processes the dependency_list tool call.
func (t *DependencyListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id", "task_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	var (
		edges []depgraph.Edge
		err   error
	)
	if taskID := idArg(req, "task_id"); taskID != 0 {
		ids, lerr := t.store.ListTaskIDs(ctx, projectID)
		if lerr != nil {
			return errorResult("list dependencies", lerr), nil
		}
		if _, ok := ids[taskID]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task #%d is not in project #%d", taskID, projectID)), nil
		}
		edges, err = t.guard.ListPredecessors(ctx, taskID)
	} else {
		edges, err = t.guard.ListForProject(ctx, projectID)
	}
	if err != nil {
		return errorResult("list dependencies", err), nil
	}
	if len(edges) == 0 {
		return mcp.NewToolResultText("No dependencies."), nil
	}

	tasks, err := t.store.ListTasks(ctx, projectID)
	if err != nil {
		return errorResult("list dependencies", err), nil
	}
	titles := make(map[int64]string, len(tasks))
	for _, task := range tasks {
		titles[task.ID] = task.Title
	}

	type row struct {
		depgraph.Edge
		Task        string `json:"task"`
		Predecessor string `json:"predecessor"`
	}
	rows := make([]row, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, row{Edge: e, Task: titles[e.TaskID], Predecessor: titles[e.PredecessorTaskID]})
	}
	return jsonResult(fmt.Sprintf("## Dependencies (%d)", len(edges)), rows)
}
