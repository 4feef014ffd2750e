package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/store"
)

// ProgressTool handles the progress MCP tool.
type ProgressTool struct {
	store *store.Store
}

// NewProgressTool creates a ProgressTool.
func NewProgressTool(s *store.Store) *ProgressTool {
	return &ProgressTool{store: s}
}

// Definition returns the MCP tool definition for progress.
func (t *ProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("progress",
		mcp.WithDescription(
			"Show a project's progress: status counts, tasks ready to start, blocked tasks, "+
				"and the execution waves (groups of tasks that can run in parallel).",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
	)
}

// Handle processes the progress tool call.
func (t *ProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	project, err := t.store.GetProject(ctx, projectID)
	if err != nil {
		return errorResult("load progress", err), nil
	}
	tasks, err := t.store.ListTasks(ctx, projectID)
	if err != nil {
		return errorResult("load progress", err), nil
	}
	edges, err := t.store.ListEdges(ctx, projectID)
	if err != nil {
		return errorResult("load progress", err), nil
	}
	return mcp.NewToolResultText(planner.BuildProgressContext(project, tasks, edges)), nil
}
