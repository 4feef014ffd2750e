package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/store"
)

// ─── ProjectCreateTool ──────────────────────────────────────────────────────

// ProjectCreateTool handles the project_create MCP tool.
type ProjectCreateTool struct {
	store *store.Store
}

// NewProjectCreateTool creates a ProjectCreateTool.
func NewProjectCreateTool(s *store.Store) *ProjectCreateTool {
	return &ProjectCreateTool{store: s}
}

// Definition returns the MCP tool definition for project_create.
func (t *ProjectCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("project_create",
		mcp.WithDescription("Create a new project. Phases, tasks and dependencies are added to it afterwards, by hand or with plan_import."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about. Used as context for planning and chat."),
		),
	)
}

// Handle processes the project_create tool call.
func (t *ProjectCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	p, err := t.store.CreateProject(ctx, name, req.GetString("description", ""))
	if err != nil {
		return errorResult("create project", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project created: #%d %s", p.ID, p.Name)), nil
}

// ─── ProjectListTool ────────────────────────────────────────────────────────

// ProjectListTool handles the project_list MCP tool.
type ProjectListTool struct {
	store *store.Store
}

// NewProjectListTool creates a ProjectListTool.
func NewProjectListTool(s *store.Store) *ProjectListTool {
	return &ProjectListTool{store: s}
}

// Definition returns the MCP tool definition for project_list.
func (t *ProjectListTool) Definition() mcp.Tool {
	return mcp.NewTool("project_list",
		mcp.WithDescription("List all projects, newest first."),
	)
}

// Handle processes the project_list tool call.
func (t *ProjectListTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.ListProjects(ctx)
	if err != nil {
		return errorResult("list projects", err), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects yet. Create one with project_create."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Projects (%d)\n\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&b, "- #%d **%s**", p.ID, p.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── ProjectDeleteTool ──────────────────────────────────────────────────────

// ProjectDeleteTool handles the project_delete MCP tool.
type ProjectDeleteTool struct {
	store *store.Store
}

// NewProjectDeleteTool creates a ProjectDeleteTool.
func NewProjectDeleteTool(s *store.Store) *ProjectDeleteTool {
	return &ProjectDeleteTool{store: s}
}

// Definition returns the MCP tool definition for project_delete.
func (t *ProjectDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("project_delete",
		mcp.WithDescription("Delete a project with all of its phases, tasks, dependencies, memory items and chat history. This cannot be undone."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID to delete"),
		),
	)
}

// Handle processes the project_delete tool call.
func (t *ProjectDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	id := idArg(req, "project_id")
	if id == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if err := t.store.DeleteProject(ctx, id); err != nil {
		return errorResult("delete project", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project #%d deleted", id)), nil
}

// ─── PhaseCreateTool ────────────────────────────────────────────────────────

// PhaseCreateTool handles the phase_create MCP tool.
type PhaseCreateTool struct {
	store *store.Store
}

// NewPhaseCreateTool creates a PhaseCreateTool.
func NewPhaseCreateTool(s *store.Store) *PhaseCreateTool {
	return &PhaseCreateTool{store: s}
}

// Definition returns the MCP tool definition for phase_create.
func (t *PhaseCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("phase_create",
		mcp.WithDescription("Append a phase to a project. Phases group tasks; their order is creation order."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Phase name, e.g. 'Foundation'"),
		),
		mcp.WithString("description",
			mcp.Description("What the phase achieves"),
		),
	)
}

// Handle processes the phase_create tool call.
func (t *PhaseCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return errorResult("create phase", err), nil
	}

	ph, err := t.store.CreatePhase(ctx, projectID, name, req.GetString("description", ""))
	if err != nil {
		return errorResult("create phase", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Phase created: #%d %s (position %d)", ph.ID, ph.Name, ph.Position+1)), nil
}
