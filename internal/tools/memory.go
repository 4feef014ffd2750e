package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/store"
)

// ─── MemorySaveTool ─────────────────────────────────────────────────────────

// MemorySaveTool handles the memory_save MCP tool.
type MemorySaveTool struct {
	store *store.Store
}

// NewMemorySaveTool creates a MemorySaveTool.
func NewMemorySaveTool(s *store.Store) *MemorySaveTool {
	return &MemorySaveTool{store: s}
}

// Definition returns the MCP tool definition for memory_save.
func (t *MemorySaveTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_save",
		mcp.WithDescription(
			"Save a note about a project: a decision, a constraint, a risk. "+
				"Saved notes are included when chatting about the project.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The note itself"),
		),
		mcp.WithString("kind",
			mcp.Description("Category, e.g. decision, risk, constraint (default: note)"),
		),
	)
}

// Handle processes the memory_save tool call.
func (t *MemorySaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	content := strings.TrimSpace(req.GetString("content", ""))
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return errorResult("save memory", err), nil
	}

	item, err := t.store.AddMemoryItem(ctx, projectID, req.GetString("kind", ""), content)
	if err != nil {
		return errorResult("save memory", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory saved: #%d (%s)", item.ID, item.Kind)), nil
}

// ─── MemoryListTool ─────────────────────────────────────────────────────────

// MemoryListTool handles the memory_list MCP tool.
type MemoryListTool struct {
	store *store.Store
}

// NewMemoryListTool creates a MemoryListTool.
func NewMemoryListTool(s *store.Store) *MemoryListTool {
	return &MemoryListTool{store: s}
}

// Definition returns the MCP tool definition for memory_list.
func (t *MemoryListTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_list",
		mcp.WithDescription("List a project's saved notes, newest first."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("kind",
			mcp.Description("Only list notes of this kind"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 50)"),
		),
	)
}

// Handle processes the memory_list tool call.
func (t *MemoryListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}

	items, err := t.store.ListMemoryItems(ctx, projectID, req.GetString("kind", ""), intArg(req, "limit", 0))
	if err != nil {
		return errorResult("list memory", err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No notes saved for this project."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Notes (%d)\n\n", len(items))
	for _, m := range items {
		fmt.Fprintf(&b, "- #%d [%s] %s _(%s)_\n", m.ID, m.Kind, m.Content, m.CreatedAt)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── MemoryDeleteTool ───────────────────────────────────────────────────────

// MemoryDeleteTool handles the memory_delete MCP tool.
type MemoryDeleteTool struct {
	store *store.Store
}

// NewMemoryDeleteTool creates a MemoryDeleteTool.
func NewMemoryDeleteTool(s *store.Store) *MemoryDeleteTool {
	return &MemoryDeleteTool{store: s}
}

// Definition returns the MCP tool definition for memory_delete.
func (t *MemoryDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete a saved note."),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project the note belongs to"),
		),
		mcp.WithNumber("memory_id",
			mcp.Required(),
			mcp.Description("Note ID to delete"),
		),
	)
}

// Handle processes the memory_delete tool call.
func (t *MemoryDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id", "memory_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	id := idArg(req, "memory_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	if id == 0 {
		return mcp.NewToolResultError("'memory_id' is required"), nil
	}
	if err := t.store.DeleteMemoryItem(ctx, projectID, id); err != nil {
		return errorResult("delete memory", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory #%d deleted", id)), nil
}
