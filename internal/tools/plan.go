package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/store"
)

// ─── PlanGenerateTool ───────────────────────────────────────────────────────

// PlanGenerateTool handles the plan_generate MCP tool. It only previews;
// nothing is stored until plan_import.
type PlanGenerateTool struct {
	gen planner.Generator
}

// NewPlanGenerateTool creates a PlanGenerateTool.
func NewPlanGenerateTool(gen planner.Generator) *PlanGenerateTool {
	return &PlanGenerateTool{gen: gen}
}

// Definition returns the MCP tool definition for plan_generate.
func (t *PlanGenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_generate",
		mcp.WithDescription(
			"Generate a phased project plan (phases, tasks, dependencies) from a free-form description. "+
				"Returns the plan as JSON for review. Pass it to plan_import, edited or as is, to store it.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the project should deliver, constraints, tech stack"),
		),
	)
}

// Handle processes the plan_generate tool call.
func (t *PlanGenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := strings.TrimSpace(req.GetString("description", ""))
	if description == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}

	plan, err := t.gen.GeneratePlan(ctx, description)
	if err != nil {
		return errorResult("generate plan", err), nil
	}
	header := fmt.Sprintf("## Plan preview: %d phases, %d tasks, %d dependencies",
		len(plan.Phases), plan.TaskCount(), plan.DependencyCount())
	return jsonResult(header, plan)
}

// ─── PlanImportTool ─────────────────────────────────────────────────────────

// PlanImportTool handles the plan_import MCP tool.
type PlanImportTool struct {
	store    *store.Store
	importer *planner.Importer
}

// NewPlanImportTool creates a PlanImportTool.
func NewPlanImportTool(s *store.Store, importer *planner.Importer) *PlanImportTool {
	return &PlanImportTool{store: s, importer: importer}
}

// Definition returns the MCP tool definition for plan_import.
func (t *PlanImportTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_import",
		mcp.WithDescription(
			"Store a plan in a project: creates its phases and tasks, then adds the dependencies in one batch. "+
				"Dependencies that would create a cycle, repeat an existing one, or name an unknown task are skipped and reported.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project to import into"),
		),
		mcp.WithString("plan",
			mcp.Required(),
			mcp.Description("Plan JSON as returned by plan_generate"),
		),
	)
}

// Handle processes the plan_import tool call.
func (t *PlanImportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	raw := planArg(req)
	if raw == "" {
		return mcp.NewToolResultError("'plan' is required"), nil
	}
	plan, err := planner.ParsePlan(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := t.store.GetProject(ctx, projectID); err != nil {
		return errorResult("import plan", err), nil
	}

	res, err := t.importer.Import(ctx, projectID, plan)
	if err != nil {
		return errorResult("import plan", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d phases and %d tasks into project #%d.\n", len(res.Phases), len(res.Tasks), projectID)
	b.WriteString(res.Summary())
	b.WriteString("\n")
	return mcp.NewToolResultText(b.String()), nil
}

// planArg accepts the plan either as a JSON string or as an object, since
// clients differ in how they pass nested JSON.
func planArg(req mcp.CallToolRequest) string {
	switch v := req.GetArguments()["plan"].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
