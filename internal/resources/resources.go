// Package resources implements MCP resource handlers for planwright.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (planwright://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/store"
)

const (
	projectsURI        = "planwright://projects"
	projectProgressURI = "planwright://projects/{id}/progress"
)

// Handler manages planwright resource endpoints.
type Handler struct {
	store *store.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// ProjectsResource returns the MCP resource definition for the project list.
func (h *Handler) ProjectsResource() mcp.Resource {
	return mcp.NewResource(
		projectsURI,
		"Projects",
		mcp.WithResourceDescription("All projects, newest first"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjects returns every project as JSON.
func (h *Handler) HandleProjects(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if projects == nil {
		projects = []store.Project{}
	}
	return jsonResource(req.Params.URI, projects)
}

// ProgressTemplate returns the resource template for one project's
// progress, including readiness and execution waves.
func (h *Handler) ProgressTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		projectProgressURI,
		"Project Progress",
		mcp.WithTemplateDescription("Status counts, ready and blocked tasks, and execution waves of a project"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleProgress returns a project's progress as JSON.
func (h *Handler) HandleProgress(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := projectIDFromURI(req.Params.URI)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	project, err := h.store.GetProject(ctx, id)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	tasks, err := h.store.ListTasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	edges, err := h.store.ListEdges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}

	return jsonResource(req.Params.URI, struct {
		Project  *store.Project   `json:"project"`
		Progress planner.Progress `json:"progress"`
	}{project, planner.ComputeProgress(tasks, edges)})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
