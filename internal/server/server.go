// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/planwright/internal/config"
	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/planner"
	"github.com/HendryAvila/planwright/internal/prompts"
	"github.com/HendryAvila/planwright/internal/resources"
	"github.com/HendryAvila/planwright/internal/store"
	"github.com/HendryAvila/planwright/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// tool is the shape every tools.*Tool satisfies.
type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server with all tools, prompts and
// resources registered.
//
// The returned cleanup function closes the store and must be called on
// shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, noop, err
	}
	if gen == nil {
		logger.Warn("planning and chat disabled: no Anthropic API key", "env", config.EnvAPIKey)
	}
	return build(cfg, gen, logger)
}

// build does the wiring with an injected generator; a nil generator skips
// the AI-backed tools.
func build(cfg config.Config, gen planner.Generator, logger *slog.Logger) (*server.MCPServer, func(), error) {
	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close failed", "err", err)
		}
	}
	logger.Info("store opened", "path", st.Path())

	// The store doubles as the per-project locker so concurrent tool
	// calls on one project are validated one at a time.
	guard := depgraph.NewGuard(st, depgraph.WithLocker(st))

	s := server.NewMCPServer(
		"planwright",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(gen != nil)),
	)

	registered := register(s,
		tools.NewProjectCreateTool(st),
		tools.NewProjectListTool(st),
		tools.NewProjectDeleteTool(st),
		tools.NewPhaseCreateTool(st),
		tools.NewTaskCreateTool(st),
		tools.NewTaskListTool(st),
		tools.NewTaskSetStatusTool(st),
		tools.NewTaskDeleteTool(st),
		tools.NewDependencyAddTool(st, guard),
		tools.NewDependencyRemoveTool(guard),
		tools.NewDependencyListTool(st, guard),
		tools.NewProgressTool(st),
		tools.NewMemorySaveTool(st),
		tools.NewMemoryListTool(st),
		tools.NewMemoryDeleteTool(st),
	)

	// plan_import needs no model, only the guard.
	registered += register(s, tools.NewPlanImportTool(st, planner.NewImporter(st, guard)))

	if gen != nil {
		registered += register(s,
			tools.NewPlanGenerateTool(gen),
			tools.NewChatTool(planner.NewChatter(st, gen)),
		)
	}

	// --- Register prompts ---

	planPrompt := prompts.NewPlanPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(st)
	s.AddResource(resourceHandler.ProjectsResource(), resourceHandler.HandleProjects)
	s.AddResourceTemplate(resourceHandler.ProgressTemplate(), resourceHandler.HandleProgress)

	logger.Info("server ready", "version", Version, "tools", registered, "ai", gen != nil)
	return s, cleanup, nil
}

func register(s *server.MCPServer, ts ...tool) int {
	for _, t := range ts {
		s.AddTool(t.Definition(), t.Handle)
	}
	return len(ts)
}

func newGenerator(cfg config.Config) (planner.Generator, error) {
	if !cfg.HasAPIKey() {
		return nil, nil
	}
	c, err := planner.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("creating Anthropic client: %w", err)
	}
	return c, nil
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

func serverInstructions(ai bool) string {
	text := `Planwright tracks projects as phases, tasks and dependencies between tasks.

## Dependencies
A dependency "A depends on B" means A cannot start until B is done.
dependency_add refuses three things, each with a reason you should relay:
- self_dependency: a task cannot depend on itself
- duplicate_edge: the dependency already exists
- cyclic_dependency: the new dependency would close a loop
These are not errors to retry blindly; tell the user which tasks are involved.

## Typical flow
1. project_create, then phase_create and task_create (or plan_import)
2. dependency_add for each ordering constraint
3. progress to see ready and blocked tasks and the execution waves
4. task_set_status as work moves along
5. memory_save for decisions and constraints worth remembering
`
	if ai {
		text += `
## Planning and chat
plan_generate drafts a full plan from a description and returns it for review.
Nothing is stored until plan_import. chat answers questions about progress;
pass the returned thread_id back to continue a conversation.
`
	}
	return text
}
