// Package prompts implements MCP prompt handlers for planwright.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a sequence of tools. Unlike tools (which the AI
// calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the plan-project MCP prompt. It walks the AI through
// creating a project and importing a generated plan.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("plan-project",
		mcp.WithPromptDescription(
			"Plan a new project: create it, generate phases and tasks with their dependencies, "+
				"review the plan with you, then import it.",
		),
		mcp.WithArgument("project_name",
			mcp.ArgumentDescription("Name of your project"),
		),
		mcp.WithArgument("description",
			mcp.ArgumentDescription("What the project should deliver"),
		),
	)
}

// Handle processes the plan-project prompt request.
func (p *PlanPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := strings.TrimSpace(req.Params.Arguments["project_name"])
	if name == "" {
		name = "my-project"
	}
	description := strings.TrimSpace(req.Params.Arguments["description"])

	describe := "2. Ask me to describe the project in a few sentences\n"
	if description != "" {
		describe = fmt.Sprintf("2. Use this description: %q\n", description)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Plan project: %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to plan a new project called '%s'.\n\n"+
						"Please:\n"+
						"1. Run `project_create` with name='%s'\n"+
						"%s"+
						"3. Run `plan_generate` with the description and show me the phases and tasks\n"+
						"4. Apply any changes I ask for, then run `plan_import` with the final plan\n"+
						"5. Report which dependencies were skipped and why, then run `progress`",
					name, name, describe,
				)),
			},
		},
	}, nil
}
