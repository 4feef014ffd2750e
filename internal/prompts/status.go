package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the project-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("project-status",
		mcp.WithPromptDescription(
			"Check where a project stands: what is done, what is blocked, "+
				"and what can be picked up next.",
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project ID (omit to pick from project_list)"),
		),
	)
}

// Handle processes the project-status prompt request.
func (p *StatusPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "Run `project_list` and ask me which project I mean, then run `progress` for it."
	if id := req.Params.Arguments["project_id"]; id != "" {
		target = fmt.Sprintf("Run `progress` with project_id=%s.", id)
	}

	return &mcp.GetPromptResult{
		Description: "Project Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					target + "\n\n" +
						"Then:\n" +
						"1. Summarize progress in one line\n" +
						"2. List blocked tasks and what each one waits on\n" +
						"3. Recommend the next task from the ready list, preferring higher priority\n" +
						"4. Warn me if the dependency graph has a cycle",
				),
			},
		},
	}, nil
}
