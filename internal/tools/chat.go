package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/planner"
)

// ChatTool handles the chat MCP tool.
type ChatTool struct {
	chatter *planner.Chatter
}

// NewChatTool creates a ChatTool.
func NewChatTool(chatter *planner.Chatter) *ChatTool {
	return &ChatTool{chatter: chatter}
}

// Definition returns the MCP tool definition for chat.
func (t *ChatTool) Definition() mcp.Tool {
	return mcp.NewTool("chat",
		mcp.WithDescription(
			"Ask a question about a project's progress. The assistant sees the current tasks, "+
				"dependencies, blocked work and saved notes. Pass the returned thread_id to continue the conversation.",
		),
		mcp.WithNumber("project_id",
			mcp.Required(),
			mcp.Description("Project ID"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("What you want to know, e.g. 'what should I work on next?'"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Existing thread to continue (omit to start a new one)"),
		),
	)
}

// Handle processes the chat tool call.
func (t *ChatTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := checkIDArgs(req, "project_id"); res != nil {
		return res, nil
	}
	projectID := idArg(req, "project_id")
	if projectID == 0 {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	question := strings.TrimSpace(req.GetString("question", ""))
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	reply, err := t.chatter.Ask(ctx, projectID, strings.TrimSpace(req.GetString("thread_id", "")), question)
	if err != nil {
		return errorResult("answer", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n_thread_id: %s_", reply.Answer, reply.ThreadID)), nil
}
