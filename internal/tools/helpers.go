// Package tools provides the MCP tool handlers for planwright.
//
// Each tool follows the same pattern:
//   - A struct with its dependencies injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request and returns a result
//
// Expected failures (bad input, rejected dependencies, missing rows) are
// returned as tool-result errors so the client can correct and retry.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/planwright/internal/depgraph"
	"github.com/HendryAvila/planwright/internal/store"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// idArg extracts a positive id argument. It returns 0 when missing or when
// the value is not a positive whole number.
func idArg(req mcp.CallToolRequest, key string) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || v <= 0 || v != math.Trunc(v) || v > math.MaxInt64 {
		return 0
	}
	return int64(v)
}

// checkIDArgs rejects id arguments that are present but not positive whole
// numbers, so 2.7 is never read as task #2.
func checkIDArgs(req mcp.CallToolRequest, keys ...string) *mcp.CallToolResult {
	args := req.GetArguments()
	for _, key := range keys {
		raw, present := args[key]
		if !present || raw == nil {
			continue
		}
		if idArg(req, key) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' must be a positive whole number, got %v", key, raw))
		}
	}
	return nil
}

// floatArg extracts a float argument from a tool request.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// jsonResult renders v as indented JSON after a one-line header.
func jsonResult(header string, v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(header + "\n\n" + string(data)), nil
}

// errorResult maps domain errors to tool-result errors. Guard rejections
// become validation messages; storage failures become a generic message.
func errorResult(action string, err error) *mcp.CallToolResult {
	var rej *depgraph.RejectionError
	switch {
	case errors.As(err, &rej):
		return mcp.NewToolResultError(fmt.Sprintf("%s rejected (%s): %s", action, rej.Reason, rej.Error()))
	case errors.Is(err, depgraph.ErrStorageFailure):
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: the dependency store is unavailable, try again", action))
	case errors.Is(err, store.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
	}
}
