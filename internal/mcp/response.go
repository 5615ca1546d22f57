package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/smellscan/internal/rules"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}
	return createTextResponse(string(content)), nil
}

func createTextResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResponse reports a tool failure inside the result with
// IsError set, so the client sees it and can correct the request.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]any{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if suggestions := errorSuggestions(err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := operationHelp[operation]; help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

func errorSuggestions(err error) []string {
	var suggestions []string
	var unknown *rules.UnknownRuleError
	if errors.As(err, &unknown) {
		if unknown.Suggestion != "" {
			suggestions = append(suggestions, fmt.Sprintf("Use '%s' instead of '%s'", unknown.Suggestion, unknown.Name))
		}
		suggestions = append(suggestions, "Call list_rules for the rule catalog")
	}
	return suggestions
}

var operationHelp = map[string]string{
	ToolAnalyze: "Analyze C# sources: {\"root\": \"src\", \"rules\": [\"NullReturn\"], \"format\": \"text\"}",
	ToolMetrics: "Measure C# sources: {\"root\": \"src\"}",
	ToolRules:   "List the rule catalog: {}",
}
