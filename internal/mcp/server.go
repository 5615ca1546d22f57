// Package mcp serves the analyzer over the Model Context Protocol on
// stdio. Tools analyze a codebase, report its metrics and list the rule
// catalog; results are JSON or a console summary.
package mcp

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/smellscan/internal/config"
	"github.com/standardbeagle/smellscan/internal/version"
)

// Tool names.
const (
	ToolAnalyze = "analyze_codebase"
	ToolMetrics = "codebase_metrics"
	ToolRules   = "list_rules"
	serverName  = "smellscan-mcp-server"
)

// Server exposes analysis tools over MCP.
type Server struct {
	cfg    *config.Config
	server *mcp.Server
	logger *DiagnosticLogger

	// runs serializes analyses; each one already saturates the workers.
	runs sync.Mutex
}

// NewServer creates a server whose tools analyze below cfg's project root
// unless a request names another root.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mcp server requires a configuration")
	}
	s := &Server{
		cfg:    cfg,
		logger: NewDiagnosticLogger(true),
	}
	s.logger.Printf("MCP server configured for %s", cfg.Project.Root)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	stringList := func(description string) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:        "array",
			Description: description,
			Items:       &jsonschema.Schema{Type: "string"},
		}
	}

	s.server.AddTool(&mcp.Tool{
		Name:        ToolAnalyze,
		Description: "Detect design smells in the C# codebases below a directory. Returns recommendations with file, line and code fragment for each occurrence, plus size metrics and class coupling.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Directory to analyze; relative paths resolve against the configured project root",
				},
				"rules":   stringList("Run only these rules (see list_rules)"),
				"disable": stringList("Rules to skip"),
				"include": stringList("Glob patterns of documents to analyze"),
				"exclude": stringList("Additional glob patterns to skip"),
				"format": {
					Type:        "string",
					Description: "Response format",
					Enum:        []any{formatJSON, formatText},
				},
				"max_occurrences": {
					Type:        "integer",
					Description: "Text format only: occurrences listed per rule",
				},
			},
		},
	}, s.handleAnalyze)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolMetrics,
		Description: "Compute size metrics (NOC, NOM, NOP, CYCLO, LOC and their ratios) and per-class coupling for the C# codebases below a directory.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Directory to measure",
				},
				"include": stringList("Glob patterns of documents to measure"),
				"exclude": stringList("Additional glob patterns to skip"),
			},
		},
	}, s.handleMetrics)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolRules,
		Description: "List the rule catalog with each rule's message and whether the configuration enables it.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleListRules)
}

// recoverFromPanic runs handler and turns a panic into an error result.
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("panic in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	result, err = handler()
	if err != nil {
		s.logger.Errorf("%s failed: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	s.logger.Printf("%s completed in %v", operation, time.Since(start))
	return result, nil
}

// Start serves MCP on stdio until ctx is cancelled or the client leaves.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Printf("Starting MCP server with stdio transport (pid %d)", os.Getpid())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close flushes the diagnostic log.
func (s *Server) Close() error {
	s.logger.Printf("MCP server shutdown complete")
	return s.logger.Close()
}
