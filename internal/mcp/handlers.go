package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/smellscan/internal/config"
	"github.com/standardbeagle/smellscan/internal/engine"
	"github.com/standardbeagle/smellscan/internal/report"
	"github.com/standardbeagle/smellscan/internal/types"
)

// AnalyzeResponse is the JSON result of analyze_codebase.
type AnalyzeResponse struct {
	report.Document
	Errors   []string       `json:"errors,omitempty"`
	Warnings []UnknownField `json:"warnings,omitempty"`
}

// MetricsResponse is the JSON result of codebase_metrics.
type MetricsResponse struct {
	Codebases []CodebaseMetrics `json:"codebases"`
	Errors    []string          `json:"errors,omitempty"`
	Warnings  []UnknownField    `json:"warnings,omitempty"`
}

// CodebaseMetrics are the metrics of one codebase.
type CodebaseMetrics struct {
	types.MetricCollection
	Ratios   *types.Ratios                `json:"ratios,omitempty"`
	Coupling []types.ClassCouplingMetrics `json:"coupling,omitempty"`
}

// RuleInfo describes one catalog entry.
type RuleInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Enabled bool   `json:"enabled"`
}

// RulesResponse is the JSON result of list_rules.
type RulesResponse struct {
	Rules []RuleInfo `json:"rules"`
}

func decodeAnalyzeParams(req *mcp.CallToolRequest) (AnalyzeParams, error) {
	var params AnalyzeParams
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return params, fmt.Errorf("invalid parameters: %w", err)
	}
	return params, nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolAnalyze, func() (*mcp.CallToolResult, error) {
		params, err := decodeAnalyzeParams(req)
		if err != nil {
			return nil, err
		}
		format, err := params.normalizedFormat()
		if err != nil {
			return nil, err
		}
		results, runErr, err := s.run(ctx, params, engine.Options{})
		if err != nil {
			return nil, err
		}

		if format == formatText {
			var sb strings.Builder
			if err := report.WriteText(&sb, results, report.TextOptions{MaxOccurrences: params.MaxOccurrences}); err != nil {
				return nil, err
			}
			if runErr != nil {
				fmt.Fprintf(&sb, "\nerrors: %v\n", runErr)
			}
			for _, w := range params.Warnings {
				fmt.Fprintf(&sb, "warning: unknown parameter '%s' ignored\n", w.Name)
			}
			return createTextResponse(sb.String()), nil
		}

		return createJSONResponse(AnalyzeResponse{
			Document: report.NewDocument(results),
			Errors:   errorStrings(runErr),
			Warnings: params.Warnings,
		})
	})
}

func (s *Server) handleMetrics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolMetrics, func() (*mcp.CallToolResult, error) {
		params, err := decodeAnalyzeParams(req)
		if err != nil {
			return nil, err
		}
		// Metrics do not depend on the detectors; run none of them.
		params.Rules, params.Disable = nil, types.RuleNames()
		results, runErr, err := s.run(ctx, params, engine.Options{})
		if err != nil {
			return nil, err
		}

		response := MetricsResponse{
			Codebases: make([]CodebaseMetrics, 0, len(results)),
			Errors:    errorStrings(runErr),
			Warnings:  params.Warnings,
		}
		for _, r := range results {
			cm := CodebaseMetrics{MetricCollection: r.Metrics, Coupling: r.Coupling}
			if ratios, ok := r.Metrics.Ratios(); ok {
				cm.Ratios = &ratios
			}
			response.Codebases = append(response.Codebases, cm)
		}
		return createJSONResponse(response)
	})
}

func (s *Server) handleListRules(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolRules, func() (*mcp.CallToolResult, error) {
		registry, err := s.cfg.Registry()
		if err != nil {
			return nil, err
		}
		response := RulesResponse{}
		for _, kind := range types.AllRuleKinds() {
			response.Rules = append(response.Rules, RuleInfo{
				Name:    kind.String(),
				Message: kind.Message(),
				Enabled: registry.Has(kind),
			})
		}
		return createJSONResponse(response)
	})
}

// run analyzes with the request applied on top of the server
// configuration. runErr carries codebases that failed while others
// succeeded; err means nothing could be analyzed.
func (s *Server) run(ctx context.Context, params AnalyzeParams, opts engine.Options) (results []*engine.Result, runErr error, err error) {
	cfg, err := s.requestConfig(params)
	if err != nil {
		return nil, nil, err
	}

	s.runs.Lock()
	defer s.runs.Unlock()

	results, runErr = engine.Run(ctx, cfg, opts)
	if results == nil && runErr != nil {
		return nil, nil, runErr
	}
	return results, runErr, nil
}

// requestConfig derives the configuration of one request.
func (s *Server) requestConfig(params AnalyzeParams) (*config.Config, error) {
	cfg := *s.cfg
	if params.Root != "" {
		root := params.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(s.cfg.Project.Root, root)
		}
		cfg.Project.Root = filepath.Clean(root)
		withIgnore, err := cfg.WithIgnoreFile()
		if err != nil {
			return nil, err
		}
		cfg = *withIgnore
	}
	if len(params.Rules) > 0 {
		cfg.Rules.Only = params.Rules
	}
	if len(params.Disable) > 0 {
		cfg.Rules.Disable = append(append([]string{}, s.cfg.Rules.Disable...), params.Disable...)
	}
	if len(params.Include) > 0 {
		cfg.Include = params.Include
	}
	if len(params.Exclude) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(append([]string{}, s.cfg.Exclude...), params.Exclude...))
	}
	return &cfg, nil
}

func errorStrings(err error) []string {
	if err == nil {
		return nil
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range multi.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
