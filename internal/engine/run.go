package engine

import (
	"context"

	"github.com/standardbeagle/smellscan/internal/config"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/workspace"
)

// Run discovers and loads every codebase below cfg's root and analyzes it
// with the configured rules. Codebases that fail to load or analyze are
// reported in the returned error alongside the results of the others.
// When opts.Workers is zero the configured worker count is used.
func Run(ctx context.Context, cfg *config.Config, opts Options) ([]*Result, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Analysis.Workers
	}

	ws, err := workspace.New(workspace.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	codebases, loadErr := ws.LoadAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, analyzeErr := New(registry, opts).AnalyzeAll(ctx, codebases)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := &smerrors.MultiError{}
	failures.Append(loadErr)
	failures.Append(analyzeErr)
	return results, failures.ErrorOrNil()
}
