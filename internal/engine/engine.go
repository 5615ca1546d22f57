// Package engine runs the rule registry over loaded codebases. File rules
// run in parallel per unit; codebase rules run once the per-file phase is
// done. A failing unit or detector is recorded and the run continues.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/smellscan/internal/analysis"
	"github.com/standardbeagle/smellscan/internal/debug"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/metrics"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/rules"
	"github.com/standardbeagle/smellscan/internal/types"
)

// RuleSet is the ordered set of detectors an Engine evaluates.
// *rules.Registry implements it.
type RuleSet interface {
	FileRules() []rules.FileRule
	CodebaseRules() []rules.CodebaseRule
}

// Options configures an Engine.
type Options struct {
	// Workers bounds the number of units analyzed at once. Zero means one
	// per CPU.
	Workers int
	// SkipMetrics disables the metric and coupling passes.
	SkipMetrics bool
}

// Result is everything one codebase produced.
type Result struct {
	Codebase        string                       `json:"codebase"`
	Recommendations []types.Recommendation       `json:"recommendations"`
	Metrics         types.MetricCollection       `json:"metrics"`
	Coupling        []types.ClassCouplingMetrics `json:"coupling,omitempty"`
	Errors          []error                      `json:"-"`
	Duration        time.Duration                `json:"duration"`
}

// Occurrences counts the occurrences over all recommendations.
func (r *Result) Occurrences() int {
	n := 0
	for _, rec := range r.Recommendations {
		n += len(rec.Occurrences)
	}
	return n
}

// ByKind returns the recommendations of the given kind in result order.
func (r *Result) ByKind(kind types.RuleKind) []types.Recommendation {
	var out []types.Recommendation
	for _, rec := range r.Recommendations {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// Engine evaluates a RuleSet. It holds no per-run state and may be shared.
type Engine struct {
	rules   RuleSet
	workers int
	metrics bool
}

// New creates an engine over set.
func New(set RuleSet, opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{rules: set, workers: workers, metrics: !opts.SkipMetrics}
}

// Workers returns the effective parallelism.
func (e *Engine) Workers() int { return e.workers }

// unitResult is the output of the per-file phase for one unit. Each
// goroutine owns exactly one slot, so no locking is needed.
type unitResult struct {
	recs     []types.Recommendation
	metrics  metrics.FileMetrics
	coupling []types.ClassCouplingMetrics
	errs     []error
}

// Analyze runs every detector over cb. The only error returned is a
// cancelled context; analysis failures are collected in Result.Errors.
func (e *Engine) Analyze(ctx context.Context, cb *model.Codebase) (*Result, error) {
	if cb == nil {
		return nil, smerrors.NewCodebaseError("analyze", "", "", fmt.Errorf("nil codebase"))
	}
	start := time.Now()
	results := make([]unitResult, len(cb.Units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, unit := range cb.Units {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.analyzeUnit(unit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Codebase: cb.Name}
	files := make([]metrics.FileMetrics, 0, len(results))
	for _, r := range results {
		res.Recommendations = append(res.Recommendations, r.recs...)
		res.Coupling = append(res.Coupling, r.coupling...)
		res.Errors = append(res.Errors, r.errs...)
		files = append(files, r.metrics)
	}
	if e.metrics {
		res.Metrics = metrics.Collect(cb.Name, files...)
	} else {
		res.Metrics = types.MetricCollection{Codebase: cb.Name}
	}

	for _, rule := range e.rules.CodebaseRules() {
		recs, err := runCodebaseRule(rule, cb)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		for _, rec := range recs {
			if !rec.IsEmpty() {
				res.Recommendations = append(res.Recommendations, rec)
			}
		}
	}

	res.Duration = time.Since(start)
	debug.LogAnalysis("codebase %s: %d units, %d recommendations, %d errors in %v\n",
		cb.Name, len(cb.Units), len(res.Recommendations), len(res.Errors), res.Duration)
	return res, nil
}

// AnalyzeAll analyzes each codebase in turn. A codebase that cannot be
// analyzed is reported in the returned error and skipped; a cancelled
// context stops the run.
func (e *Engine) AnalyzeAll(ctx context.Context, codebases []*model.Codebase) ([]*Result, error) {
	out := make([]*Result, 0, len(codebases))
	failures := &smerrors.MultiError{}
	for _, cb := range codebases {
		res, err := e.Analyze(ctx, cb)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			failures.Append(err)
			continue
		}
		out = append(out, res)
	}
	return out, failures.ErrorOrNil()
}

func (e *Engine) analyzeUnit(unit *model.SourceUnit) unitResult {
	var r unitResult
	if !unit.Ok() {
		err := unit.Err
		if err == nil {
			err = fmt.Errorf("no syntax tree")
		}
		r.errs = append(r.errs, smerrors.NewAnalysisError("load", err).WithFile(unit.ID, unit.Path))
		return r
	}

	for _, rule := range e.rules.FileRules() {
		rec, err := runFileRule(rule, unit)
		if err != nil {
			r.errs = append(r.errs, err)
			continue
		}
		if !rec.IsEmpty() {
			r.recs = append(r.recs, rec)
		}
	}

	if e.metrics {
		if err := guard("metrics", unit, "", func() { r.metrics = metrics.Measure(unit) }); err != nil {
			r.errs = append(r.errs, err)
		}
		if err := guard("coupling", unit, "", func() { r.coupling = analysis.ClassCoupling(unit) }); err != nil {
			r.errs = append(r.errs, err)
		}
	}
	return r
}

func runFileRule(rule rules.FileRule, unit *model.SourceUnit) (rec types.Recommendation, err error) {
	err = guard("rule", unit, rule.Kind().String(), func() { rec = rule.Check(unit) })
	return rec, err
}

func runCodebaseRule(rule rules.CodebaseRule, cb *model.Codebase) (recs []types.Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("codebase rule %s panicked on %s: %v\n", rule.Kind(), cb.Name, r)
			err = smerrors.NewPanicError("codebase rule", r).WithRule(rule.Kind().String())
		}
	}()
	return rule.CheckCodebase(cb), nil
}

// guard runs fn and turns a panic into an *errors.AnalysisError for unit.
func guard(op string, unit *model.SourceUnit, rule string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("%s %s panicked on %s: %v\n", op, rule, unit.Path, r)
			err = smerrors.NewPanicError(op, r).WithFile(unit.ID, unit.Path).WithRule(rule)
		}
	}()
	fn()
	return nil
}
