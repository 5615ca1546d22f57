// Package rules holds the smell detectors and the ordered registry that
// enumerates them. Every detector is a pure function of its input.
package rules

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/types"
)

// Default thresholds.
const (
	DefaultMaxParameters     = 3
	DefaultMaxFunctionLines  = 20
	DefaultHeadlineBlockSize = 10
)

// Options tunes the threshold-based detectors.
type Options struct {
	MaxParameters     int
	MaxFunctionLines  int
	HeadlineBlockSize int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		MaxParameters:     DefaultMaxParameters,
		MaxFunctionLines:  DefaultMaxFunctionLines,
		HeadlineBlockSize: DefaultHeadlineBlockSize,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxParameters <= 0 {
		o.MaxParameters = d.MaxParameters
	}
	if o.MaxFunctionLines <= 0 {
		o.MaxFunctionLines = d.MaxFunctionLines
	}
	if o.HeadlineBlockSize <= 0 {
		o.HeadlineBlockSize = d.HeadlineBlockSize
	}
	return o
}

// FileRule inspects a single source unit.
type FileRule interface {
	Kind() types.RuleKind
	Check(unit *model.SourceUnit) types.Recommendation
}

// CodebaseRule inspects a whole codebase and may report per file.
type CodebaseRule interface {
	Kind() types.RuleKind
	CheckCodebase(cb *model.Codebase) []types.Recommendation
}

// fileDetector adapts an occurrence finder to FileRule.
type fileDetector struct {
	kind types.RuleKind
	find func(unit *model.SourceUnit) []types.Occurrence
}

func (d fileDetector) Kind() types.RuleKind { return d.kind }

func (d fileDetector) Check(unit *model.SourceUnit) types.Recommendation {
	if unit == nil || !unit.Ok() {
		return types.NewRecommendation(d.kind)
	}
	return types.NewRecommendation(d.kind, d.find(unit)...)
}
