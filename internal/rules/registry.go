package rules

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/smellscan/internal/types"
)

// maxSuggestionDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestionDistance = 3

// Registry is the ordered list of detectors. File rules run before
// codebase rules; within each group the order is fixed.
type Registry struct {
	file     []FileRule
	codebase []CodebaseRule
}

// NewRegistry builds the full catalog of detectors.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		file: []FileRule{
			fileDetector{types.RuleLODViolation, findDemeterViolations},
			fileDetector{types.RuleHybridDataStructure, findHybridDataStructures},
			fileDetector{types.RuleLimitCondition, findLimitConditions},
			fileDetector{types.RuleVariableNameIsNumberSeries, findNumberSeriesNames},
			fileDetector{types.RuleFunctionWithTooManyArguments, tooManyArguments(opts.MaxParameters)},
			fileDetector{types.RuleFunctionIsTooBig, tooBigFunctions(opts.MaxFunctionLines)},
			fileDetector{types.RuleFlagArgument, findFlagArguments},
			fileDetector{types.RuleCodeInComment, findCodeInComments},
			fileDetector{types.RuleCommentHeadline, headlineComments(opts.HeadlineBlockSize)},
			fileDetector{types.RuleDocumentationOnPrivateSoftwareUnits, findPrivateDocumentation},
			fileDetector{types.RuleNullReturn, findNullReturns},
			fileDetector{types.RuleNullArgument, findNullArguments},
			fileDetector{types.RuleErrorFlag, findErrorFlags},
		},
		codebase: []CodebaseRule{
			inheritanceRule{},
		},
	}
}

// FileRules returns the per-file detectors in registry order.
func (r *Registry) FileRules() []FileRule { return r.file }

// CodebaseRules returns the codebase detectors in registry order.
func (r *Registry) CodebaseRules() []CodebaseRule { return r.codebase }

// Kinds returns the rule kinds of every registered detector in order.
func (r *Registry) Kinds() []types.RuleKind {
	kinds := make([]types.RuleKind, 0, len(r.file)+len(r.codebase))
	for _, f := range r.file {
		kinds = append(kinds, f.Kind())
	}
	for _, c := range r.codebase {
		kinds = append(kinds, c.Kind())
	}
	return kinds
}

// Has reports whether a detector for kind is registered.
func (r *Registry) Has(kind types.RuleKind) bool {
	for _, k := range r.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Without returns a copy of r minus the detectors of the given kinds.
func (r *Registry) Without(disabled ...types.RuleKind) *Registry {
	skip := make(map[types.RuleKind]bool, len(disabled))
	for _, k := range disabled {
		skip[k] = true
	}
	out := &Registry{}
	for _, f := range r.file {
		if !skip[f.Kind()] {
			out.file = append(out.file, f)
		}
	}
	for _, c := range r.codebase {
		if !skip[c.Kind()] {
			out.codebase = append(out.codebase, c)
		}
	}
	return out
}

// Only returns a copy of r restricted to the given kinds. An empty list
// keeps everything.
func (r *Registry) Only(kinds ...types.RuleKind) *Registry {
	if len(kinds) == 0 {
		return r.Without()
	}
	keep := make(map[types.RuleKind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}
	var drop []types.RuleKind
	for _, k := range r.Kinds() {
		if !keep[k] {
			drop = append(drop, k)
		}
	}
	return r.Without(drop...)
}

// UnknownRuleError reports a rule name that is not in the catalog.
type UnknownRuleError struct {
	Name       string
	Suggestion string
}

func (e *UnknownRuleError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown rule '%s' (did you mean '%s'?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown rule '%s'", e.Name)
}

// ParseKinds resolves catalog names to rule kinds. The first unknown name
// fails with an *UnknownRuleError.
func ParseKinds(names []string) ([]types.RuleKind, error) {
	kinds := make([]types.RuleKind, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, ok := types.ParseRuleKind(name)
		if !ok {
			suggestion, _ := Suggest(name)
			return nil, &UnknownRuleError{Name: name, Suggestion: suggestion}
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Suggest finds the catalog name closest to name by Levenshtein distance.
func Suggest(name string) (string, bool) {
	input := strings.ToLower(strings.TrimSpace(name))
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range types.RuleNames() {
		distance := edlib.LevenshteinDistance(input, strings.ToLower(candidate))
		if distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best, best != ""
}
