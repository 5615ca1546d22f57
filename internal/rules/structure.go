package rules

import (
	"github.com/standardbeagle/smellscan/internal/analysis"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var shapedKinds = []syntax.Kind{syntax.KindClass, syntax.KindStruct, syntax.KindRecord}

func findDemeterViolations(unit *model.SourceUnit) []types.Occurrence {
	var out []types.Occurrence
	for _, inv := range analysis.DemeterViolations(unit) {
		out = append(out, navigator.OccurrenceOf(unit, inv))
	}
	return out
}

func findHybridDataStructures(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for decl := range navigator.DescendantsOfKind(tree, tree.Root(), shapedKinds...) {
		if analysis.ClassifyDeclaration(tree, decl) == analysis.ShapeHybrid {
			out = append(out, navigator.OccurrenceOf(unit, decl))
		}
	}
	return out
}

func findLimitConditions(unit *model.SourceUnit) []types.Occurrence {
	var out []types.Occurrence
	for _, p := range analysis.FindLimitConditions(unit) {
		out = append(out, navigator.PairOccurrenceOf(unit, p.First, p.Second))
	}
	return out
}

// inheritanceRule reports base types that reach into their derived types.
type inheritanceRule struct{}

func (inheritanceRule) Kind() types.RuleKind { return types.RuleInheritanceDependency }

func (inheritanceRule) CheckCodebase(cb *model.Codebase) []types.Recommendation {
	var out []types.Recommendation
	for _, v := range analysis.BuildInheritanceGraph(cb).Violations() {
		rec := types.NewRecommendation(types.RuleInheritanceDependency)
		for _, site := range v.Sites {
			rec.Add(navigator.OccurrenceOf(v.Unit, site))
		}
		out = append(out, rec)
	}
	return out
}
