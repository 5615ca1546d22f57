package rules

import (
	"regexp"

	"github.com/standardbeagle/smellscan/internal/metrics"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var numberSeriesName = regexp.MustCompile(`^[a-zA-Z][0-9]{1,3}$`)

func findNumberSeriesNames(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for id := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindVariableDeclarator) {
		if numberSeriesName.MatchString(tree.Node(id).Name) {
			out = append(out, navigator.OccurrenceOf(unit, id))
		}
	}
	return out
}

func tooManyArguments(max int) func(*model.SourceUnit) []types.Occurrence {
	return func(unit *model.SourceUnit) []types.Occurrence {
		tree := unit.Tree
		var out []types.Occurrence
		for list := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindParameterList) {
			if len(tree.ChildrenOfKind(list, syntax.KindParameter)) > max {
				out = append(out, navigator.OccurrenceOf(unit, list))
			}
		}
		return out
	}
}

func tooBigFunctions(max int) func(*model.SourceUnit) []types.Occurrence {
	return func(unit *model.SourceUnit) []types.Occurrence {
		tree := unit.Tree
		var out []types.Occurrence
		for fn := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.MethodLikeKinds...) {
			if metrics.LinesOfCode(tree, fn) > max {
				out = append(out, navigator.OccurrenceOf(unit, fn))
			}
		}
		return out
	}
}

// findFlagArguments reports boolean parameters and parameters that select
// the branch of a switch statement inside their function.
func findFlagArguments(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for param := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindParameter) {
		if isBoolParameter(tree, param) || governsSwitch(tree, param) {
			out = append(out, navigator.OccurrenceOf(unit, param))
		}
	}
	return out
}

func isBoolParameter(tree *syntax.Tree, param syntax.NodeID) bool {
	typ, ok := tree.ChildByField(param, "type")
	if !ok {
		return false
	}
	if tree.Kind(typ) == syntax.KindNullableType {
		inner, ok := tree.FirstChildOfKind(typ, syntax.KindPredefinedType)
		if !ok {
			return false
		}
		typ = inner
	}
	return tree.Kind(typ) == syntax.KindPredefinedType && nodeName(tree, typ) == "bool"
}

func governsSwitch(tree *syntax.Tree, param syntax.NodeID) bool {
	name := tree.Node(param).Name
	if name == "" {
		return false
	}
	owner := tree.Parent(tree.Parent(param))
	if owner == syntax.NoNode {
		return false
	}
	for sw := range navigator.DescendantsOfKind(tree, owner, syntax.KindSwitch) {
		value, ok := tree.ChildByField(sw, "value")
		if !ok {
			continue
		}
		value = unwrapParens(tree, value)
		if tree.Kind(value) == syntax.KindIdentifier && tree.Node(value).Name == name {
			return true
		}
	}
	return false
}

func unwrapParens(tree *syntax.Tree, id syntax.NodeID) syntax.NodeID {
	for tree.Kind(id) == syntax.KindParenthesized {
		children := tree.Children(id)
		if len(children) == 0 {
			break
		}
		id = children[0]
	}
	return id
}

func nodeName(tree *syntax.Tree, id syntax.NodeID) string {
	if n := tree.Node(id).Name; n != "" {
		return n
	}
	return tree.Text(id)
}
