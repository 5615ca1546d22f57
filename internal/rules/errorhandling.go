package rules

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

func findNullReturns(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for ret := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindReturn) {
		if hasLiteralChild(tree, ret, syntax.LitNull) {
			out = append(out, navigator.OccurrenceOf(unit, ret))
		}
	}
	return out
}

// findNullArguments reports each invocation argument list holding at least
// one null literal argument.
func findNullArguments(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for inv := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindInvocation) {
		list, ok := tree.FirstChildOfKind(inv, syntax.KindArgumentList)
		if !ok {
			continue
		}
		for _, arg := range tree.ChildrenOfKind(list, syntax.KindArgument) {
			if hasLiteralChild(tree, arg, syntax.LitNull) {
				out = append(out, navigator.OccurrenceOf(unit, list))
				break
			}
		}
	}
	return out
}

// findErrorFlags reports returns of numeric literals and negated values.
func findErrorFlags(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for ret := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindReturn) {
		if hasLiteralChild(tree, ret, syntax.LitNumeric) || hasNegationChild(tree, ret) {
			out = append(out, navigator.OccurrenceOf(unit, ret))
		}
	}
	return out
}

func hasLiteralChild(tree *syntax.Tree, id syntax.NodeID, lit syntax.LitKind) bool {
	for _, c := range tree.ChildrenOfKind(id, syntax.KindLiteral) {
		if tree.Node(c).Lit == lit {
			return true
		}
	}
	return false
}

func hasNegationChild(tree *syntax.Tree, id syntax.NodeID) bool {
	for _, c := range tree.ChildrenOfKind(id, syntax.KindPrefixUnary) {
		if tree.Node(c).Op == syntax.OpSub {
			return true
		}
	}
	return false
}
