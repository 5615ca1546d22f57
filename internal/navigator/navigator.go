// Package navigator provides tree queries shared by the analyzers: ancestor
// and descendant search, member reachability and occurrence construction.
package navigator

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// ErrNoEnclosingNode is matched by every NoEnclosingNodeError.
var ErrNoEnclosingNode = errors.New("no enclosing node")

// NoEnclosingNodeError reports a failed ancestor search.
type NoEnclosingNodeError struct {
	From  syntax.NodeID
	Kinds []syntax.Kind
}

func (e *NoEnclosingNodeError) Error() string {
	names := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		names[i] = k.String()
	}
	return fmt.Sprintf("no enclosing %s for node %d", strings.Join(names, "|"), e.From)
}

func (e *NoEnclosingNodeError) Is(target error) bool {
	return target == ErrNoEnclosingNode
}

// FindEnclosingOfKind returns the nearest strict ancestor of node whose kind
// is one of kinds.
func FindEnclosingOfKind(tree *syntax.Tree, node syntax.NodeID, kinds ...syntax.Kind) (syntax.NodeID, bool) {
	for p := tree.Parent(node); p != syntax.NoNode; p = tree.Parent(p) {
		if hasKind(tree.Kind(p), kinds) {
			return p, true
		}
	}
	return syntax.NoNode, false
}

// EnclosingOfKind is FindEnclosingOfKind for callers that treat absence as an error.
func EnclosingOfKind(tree *syntax.Tree, node syntax.NodeID, kinds ...syntax.Kind) (syntax.NodeID, error) {
	if id, ok := FindEnclosingOfKind(tree, node, kinds...); ok {
		return id, nil
	}
	return syntax.NoNode, &NoEnclosingNodeError{From: node, Kinds: kinds}
}

// HasEnclosingOfKind reports whether node has an ancestor of one of kinds.
func HasEnclosingOfKind(tree *syntax.Tree, node syntax.NodeID, kinds ...syntax.Kind) bool {
	_, ok := FindEnclosingOfKind(tree, node, kinds...)
	return ok
}

// DescendantsOfKind yields the strict descendants of root whose kind is one
// of kinds, in document order.
func DescendantsOfKind(tree *syntax.Tree, root syntax.NodeID, kinds ...syntax.Kind) iter.Seq[syntax.NodeID] {
	return func(yield func(syntax.NodeID) bool) {
		stop := false
		tree.Walk(root, func(id syntax.NodeID) bool {
			if stop {
				return false
			}
			if id != root && hasKind(tree.Kind(id), kinds) && !yield(id) {
				stop = true
				return false
			}
			return true
		})
	}
}

// CollectDescendants gathers DescendantsOfKind into a slice.
func CollectDescendants(tree *syntax.Tree, root syntax.NodeID, kinds ...syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	for id := range DescendantsOfKind(tree, root, kinds...) {
		out = append(out, id)
	}
	return out
}

// IsSymbolReachableFrom reports whether target can be reached through one of
// the types mentioned inside nodes. Every type-denoting sub-expression of
// each node is resolved; each resolved type contributes its members and the
// members of its base chain. Matching compares names only.
func IsSymbolReachableFrom(tree *syntax.Tree, oracle model.Oracle, target *model.Symbol, nodes []syntax.NodeID) bool {
	if target == nil {
		return false
	}
	for _, n := range nodes {
		if reachableWithin(tree, oracle, target.Name, n) {
			return true
		}
	}
	return false
}

func reachableWithin(tree *syntax.Tree, oracle model.Oracle, name string, root syntax.NodeID) bool {
	check := func(id syntax.NodeID) bool {
		sym, ok := oracle.SymbolOf(id)
		if !ok || sym.Kind != model.SymbolType {
			return false
		}
		_, found := sym.LookupMember(name)
		return found
	}
	if tree.Kind(root).IsTypeSyntax() && check(root) {
		return true
	}
	for id := range DescendantsOfKind(tree, root, syntax.TypeSyntaxKinds...) {
		if check(id) {
			return true
		}
	}
	return false
}

// EnclosingNamespace returns the dotted namespace that node is declared in,
// honouring both block and file-scoped namespace declarations.
func EnclosingNamespace(tree *syntax.Tree, node syntax.NodeID) string {
	var parts []string
	for p := tree.Parent(node); p != syntax.NoNode; p = tree.Parent(p) {
		if tree.Kind(p) == syntax.KindNamespace && tree.Node(p).Name != "" {
			parts = append([]string{tree.Node(p).Name}, parts...)
		}
	}
	if fileNS, ok := tree.FirstChildOfKind(tree.Root(), syntax.KindFileScopedNamespace); ok && tree.Node(fileNS).Name != "" {
		parts = append([]string{tree.Node(fileNS).Name}, parts...)
	}
	return strings.Join(parts, ".")
}

// OccurrenceOf locates node as evidence: its file, 1-based start line and
// the first line of its text.
func OccurrenceOf(unit *model.SourceUnit, node syntax.NodeID) types.Occurrence {
	n := unit.Tree.Node(node)
	return types.NewOccurrence(unit.Path, n.StartLine, unit.Tree.Text(node))
}

// PairOccurrenceOf records two matched nodes in one occurrence. The fragment
// is taken from the first node.
func PairOccurrenceOf(unit *model.SourceUnit, first, second syntax.NodeID) types.Occurrence {
	a := unit.Tree.Node(first)
	b := unit.Tree.Node(second)
	return types.NewPairOccurrence(unit.Path, a.StartLine, b.StartLine, unit.Tree.Text(first))
}

// TriviaOccurrence locates a comment as evidence.
func TriviaOccurrence(unit *model.SourceUnit, tr syntax.Trivia) types.Occurrence {
	return types.NewOccurrence(unit.Path, tr.StartLine, unit.Tree.SpanText(tr.Span))
}

func hasKind(k syntax.Kind, kinds []syntax.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
