package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// ClassCoupling counts, for every type declaration of unit, the calls made
// from inside it. A call is internal when its target is unresolved or
// reachable through the type's own members; external calls are tallied
// under the namespace of the called member's type.
func ClassCoupling(unit *model.SourceUnit) []types.ClassCouplingMetrics {
	tree := unit.Tree
	oracle := unit.Oracle()

	var out []types.ClassCouplingMetrics
	for decl := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.TypeDeclarationKinds...) {
		m := types.ClassCouplingMetrics{
			File:      unit.Path,
			Class:     tree.Node(decl).Name,
			Namespace: model.NamespaceName(navigator.EnclosingNamespace(tree, decl)),
		}
		if sym, ok := oracle.DeclaredSymbolOf(decl); ok {
			m.Class = sym.Name
			m.Namespace = sym.ContainingNamespace()
		}

		members := MemberDeclarations(tree, decl)
		for inv := range navigator.DescendantsOfKind(tree, decl, syntax.KindInvocation) {
			target, ok := oracle.SymbolOf(inv)
			if !ok || navigator.IsSymbolReachableFrom(tree, oracle, target, members) {
				m.AddInternal()
				continue
			}
			ns := target.ContainingNamespace()
			if owner, ok := target.ContainingType(); ok {
				ns = owner.ContainingNamespace()
			}
			m.AddExternal(ns)
		}
		out = append(out, m)
	}
	return out
}
