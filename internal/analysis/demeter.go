package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

var enclosingCallableKinds = []syntax.Kind{syntax.KindMethod, syntax.KindConstructor, syntax.KindLocalFunction}

// DemeterViolations returns the invocations of unit that talk to strangers,
// in document order.
func DemeterViolations(unit *model.SourceUnit) []syntax.NodeID {
	tree := unit.Tree
	oracle := unit.Oracle()

	var out []syntax.NodeID
	for inv := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindInvocation) {
		if IsDemeterViolation(tree, oracle, inv) {
			out = append(out, inv)
		}
	}
	return out
}

// IsDemeterViolation reports whether the invocation inv reaches a method that
// is neither local nor a friend of the enclosing type or method.
// Unresolved targets are never violations.
func IsDemeterViolation(tree *syntax.Tree, oracle model.Oracle, inv syntax.NodeID) bool {
	target, ok := oracle.SymbolOf(inv)
	if !ok || target.Kind != model.SymbolMethod {
		return false
	}
	if target.IsStatic() || target.IsExtension() || target.MethodKind == model.MethodLocalFunction {
		return false
	}
	if owner, ok := target.ContainingType(); ok && ClassifySymbol(owner) == ShapeDataStructure {
		return false
	}

	typeDecl, inType := navigator.FindEnclosingOfKind(tree, inv, syntax.TypeDeclarationKinds...)
	if inType && declaresMethod(tree, oracle, typeDecl, target) {
		return false
	}

	callables := enclosingCallables(tree, inv, typeDecl)
	var params []syntax.NodeID
	for _, c := range callables {
		if p, ok := tree.ChildByField(c, "parameters"); ok {
			params = append(params, p)
		}
	}
	if navigator.IsSymbolReachableFrom(tree, oracle, target, params) {
		return false
	}

	if inType && navigator.IsSymbolReachableFrom(tree, oracle, target, MemberDeclarations(tree, typeDecl)) {
		return false
	}

	if len(callables) > 0 {
		outermost := callables[len(callables)-1]
		locals := navigator.CollectDescendants(tree, outermost, syntax.KindLocalDeclaration)
		if navigator.IsSymbolReachableFrom(tree, oracle, target, locals) {
			return false
		}
	}
	return true
}

// declaresMethod reports whether target is one of the methods declared
// inside typeDecl.
func declaresMethod(tree *syntax.Tree, oracle model.Oracle, typeDecl syntax.NodeID, target *model.Symbol) bool {
	for m := range navigator.DescendantsOfKind(tree, typeDecl, syntax.KindMethod) {
		if sym, ok := oracle.DeclaredSymbolOf(m); ok && sym.Same(target) {
			return true
		}
	}
	return false
}

// enclosingCallables lists the method-likes around node, innermost first,
// stopping at typeDecl.
func enclosingCallables(tree *syntax.Tree, node, typeDecl syntax.NodeID) []syntax.NodeID {
	var out []syntax.NodeID
	for p := tree.Parent(node); p != syntax.NoNode && p != typeDecl; p = tree.Parent(p) {
		for _, k := range enclosingCallableKinds {
			if tree.Kind(p) == k {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
