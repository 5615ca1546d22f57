package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

var concreteTypeKinds = []syntax.Kind{syntax.KindClass, syntax.KindStruct, syntax.KindRecord}

// InheritanceEdge links a base type to one of its derived types.
type InheritanceEdge struct {
	Base     *model.Symbol
	Derived  *model.Symbol
	BaseUnit *model.SourceUnit
}

// UnitViolations are the inverted-dependency sites found in one file.
type UnitViolations struct {
	Unit  *model.SourceUnit
	Sites []syntax.NodeID
}

type declaration struct {
	unit *model.SourceUnit
	node syntax.NodeID
}

// InheritanceGraph indexes the concrete type declarations of a codebase.
type InheritanceGraph struct {
	codebase     *model.Codebase
	owner        map[*model.Symbol]*model.SourceUnit
	declarations map[*model.Symbol][]declaration
	edges        []InheritanceEdge
}

// BuildInheritanceGraph collects the candidate base types of cb and the
// inheritance edges between them.
func BuildInheritanceGraph(cb *model.Codebase) *InheritanceGraph {
	g := &InheritanceGraph{
		codebase:     cb,
		owner:        make(map[*model.Symbol]*model.SourceUnit),
		declarations: make(map[*model.Symbol][]declaration),
	}
	units := cb.Healthy()

	for _, u := range units {
		oracle := u.Oracle()
		for decl := range navigator.DescendantsOfKind(u.Tree, u.Tree.Root(), concreteTypeKinds...) {
			sym, ok := oracle.DeclaredSymbolOf(decl)
			if !ok {
				continue
			}
			if _, seen := g.owner[sym]; !seen {
				g.owner[sym] = u
			}
			g.declarations[sym] = append(g.declarations[sym], declaration{unit: u, node: decl})
		}
	}

	type edgeKey struct{ base, derived *model.Symbol }
	seen := make(map[edgeKey]bool)
	for _, u := range units {
		oracle := u.Oracle()
		tree := u.Tree
		for list := range navigator.DescendantsOfKind(tree, tree.Root(), syntax.KindBaseList) {
			derivedDecl, ok := navigator.FindEnclosingOfKind(tree, list, syntax.TypeDeclarationKinds...)
			if !ok {
				continue
			}
			derived, ok := oracle.DeclaredSymbolOf(derivedDecl)
			if !ok {
				continue
			}
			for _, entry := range tree.Children(list) {
				base, ok := oracle.SymbolOf(entry)
				if !ok || base.Kind != model.SymbolType || base.Same(derived) {
					continue
				}
				baseUnit, candidate := g.owner[base]
				if !candidate {
					continue
				}
				key := edgeKey{base, derived}
				if seen[key] {
					continue
				}
				seen[key] = true
				g.edges = append(g.edges, InheritanceEdge{Base: base, Derived: derived, BaseUnit: baseUnit})
			}
		}
	}
	return g
}

// Edges returns the inheritance edges in discovery order.
func (g *InheritanceGraph) Edges() []InheritanceEdge { return g.edges }

// Violations finds, inside each base type's own declarations, the
// instantiations of and calls into its derived types. Results are grouped
// per file in codebase order.
func (g *InheritanceGraph) Violations() []UnitViolations {
	byUnit := make(map[*model.SourceUnit][]syntax.NodeID)
	for _, e := range g.edges {
		for _, d := range g.declarations[e.Base] {
			sites := derivedDependencies(d.unit, d.node, e.Derived)
			if len(sites) > 0 {
				byUnit[d.unit] = append(byUnit[d.unit], sites...)
			}
		}
	}

	var out []UnitViolations
	for _, u := range g.codebase.Units {
		if sites, ok := byUnit[u]; ok {
			out = append(out, UnitViolations{Unit: u, Sites: sites})
		}
	}
	return out
}

// derivedDependencies returns the object creations and invocations under
// decl whose target belongs to derived. An invocation that already contains
// a reported creation is not reported again.
func derivedDependencies(unit *model.SourceUnit, decl syntax.NodeID, derived *model.Symbol) []syntax.NodeID {
	tree := unit.Tree
	oracle := unit.Oracle()
	belongs := func(id syntax.NodeID) bool {
		sym, ok := oracle.SymbolOf(id)
		if !ok {
			return false
		}
		owner, ok := sym.ContainingType()
		return ok && owner.Same(derived)
	}

	var creations []syntax.NodeID
	for id := range navigator.DescendantsOfKind(tree, decl, syntax.KindObjectCreation) {
		if belongs(id) {
			creations = append(creations, id)
		}
	}

	sites := append([]syntax.NodeID(nil), creations...)
	for id := range navigator.DescendantsOfKind(tree, decl, syntax.KindInvocation) {
		if !belongs(id) || containsAny(tree, id, creations) {
			continue
		}
		sites = append(sites, id)
	}
	return sites
}

func containsAny(tree *syntax.Tree, root syntax.NodeID, nodes []syntax.NodeID) bool {
	for _, n := range nodes {
		if tree.IsAncestor(root, n) {
			return true
		}
	}
	return false
}
