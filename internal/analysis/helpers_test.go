package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// treeBuilder assembles small arena trees with hand-bound symbols.
type treeBuilder struct {
	b      *syntax.Builder
	oracle *model.MapOracle
	root   syntax.NodeID
	line   int
}

type nodeOpt func(*syntax.Node)

func named(n string) nodeOpt { return func(x *syntax.Node) { x.Name = n } }
func role(f string) nodeOpt { return func(x *syntax.Node) { x.Field = f } }
func mods(m syntax.Modifiers) nodeOpt { return func(x *syntax.Node) { x.Mods = m } }
func operator(o syntax.Operator) nodeOpt { return func(x *syntax.Node) { x.Op = o } }
func onLine(l int) nodeOpt { return func(x *syntax.Node) { x.StartLine, x.EndLine = l, l } }

func newTreeBuilder(path string) *treeBuilder {
	t := &treeBuilder{b: syntax.NewBuilder(path, nil), oracle: model.NewMapOracle(), line: 1}
	t.root = t.b.Add(syntax.NoNode, syntax.Node{Kind: syntax.KindCompilationUnit, StartLine: 1})
	return t
}

func (t *treeBuilder) add(parent syntax.NodeID, kind syntax.Kind, opts ...nodeOpt) syntax.NodeID {
	n := syntax.Node{Kind: kind, StartLine: t.line, EndLine: t.line}
	for _, o := range opts {
		o(&n)
	}
	return t.b.Add(parent, n)
}

// typeDecl adds a type declaration with an empty body and returns both.
func (t *treeBuilder) typeDecl(parent syntax.NodeID, kind syntax.Kind, name string, sym *model.Symbol) (decl, body syntax.NodeID) {
	decl = t.add(parent, kind, named(name))
	body = t.add(decl, syntax.KindDeclarationList, role("body"))
	if sym != nil {
		t.oracle.Declare(decl, sym)
	}
	return decl, body
}

// method adds a method with a parameter list and a body.
func (t *treeBuilder) method(body syntax.NodeID, name string, sym *model.Symbol, m syntax.Modifiers) (decl, params, block syntax.NodeID) {
	decl = t.add(body, syntax.KindMethod, named(name), mods(m), role("member"))
	params = t.add(decl, syntax.KindParameterList, role("parameters"))
	block = t.add(decl, syntax.KindBlock, role("body"))
	if sym != nil {
		t.oracle.Declare(decl, sym)
	}
	return decl, params, block
}

func (t *treeBuilder) ident(parent syntax.NodeID, name, field string, sym *model.Symbol) syntax.NodeID {
	id := t.add(parent, syntax.KindIdentifier, named(name), role(field))
	if sym != nil {
		t.oracle.Bind(id, sym)
	}
	return id
}

func (t *treeBuilder) literal(parent syntax.NodeID, value, field string) syntax.NodeID {
	id := t.add(parent, syntax.KindLiteral, role(field))
	n := t.b.Node(id)
	n.Lit = syntax.LitNumeric
	n.Value = value
	return id
}

func (t *treeBuilder) binary(parent syntax.NodeID, op syntax.Operator, field string) syntax.NodeID {
	return t.add(parent, syntax.KindBinary, operator(op), role(field))
}

func (t *treeBuilder) bind(id syntax.NodeID, sym *model.Symbol) { t.oracle.Bind(id, sym) }

func (t *treeBuilder) nextLine() { t.line++ }

func (t *treeBuilder) unit(id types.FileID) *model.SourceUnit {
	tree := t.b.Tree()
	oracle := t.oracle
	return model.NewSourceUnit(id, tree.Path, tree, func() model.Oracle { return oracle })
}

func typeSymbol(name string, kind model.TypeKind) *model.Symbol {
	s := model.NewSymbol(name, name, model.SymbolType)
	s.TypeKind = kind
	return s
}

func memberSymbol(owner *model.Symbol, name string, kind model.SymbolKind, access model.Accessibility) *model.Symbol {
	s := model.NewSymbol(owner.Name+"."+name, name, kind)
	s.Access = access
	if kind == model.SymbolMethod {
		s.MethodKind = model.MethodOrdinary
	}
	s.SetContainingType(owner)
	return s
}
