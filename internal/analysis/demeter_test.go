package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

type demeterTypes struct {
	a, b, c      *model.Symbol
	getB, baz    *model.Symbol
	helper, make *model.Symbol
}

func newDemeterTypes() demeterTypes {
	var d demeterTypes
	d.a = typeSymbol("A", model.TypeClass)
	d.getB = memberSymbol(d.a, "GetB", model.SymbolMethod, model.AccessPublic)
	d.b = typeSymbol("B", model.TypeClass)
	memberSymbol(d.b, "state", model.SymbolField, model.AccessPrivate)
	d.baz = memberSymbol(d.b, "Baz", model.SymbolMethod, model.AccessPublic)
	d.c = typeSymbol("C", model.TypeClass)
	d.helper = memberSymbol(d.c, "Helper", model.SymbolMethod, model.AccessPrivate)
	d.make = memberSymbol(d.c, "Make", model.SymbolMethod, model.AccessPrivate)
	return d
}

// call adds an invocation whose function is a member access.
func call(tb *treeBuilder, parent syntax.NodeID, field string, target *model.Symbol) (inv, access syntax.NodeID) {
	inv = tb.add(parent, syntax.KindInvocation, role(field))
	access = tb.add(inv, syntax.KindMemberAccess, role("function"))
	if target != nil {
		tb.bind(inv, target)
	}
	return inv, access
}

func TestDemeterChainedCall(t *testing.T) {
	d := newDemeterTypes()
	tb := newTreeBuilder("c.cs")
	_, body := tb.typeDecl(tb.root, syntax.KindClass, "C", d.c)
	_, params, block := tb.method(body, "M", model.NewSymbol("C.M", "M", model.SymbolMethod), 0)

	param := tb.add(params, syntax.KindParameter, named("a"))
	tb.ident(param, "A", "type", d.a)
	paramSym := model.NewSymbol("C.M(a)", "a", model.SymbolParameter)

	// a.GetB().Baz()
	outer, outerAccess := call(tb, block, "expression", d.baz)
	inner, innerAccess := call(tb, outerAccess, "expression", d.getB)
	tb.ident(innerAccess, "a", "expression", paramSym)
	tb.ident(innerAccess, "GetB", "name", d.getB)
	tb.ident(outerAccess, "Baz", "name", d.baz)

	unit := tb.unit(1)
	assert.Equal(t, []syntax.NodeID{outer}, DemeterViolations(unit))
	assert.False(t, IsDemeterViolation(unit.Tree, unit.Oracle(), inner))
}

func TestDemeterExemptions(t *testing.T) {
	d := newDemeterTypes()
	tb := newTreeBuilder("c.cs")
	_, body := tb.typeDecl(tb.root, syntax.KindClass, "C", d.c)
	_, _, block := tb.method(body, "M", model.NewSymbol("C.M", "M", model.SymbolMethod), 0)
	tb.method(body, "Helper", d.helper, syntax.ModPrivate)
	tb.method(body, "Make", d.make, syntax.ModPrivate)

	// Helper(): sibling method.
	sibling := tb.add(block, syntax.KindInvocation)
	tb.bind(sibling, d.helper)

	// B b = Make(); b.Baz(): reachable through a local declaration.
	decl := tb.add(block, syntax.KindLocalDeclaration)
	vd := tb.add(decl, syntax.KindVariableDeclaration)
	tb.ident(vd, "B", "type", d.b)
	declarator := tb.add(vd, syntax.KindVariableDeclarator, named("b"))
	makeCall := tb.add(declarator, syntax.KindInvocation, role("value"))
	tb.bind(makeCall, d.make)
	viaLocal, _ := call(tb, block, "expression", d.baz)

	// Static and extension targets.
	static := model.NewSymbol("Util.Log", "Log", model.SymbolMethod)
	static.Static = true
	staticCall := tb.add(block, syntax.KindInvocation)
	tb.bind(staticCall, static)

	ext := model.NewSymbol("Ext.Shout", "Shout", model.SymbolMethod)
	ext.Extension = true
	extCall := tb.add(block, syntax.KindInvocation)
	tb.bind(extCall, ext)

	// Unresolved target.
	tb.add(block, syntax.KindInvocation)

	unit := tb.unit(1)
	assert.Empty(t, DemeterViolations(unit))
	assert.False(t, IsDemeterViolation(unit.Tree, unit.Oracle(), viaLocal))
}

func TestDemeterDataStructureReceiver(t *testing.T) {
	record := typeSymbol("Settings", model.TypeClass)
	memberSymbol(record, "Name", model.SymbolProperty, model.AccessPublic)
	// Invoking a delegate held by a data structure resolves to its invoke method.
	invoke := model.NewSymbol("Settings.OnChange", "OnChange", model.SymbolMethod)
	invoke.MethodKind = model.MethodPropertyGet
	invoke.SetContainingType(record)

	tb := newTreeBuilder("c.cs")
	_, body := tb.typeDecl(tb.root, syntax.KindClass, "C", typeSymbol("C", model.TypeClass))
	_, _, block := tb.method(body, "M", nil, 0)
	inv := tb.add(block, syntax.KindInvocation)
	tb.bind(inv, invoke)

	unit := tb.unit(1)
	assert.Equal(t, ShapeDataStructure, ClassifySymbol(record))
	assert.Empty(t, DemeterViolations(unit))
}

func TestDemeterOutsideAnyType(t *testing.T) {
	d := newDemeterTypes()
	tb := newTreeBuilder("program.cs")
	inv := tb.add(tb.root, syntax.KindInvocation)
	tb.bind(inv, d.baz)

	unit := tb.unit(1)
	assert.Equal(t, []syntax.NodeID{inv}, DemeterViolations(unit))
}
