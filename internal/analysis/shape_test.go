package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

func TestClassifyDeclaration(t *testing.T) {
	type member struct {
		kind syntax.Kind
		mods syntax.Modifiers
	}
	tests := []struct {
		name    string
		kind    syntax.Kind
		members []member
		want    Shape
	}{
		{"empty class", syntax.KindClass, nil, ShapeOther},
		{"public auto property", syntax.KindClass, []member{{syntax.KindProperty, syntax.ModPublic}}, ShapeDataStructure},
		{"public field", syntax.KindStruct, []member{{syntax.KindField, syntax.ModPublic}}, ShapeDataStructure},
		{"private state with behaviour", syntax.KindClass, []member{
			{syntax.KindField, syntax.ModPrivate},
			{syntax.KindMethod, syntax.ModPublic},
		}, ShapeObject},
		{"hybrid", syntax.KindClass, []member{
			{syntax.KindField, syntax.ModPublic},
			{syntax.KindMethod, syntax.ModPublic},
		}, ShapeHybrid},
		{"readonly field keeps it an object", syntax.KindClass, []member{
			{syntax.KindField, syntax.ModPublic | syntax.ModReadOnly},
			{syntax.KindMethod, 0},
		}, ShapeObject},
		{"const field keeps it an object", syntax.KindRecord, []member{
			{syntax.KindField, syntax.ModPublic | syntax.ModConst},
			{syntax.KindProperty, syntax.ModPublic},
			{syntax.KindMethod, 0},
		}, ShapeObject},
		{"interface", syntax.KindInterface, []member{
			{syntax.KindProperty, syntax.ModPublic},
			{syntax.KindMethod, syntax.ModPublic},
		}, ShapeOther},
		{"constructor is not a method", syntax.KindClass, []member{
			{syntax.KindConstructor, syntax.ModPublic},
			{syntax.KindProperty, syntax.ModPublic},
		}, ShapeDataStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTreeBuilder("shape.cs")
			decl, body := tb.typeDecl(tb.root, tt.kind, "T", nil)
			for _, m := range tt.members {
				tb.add(body, m.kind, mods(m.mods))
			}
			unit := tb.unit(1)
			assert.Equal(t, tt.want, ClassifyDeclaration(unit.Tree, decl))
		})
	}
}

func TestClassifyDeclarationRejectsNonTypes(t *testing.T) {
	tb := newTreeBuilder("shape.cs")
	_, body := tb.typeDecl(tb.root, syntax.KindClass, "T", nil)
	m, _, _ := tb.method(body, "M", nil, syntax.ModPublic)
	unit := tb.unit(1)

	assert.Equal(t, ShapeOther, ClassifyDeclaration(unit.Tree, m))
	assert.Equal(t, ShapeOther, ClassifyDeclaration(unit.Tree, unit.Tree.Root()))
}

func TestClassifySymbol(t *testing.T) {
	t.Run("data structure", func(t *testing.T) {
		point := typeSymbol("Point", model.TypeClass)
		memberSymbol(point, "X", model.SymbolProperty, model.AccessPublic)
		ctor := memberSymbol(point, ".ctor", model.SymbolMethod, model.AccessPublic)
		ctor.MethodKind = model.MethodConstructor
		assert.Equal(t, ShapeDataStructure, ClassifySymbol(point))
	})

	t.Run("inherited members count", func(t *testing.T) {
		base := typeSymbol("Base", model.TypeClass)
		memberSymbol(base, "Counter", model.SymbolField, model.AccessPublic)
		derived := typeSymbol("Derived", model.TypeClass)
		derived.SetBaseType(base)
		memberSymbol(derived, "Run", model.SymbolMethod, model.AccessPublic)
		assert.Equal(t, ShapeHybrid, ClassifySymbol(derived))
		assert.Equal(t, ShapeDataStructure, ClassifySymbol(base))
	})

	t.Run("object", func(t *testing.T) {
		svc := typeSymbol("Service", model.TypeClass)
		memberSymbol(svc, "state", model.SymbolField, model.AccessPrivate)
		memberSymbol(svc, "Run", model.SymbolMethod, model.AccessPublic)
		assert.Equal(t, ShapeObject, ClassifySymbol(svc))
	})

	t.Run("accessors are not methods", func(t *testing.T) {
		dto := typeSymbol("Dto", model.TypeStruct)
		memberSymbol(dto, "Name", model.SymbolProperty, model.AccessPublic)
		get := memberSymbol(dto, "get_Name", model.SymbolMethod, model.AccessPublic)
		get.MethodKind = model.MethodPropertyGet
		assert.Equal(t, ShapeDataStructure, ClassifySymbol(dto))
	})

	t.Run("interface and non-types", func(t *testing.T) {
		iface := typeSymbol("IThing", model.TypeInterface)
		memberSymbol(iface, "Do", model.SymbolMethod, model.AccessPublic)
		assert.Equal(t, ShapeOther, ClassifySymbol(iface))
		assert.Equal(t, ShapeOther, ClassifySymbol(nil))
		assert.Equal(t, ShapeOther, ClassifySymbol(model.NewSymbol("x", "x", model.SymbolLocal)))
	})
}
