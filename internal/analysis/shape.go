// Package analysis holds the semantic analyses the detectors build on:
// type shapes, Law of Demeter reachability, structurally equivalent
// expressions, the inheritance graph and class coupling.
package analysis

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

// Shape classifies a type by how it exposes data and behaviour.
type Shape uint8

const (
	ShapeOther Shape = iota
	ShapeObject
	ShapeDataStructure
	ShapeHybrid
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "Object"
	case ShapeDataStructure:
		return "DataStructure"
	case ShapeHybrid:
		return "Hybrid"
	}
	return "Other"
}

type shapeTraits struct {
	methods            bool
	publicProperty     bool
	publicField        bool
	publicMutableField bool
}

func (t shapeTraits) shape() Shape {
	exposesData := t.publicProperty || t.publicField
	switch {
	case exposesData && t.methods && t.publicMutableField:
		return ShapeHybrid
	case t.methods:
		return ShapeObject
	case exposesData:
		return ShapeDataStructure
	}
	return ShapeOther
}

// ClassifyDeclaration classifies a type declaration from its directly
// declared members. Interfaces and non-type nodes are ShapeOther.
func ClassifyDeclaration(tree *syntax.Tree, decl syntax.NodeID) Shape {
	switch tree.Kind(decl) {
	case syntax.KindClass, syntax.KindStruct, syntax.KindRecord:
	default:
		return ShapeOther
	}

	var t shapeTraits
	for _, m := range MemberDeclarations(tree, decl) {
		n := tree.Node(m)
		public := n.Mods.Has(syntax.ModPublic)
		switch n.Kind {
		case syntax.KindMethod:
			t.methods = true
		case syntax.KindProperty:
			if public {
				t.publicProperty = true
			}
		case syntax.KindField:
			if public {
				t.publicField = true
				if !n.Mods.Has(syntax.ModConst) && !n.Mods.Has(syntax.ModReadOnly) {
					t.publicMutableField = true
				}
			}
		}
	}
	return t.shape()
}

// ClassifySymbol classifies a type symbol from its members, inherited ones
// included.
func ClassifySymbol(sym *model.Symbol) Shape {
	if sym == nil || sym.Kind != model.SymbolType || sym.TypeKind == model.TypeInterface {
		return ShapeOther
	}

	var t shapeTraits
	for _, m := range sym.AllMembers() {
		public := m.Access == model.AccessPublic
		switch m.Kind {
		case model.SymbolMethod:
			if m.MethodKind.IsOrdinary() {
				t.methods = true
			}
		case model.SymbolProperty:
			if public {
				t.publicProperty = true
			}
		case model.SymbolField:
			if public {
				t.publicField = true
				if !m.Const && !m.ReadOnly {
					t.publicMutableField = true
				}
			}
		}
	}
	return t.shape()
}

// MemberDeclarations returns the member declarations directly inside a type
// declaration's body.
func MemberDeclarations(tree *syntax.Tree, decl syntax.NodeID) []syntax.NodeID {
	body, ok := tree.ChildByField(decl, "body")
	if !ok {
		body, ok = tree.FirstChildOfKind(decl, syntax.KindDeclarationList)
	}
	if !ok {
		return nil
	}
	return tree.Children(body)
}
