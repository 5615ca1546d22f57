package symbollinker

import (
	"strconv"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

// declarer walks one file and records its types and members. It runs with
// the linker's mutex held.
type declarer struct {
	l *Linker
	f *fileInfo
}

func (d *declarer) walk(id syntax.NodeID, ns string, owner *model.Symbol) {
	tree := d.f.tree
	for _, c := range tree.Children(id) {
		n := tree.Node(c)
		switch n.Kind {
		case syntax.KindNamespace:
			d.walk(c, joinName(ns, n.Name), nil)
		case syntax.KindFileScopedNamespace:
			ns = joinName(ns, n.Name)
			d.walk(c, ns, nil)
		case syntax.KindClass, syntax.KindInterface, syntax.KindStruct, syntax.KindRecord, syntax.KindEnum:
			t := d.declareType(c, ns, owner)
			if body, ok := bodyOf(tree, c); ok {
				d.walk(body, ns, t)
			}
			if n.Kind == syntax.KindRecord {
				d.declarePositionalRecord(c, t)
			}
		case syntax.KindMethod, syntax.KindConstructor, syntax.KindDestructor,
			syntax.KindProperty, syntax.KindField, syntax.KindEvent, syntax.KindEnumMember:
			if owner != nil {
				d.declareMember(c, owner)
			}
		case syntax.KindDeclarationList, syntax.KindOther:
			if owner == nil {
				d.walk(c, ns, nil)
			}
		}
	}
}

func (d *declarer) declareType(decl syntax.NodeID, ns string, owner *model.Symbol) *model.Symbol {
	l := d.l
	n := d.f.tree.Node(decl)

	key := joinName(ns, n.Name)
	if owner != nil {
		key = l.keys[owner] + "+" + n.Name
	}

	sym, exists := l.byKey[key]
	if !exists {
		sym = model.NewSymbol(key, n.Name, model.SymbolType)
		sym.TypeKind = typeKinds[n.Kind]
		sym.Namespace = ns
		sym.Access = model.AccessInternal
		if owner != nil {
			sym.Access = model.AccessPrivate
			sym.SetContainingType(owner)
		}
		l.byKey[key] = sym
		l.keys[sym] = key
		l.byName[n.Name] = append(l.byName[n.Name], sym)
		l.typeOrder = append(l.typeOrder, sym)
	}

	// partial declarations contribute their modifiers to the merged type
	if hasAccessModifier(n.Mods) {
		sym.Access = model.AccessibilityOf(n.Mods)
	}
	if n.Mods.Has(syntax.ModStatic) {
		sym.Static = true
	}
	d.record(sym, decl)

	if list, ok := d.f.tree.FirstChildOfKind(decl, syntax.KindBaseList); ok {
		l.baseLists = append(l.baseLists, baseListDecl{file: d.f, list: list, sym: sym, ns: ns})
	}
	return sym
}

func (d *declarer) declareMember(decl syntax.NodeID, owner *model.Symbol) {
	tree := d.f.tree
	n := tree.Node(decl)

	switch n.Kind {
	case syntax.KindMethod:
		arity := parameterCount(tree, decl)
		m := d.member(owner, decl, n.Name+"/"+strconv.Itoa(arity), n.Name, model.SymbolMethod)
		m.MethodKind = model.MethodOrdinary
		m.Arity = arity
		m.TypeName = d.fieldText(decl, "returns", "type")
		d.applyModifiers(m, n.Mods, owner)
		if m.Static && arity > 0 {
			if first, ok := firstParameter(tree, decl); ok && isThisParameter(tree, first) {
				m.Extension = true
				d.l.extensions[m.Name] = append(d.l.extensions[m.Name], m)
				if typ, ok := tree.ChildByField(first, "type"); ok {
					d.l.receivers[m] = typeName(tree, typ)
				}
			}
		}

	case syntax.KindConstructor:
		arity := parameterCount(tree, decl)
		name, kind := ".ctor", model.MethodConstructor
		if n.Mods.Has(syntax.ModStatic) {
			name, kind = ".cctor", model.MethodStaticConstructor
		}
		m := d.member(owner, decl, name+"/"+strconv.Itoa(arity), name, model.SymbolMethod)
		m.MethodKind = kind
		m.Arity = arity
		d.applyModifiers(m, n.Mods, owner)

	case syntax.KindDestructor:
		m := d.member(owner, decl, "Finalize/0", "Finalize", model.SymbolMethod)
		m.MethodKind = model.MethodDestructor
		m.Access = model.AccessProtected

	case syntax.KindProperty:
		p := d.member(owner, decl, n.Name, n.Name, model.SymbolProperty)
		p.TypeName = d.fieldText(decl, "type")
		d.applyModifiers(p, n.Mods, owner)
		accessors, ok := tree.ChildByField(decl, "accessors")
		if !ok {
			accessors, ok = tree.FirstChildOfKind(decl, syntax.KindAccessorList)
		}
		if !ok {
			p.HasGetter = true
			break
		}
		for _, a := range tree.ChildrenOfKind(accessors, syntax.KindAccessor) {
			switch tree.Node(a).Name {
			case "get":
				p.HasGetter = true
			case "set", "init":
				p.HasSetter = true
			}
		}

	case syntax.KindField, syntax.KindEvent:
		vd, ok := tree.FirstChildOfKind(decl, syntax.KindVariableDeclaration)
		if !ok {
			if n.Name != "" {
				f := d.member(owner, decl, n.Name, n.Name, model.SymbolField)
				f.TypeName = d.fieldText(decl, "type")
				d.applyModifiers(f, n.Mods, owner)
			}
			return
		}
		typeText := d.fieldText(vd, "type")
		for i, v := range tree.ChildrenOfKind(vd, syntax.KindVariableDeclarator) {
			name := declaredName(tree, v)
			if name == "" {
				continue
			}
			f := d.member(owner, v, name, name, model.SymbolField)
			f.TypeName = typeText
			d.applyModifiers(f, n.Mods, owner)
			f.Const = n.Mods.Has(syntax.ModConst)
			f.ReadOnly = n.Mods.Has(syntax.ModReadOnly)
			if f.Const {
				f.Static = true
			}
			if i == 0 {
				d.f.declared[decl] = f
			}
		}

	case syntax.KindEnumMember:
		name := n.Name
		if name == "" {
			name = declaredName(tree, decl)
		}
		f := d.member(owner, decl, name, name, model.SymbolField)
		f.TypeName = owner.Name
		f.Access = model.AccessPublic
		f.Const = true
		f.Static = true
	}
}

// declarePositionalRecord adds the properties and the primary constructor
// of "record R(int A, string B)".
func (d *declarer) declarePositionalRecord(decl syntax.NodeID, t *model.Symbol) {
	tree := d.f.tree
	params, ok := tree.ChildByField(decl, "parameters")
	if !ok {
		params, ok = tree.FirstChildOfKind(decl, syntax.KindParameterList)
	}
	if !ok {
		return
	}
	list := tree.ChildrenOfKind(params, syntax.KindParameter)
	for _, p := range list {
		name := declaredName(tree, p)
		if name == "" {
			continue
		}
		key := d.l.keys[t] + "." + name
		if _, exists := d.l.byKey[key]; exists {
			continue
		}
		prop := model.NewSymbol(key, name, model.SymbolProperty)
		prop.Access = model.AccessPublic
		prop.HasGetter = true
		prop.TypeName = d.fieldText(p, "type")
		prop.Declarations = append(prop.Declarations, model.Declaration{File: d.f.id, Path: d.f.path, Node: p})
		prop.SetContainingType(t)
		d.l.byKey[key] = prop
		d.l.keys[prop] = key
	}

	arity := len(list)
	ctor := d.member(t, params, ".ctor/"+strconv.Itoa(arity), ".ctor", model.SymbolMethod)
	ctor.MethodKind = model.MethodConstructor
	ctor.Arity = arity
	ctor.Access = model.AccessPublic
	delete(d.f.declared, params)
}

// member returns the member of owner registered under suffix, creating it
// on first sight, and records decl as one of its declarations.
func (d *declarer) member(owner *model.Symbol, decl syntax.NodeID, suffix, name string, kind model.SymbolKind) *model.Symbol {
	key := d.l.keys[owner] + "." + suffix
	sym, ok := d.l.byKey[key]
	if !ok {
		sym = model.NewSymbol(key, name, kind)
		sym.SetContainingType(owner)
		d.l.byKey[key] = sym
		d.l.keys[sym] = key
	}
	d.record(sym, decl)
	return sym
}

func (d *declarer) record(sym *model.Symbol, decl syntax.NodeID) {
	sym.Declarations = append(sym.Declarations, model.Declaration{File: d.f.id, Path: d.f.path, Node: decl})
	d.f.declared[decl] = sym
}

// applyModifiers sets access and static-ness. Interface members without
// an access modifier are public.
func (d *declarer) applyModifiers(sym *model.Symbol, mods syntax.Modifiers, owner *model.Symbol) {
	sym.Access = model.AccessibilityOf(mods)
	if !hasAccessModifier(mods) && owner.TypeKind == model.TypeInterface {
		sym.Access = model.AccessPublic
	}
	sym.Static = mods.Has(syntax.ModStatic)
}

// fieldText returns the source text of the first present field child.
func (d *declarer) fieldText(id syntax.NodeID, fields ...string) string {
	for _, f := range fields {
		if c, ok := d.f.tree.ChildByField(id, f); ok {
			return d.f.tree.Text(c)
		}
	}
	return ""
}

func hasAccessModifier(mods syntax.Modifiers) bool {
	const access = syntax.ModPublic | syntax.ModPrivate | syntax.ModProtected | syntax.ModInternal
	return mods&access != 0
}

func bodyOf(tree *syntax.Tree, decl syntax.NodeID) (syntax.NodeID, bool) {
	if body, ok := tree.ChildByField(decl, "body"); ok {
		return body, true
	}
	return tree.FirstChildOfKind(decl, syntax.KindDeclarationList)
}

func parameterCount(tree *syntax.Tree, decl syntax.NodeID) int {
	params, ok := tree.ChildByField(decl, "parameters")
	if !ok {
		return 0
	}
	return len(tree.ChildrenOfKind(params, syntax.KindParameter))
}

func firstParameter(tree *syntax.Tree, decl syntax.NodeID) (syntax.NodeID, bool) {
	params, ok := tree.ChildByField(decl, "parameters")
	if !ok {
		return syntax.NoNode, false
	}
	return tree.FirstChildOfKind(params, syntax.KindParameter)
}

func isThisParameter(tree *syntax.Tree, param syntax.NodeID) bool {
	if tree.Node(param).Mods.Has(syntax.ModThis) {
		return true
	}
	text := tree.Text(param)
	return len(text) > 5 && text[:5] == "this "
}

// declaredName returns the name a declaration node introduces.
func declaredName(tree *syntax.Tree, decl syntax.NodeID) string {
	if name, ok := tree.FirstChildOfKind(decl, syntax.KindName); ok {
		return tree.Node(name).Name
	}
	return tree.Node(decl).Name
}
