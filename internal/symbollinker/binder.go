package symbollinker

import (
	"fmt"
	"strings"
	"sync"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

// maxDepth bounds mutually recursive lookups such as "var x = x.Next();".
const maxDepth = 64

// Binder is the model.Oracle of one file. Results are memoized; a Binder
// is safe for concurrent use.
type Binder struct {
	l *Linker
	f *fileInfo

	mu         sync.Mutex
	refs       map[syntax.NodeID]*model.Symbol
	locals     map[syntax.NodeID]*model.Symbol
	localTypes map[*model.Symbol]*model.Symbol
}

var _ model.Oracle = (*Binder)(nil)

func newBinder(l *Linker, f *fileInfo) *Binder {
	return &Binder{
		l:          l,
		f:          f,
		refs:       make(map[syntax.NodeID]*model.Symbol),
		locals:     make(map[syntax.NodeID]*model.Symbol),
		localTypes: make(map[*model.Symbol]*model.Symbol),
	}
}

// DeclaredSymbolOf returns the symbol introduced by a type, member,
// parameter, local or local function declaration.
func (b *Binder) DeclaredSymbolOf(id syntax.NodeID) (*model.Symbol, bool) {
	sym := b.declared(id)
	return sym, sym != nil
}

// SymbolOf resolves the symbol an expression or type name refers to.
func (b *Binder) SymbolOf(id syntax.NodeID) (*model.Symbol, bool) {
	sym := b.symbolOf(id, 0)
	return sym, sym != nil
}

func (b *Binder) tree() *syntax.Tree { return b.f.tree }

func (b *Binder) valid(id syntax.NodeID) bool {
	return id >= 0 && int(id) < b.f.tree.Len()
}

func (b *Binder) declared(id syntax.NodeID) *model.Symbol {
	if !b.valid(id) {
		return nil
	}
	if sym, ok := b.f.declared[id]; ok {
		return sym
	}
	tree := b.tree()
	switch tree.Kind(id) {
	case syntax.KindParameter:
		if declaredName(tree, id) == "" {
			return nil
		}
		return b.local(id, model.SymbolParameter)
	case syntax.KindVariableDeclarator:
		return b.local(id, model.SymbolLocal)
	case syntax.KindLocalFunction:
		return b.local(id, model.SymbolMethod)
	case syntax.KindName:
		parent := tree.Parent(id)
		switch tree.Kind(parent) {
		case syntax.KindForEach, syntax.KindOther:
			return b.local(id, model.SymbolLocal)
		}
		return b.declared(parent)
	}
	return nil
}

// local returns the symbol of a parameter, local variable or local
// function, creating it on first use.
func (b *Binder) local(id syntax.NodeID, kind model.SymbolKind) *model.Symbol {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sym, ok := b.locals[id]; ok {
		return sym
	}

	tree := b.tree()
	name := tree.Node(id).Name
	if tree.Kind(id) != syntax.KindName {
		name = declaredName(tree, id)
	}
	if name == "" {
		name = strings.TrimSpace(tree.Text(id))
	}

	sym := model.NewSymbol(fmt.Sprintf("%s#%d", b.f.path, id), name, kind)
	sym.Namespace = navigator.EnclosingNamespace(tree, id)
	sym.Declarations = []model.Declaration{{File: b.f.id, Path: b.f.path, Node: id}}
	if kind == model.SymbolMethod {
		n := tree.Node(id)
		sym.MethodKind = model.MethodLocalFunction
		sym.Static = n.Mods.Has(syntax.ModStatic)
		sym.Arity = parameterCount(tree, id)
		if ret, ok := tree.ChildByField(id, "returns"); ok {
			sym.TypeName = tree.Text(ret)
		}
	}
	b.locals[id] = sym
	return sym
}

func (b *Binder) symbolOf(id syntax.NodeID, depth int) *model.Symbol {
	if depth > maxDepth || !b.valid(id) {
		return nil
	}
	b.mu.Lock()
	sym, ok := b.refs[id]
	b.mu.Unlock()
	if ok {
		return sym
	}

	sym = b.resolve(id, depth)

	b.mu.Lock()
	b.refs[id] = sym
	b.mu.Unlock()
	return sym
}

func (b *Binder) resolve(id syntax.NodeID, depth int) *model.Symbol {
	tree := b.tree()
	n := tree.Node(id)
	parent := tree.Parent(id)

	switch n.Kind {
	case syntax.KindIdentifier:
		switch tree.Kind(parent) {
		case syntax.KindMemberAccess:
			if n.Field == "name" {
				return b.symbolOf(parent, depth+1)
			}
		case syntax.KindGenericName:
			return b.symbolOf(parent, depth+1)
		case syntax.KindQualifiedName:
			if n.Field == "name" {
				return b.symbolOf(parent, depth+1)
			}
			return b.typeNamed(n.Name, id)
		}
		if isTypePosition(tree, id) {
			return b.typeNamed(n.Name, id)
		}
		return b.lookupName(id, n.Name, calleeArity(tree, id), depth)

	case syntax.KindGenericName:
		if tree.Kind(parent) == syntax.KindMemberAccess && n.Field == "name" {
			return b.symbolOf(parent, depth+1)
		}
		if isTypePosition(tree, id) || tree.Kind(parent) == syntax.KindQualifiedName {
			return b.typeNamed(n.Name, id)
		}
		return b.lookupName(id, n.Name, calleeArity(tree, id), depth)

	case syntax.KindQualifiedName:
		return b.typeNamed(n.Name, id)

	case syntax.KindNullableType:
		if inner, ok := tree.ChildByField(id, "type"); ok {
			return b.symbolOf(inner, depth+1)
		}

	case syntax.KindMemberAccess:
		return b.memberAccess(id, depth)

	case syntax.KindInvocation:
		fn, ok := tree.ChildByField(id, "function")
		if !ok {
			children := tree.Children(id)
			if len(children) == 0 {
				return nil
			}
			fn = children[0]
		}
		return b.symbolOf(fn, depth+1)

	case syntax.KindObjectCreation:
		return b.creation(id, depth)

	case syntax.KindParenthesized:
		if children := tree.Children(id); len(children) > 0 {
			return b.symbolOf(children[0], depth+1)
		}

	case syntax.KindThis:
		return b.enclosingType(id)

	case syntax.KindBase:
		if t := b.enclosingType(id); t != nil {
			if base, ok := t.BaseType(); ok {
				return base
			}
		}

	case syntax.KindName, syntax.KindParameter, syntax.KindVariableDeclarator:
		return b.declared(id)
	}
	return nil
}

// lookupName resolves a simple name in expression position: parameters and
// locals of the enclosing callables, then members of the enclosing types,
// then types.
func (b *Binder) lookupName(id syntax.NodeID, name string, arity, depth int) *model.Symbol {
	tree := b.tree()
	for p := tree.Parent(id); p != syntax.NoNode; p = tree.Parent(p) {
		k := tree.Kind(p)
		switch {
		case k == syntax.KindLambda || k.IsMethodLike():
			if sym := b.parameterNamed(p, name); sym != nil {
				return sym
			}
			if sym := b.localNamed(p, name); sym != nil {
				return sym
			}
		case k.IsTypeDeclaration() || k == syntax.KindEnum:
			if t := b.f.declared[p]; t != nil {
				if m := lookupMember(t, name, arity); m != nil {
					return m
				}
			}
		}
	}
	return b.typeNamed(name, id)
}

func (b *Binder) parameterNamed(callable syntax.NodeID, name string) *model.Symbol {
	tree := b.tree()
	params, ok := tree.ChildByField(callable, "parameters")
	if !ok {
		return nil
	}
	switch tree.Kind(params) {
	case syntax.KindParameterList:
		for _, p := range tree.ChildrenOfKind(params, syntax.KindParameter) {
			if declaredName(tree, p) == name {
				return b.local(p, model.SymbolParameter)
			}
		}
	default:
		// "x => ..." has a bare identifier as its parameter
		if strings.TrimSpace(tree.Text(params)) == name || tree.Node(params).Name == name {
			return b.local(params, model.SymbolParameter)
		}
	}
	return nil
}

// localNamed finds a local variable or local function declared inside
// callable.
func (b *Binder) localNamed(callable syntax.NodeID, name string) *model.Symbol {
	tree := b.tree()
	var found *model.Symbol
	tree.Walk(callable, func(id syntax.NodeID) bool {
		if found != nil {
			return false
		}
		n := tree.Node(id)
		switch n.Kind {
		case syntax.KindLocalFunction:
			if id != callable && n.Name == name {
				found = b.local(id, model.SymbolMethod)
				return false
			}
		case syntax.KindName:
			if n.Name != name {
				return false
			}
			switch tree.Kind(n.Parent) {
			case syntax.KindVariableDeclarator:
				found = b.local(n.Parent, model.SymbolLocal)
			case syntax.KindForEach, syntax.KindOther:
				found = b.local(id, model.SymbolLocal)
			}
			return false
		}
		return true
	})
	return found
}

func (b *Binder) memberAccess(id syntax.NodeID, depth int) *model.Symbol {
	tree := b.tree()
	recv, ok := tree.ChildByField(id, "expression")
	if !ok {
		return nil
	}
	name := tree.Node(id).Name
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	arity := calleeArity(tree, id)

	var receiver *model.Symbol
	if rs := b.symbolOf(recv, depth+1); rs != nil && rs.Kind == model.SymbolType {
		receiver = rs
	} else {
		receiver = b.typeOf(recv, depth+1)
	}
	if receiver == nil && tree.Kind(recv) == syntax.KindMemberAccess {
		// Namespace-qualified type such as System.IO.File.
		receiver = b.typeNamed(qualifiedName(tree, recv), recv)
	}
	if receiver == nil {
		return nil
	}
	if m := lookupMember(receiver, name, arity); m != nil {
		return m
	}
	if arity >= 0 {
		return b.l.extension(name, arity, receiver)
	}
	return nil
}

// qualifiedName returns the dotted name spelled by a chain of member
// accesses over an identifier, or "" for any other expression.
func qualifiedName(tree *syntax.Tree, id syntax.NodeID) string {
	switch tree.Kind(id) {
	case syntax.KindIdentifier:
		return tree.Node(id).Name
	case syntax.KindMemberAccess:
		recv, ok := tree.ChildByField(id, "expression")
		if !ok {
			return ""
		}
		prefix := qualifiedName(tree, recv)
		if prefix == "" {
			return ""
		}
		return prefix + "." + tree.Node(id).Name
	}
	return ""
}

func (b *Binder) creation(id syntax.NodeID, depth int) *model.Symbol {
	tree := b.tree()
	typ, ok := tree.ChildByField(id, "type")
	if !ok {
		return nil
	}
	t := b.symbolOf(typ, depth+1)
	if t == nil || t.Kind != model.SymbolType {
		return nil
	}
	args := 0
	if list, ok := tree.ChildByField(id, "arguments"); ok {
		args = len(tree.ChildrenOfKind(list, syntax.KindArgument))
	}
	return constructorOf(t, args)
}

// typeOf returns the declared type of an expression when it is a type of
// the codebase.
func (b *Binder) typeOf(expr syntax.NodeID, depth int) *model.Symbol {
	if depth > maxDepth {
		return nil
	}
	tree := b.tree()
	switch tree.Kind(expr) {
	case syntax.KindIdentifier, syntax.KindGenericName, syntax.KindMemberAccess, syntax.KindInvocation:
		return b.typeOfSymbol(b.symbolOf(expr, depth+1), depth+1)
	case syntax.KindObjectCreation:
		if typ, ok := tree.ChildByField(expr, "type"); ok {
			if t := b.symbolOf(typ, depth+1); t != nil && t.Kind == model.SymbolType {
				return t
			}
		}
	case syntax.KindCast:
		if typ, ok := tree.ChildByField(expr, "type"); ok {
			if t := b.symbolOf(typ, depth+1); t != nil && t.Kind == model.SymbolType {
				return t
			}
		}
	case syntax.KindThis, syntax.KindBase:
		return b.symbolOf(expr, depth+1)
	case syntax.KindParenthesized:
		if children := tree.Children(expr); len(children) > 0 {
			return b.typeOf(children[0], depth+1)
		}
	}
	return nil
}

func (b *Binder) typeOfSymbol(sym *model.Symbol, depth int) *model.Symbol {
	if sym == nil {
		return nil
	}
	switch sym.Kind {
	case model.SymbolParameter, model.SymbolLocal:
		return b.localType(sym, depth)
	case model.SymbolField, model.SymbolProperty:
		return b.l.typeOfMember(sym)
	case model.SymbolMethod:
		if sym.MethodKind == model.MethodConstructor {
			t, _ := sym.ContainingType()
			return t
		}
		if sym.MethodKind == model.MethodLocalFunction {
			return b.typeNamedAt(elementTypeName(sym.TypeName), sym)
		}
		return b.l.typeOfMember(sym)
	}
	return nil
}

// localType infers the type of a parameter or local from its declaration;
// "var" locals take the type of their initializer.
func (b *Binder) localType(sym *model.Symbol, depth int) *model.Symbol {
	b.mu.Lock()
	t, ok := b.localTypes[sym]
	b.mu.Unlock()
	if ok {
		return t
	}

	t = b.inferLocalType(sym, depth)

	b.mu.Lock()
	b.localTypes[sym] = t
	b.mu.Unlock()
	return t
}

func (b *Binder) inferLocalType(sym *model.Symbol, depth int) *model.Symbol {
	if len(sym.Declarations) == 0 {
		return nil
	}
	tree := b.tree()
	decl := sym.Declarations[0].Node

	var typ syntax.NodeID
	found := false
	switch tree.Kind(decl) {
	case syntax.KindParameter:
		typ, found = tree.ChildByField(decl, "type")
	case syntax.KindVariableDeclarator:
		typ, found = tree.ChildByField(tree.Parent(decl), "type")
		if found && tree.Node(typ).Name == "var" {
			if init, ok := initializerOf(tree, decl); ok {
				return b.typeOf(init, depth+1)
			}
			return nil
		}
	case syntax.KindName:
		typ, found = tree.ChildByField(tree.Parent(decl), "type")
	}
	if !found {
		return nil
	}
	if t := b.symbolOf(typ, depth+1); t != nil && t.Kind == model.SymbolType {
		return t
	}
	return nil
}

func (b *Binder) typeNamed(name string, at syntax.NodeID) *model.Symbol {
	if name == "var" || name == "dynamic" {
		return nil
	}
	return b.l.lookupType(name, b.scopeAt(at))
}

func (b *Binder) typeNamedAt(name string, sym *model.Symbol) *model.Symbol {
	if name == "" || len(sym.Declarations) == 0 {
		return nil
	}
	return b.typeNamed(name, sym.Declarations[0].Node)
}

func (b *Binder) scopeAt(id syntax.NodeID) scope {
	return scope{
		ns:     navigator.EnclosingNamespace(b.tree(), id),
		usings: b.f.usings,
		owner:  b.enclosingType(id),
	}
}

func (b *Binder) enclosingType(id syntax.NodeID) *model.Symbol {
	tree := b.tree()
	for p := tree.Parent(id); p != syntax.NoNode; p = tree.Parent(p) {
		if k := tree.Kind(p); k.IsTypeDeclaration() || k == syntax.KindEnum {
			return b.f.declared[p]
		}
	}
	return nil
}

// lookupMember finds a member of t, its base chain or its interfaces. When
// arity is not negative, methods with that many parameters are preferred.
func lookupMember(t *model.Symbol, name string, arity int) *model.Symbol {
	seen := make(map[*model.Symbol]bool)
	var fallback *model.Symbol
	var search func(*model.Symbol) *model.Symbol
	search = func(t *model.Symbol) *model.Symbol {
		if t == nil || seen[t] {
			return nil
		}
		seen[t] = true
		for _, m := range t.Members() {
			if m.Name != name {
				continue
			}
			if arity < 0 || m.Kind != model.SymbolMethod || m.Arity == arity {
				return m
			}
			if fallback == nil {
				fallback = m
			}
		}
		for _, i := range t.Interfaces() {
			if m := search(i); m != nil {
				return m
			}
		}
		if base, ok := t.BaseType(); ok {
			return search(base)
		}
		return nil
	}
	if m := search(t); m != nil {
		return m
	}
	return fallback
}

// constructorOf picks the instance constructor of t taking args arguments,
// falling back to the first one declared.
func constructorOf(t *model.Symbol, args int) *model.Symbol {
	var first *model.Symbol
	for _, m := range t.Members() {
		if m.MethodKind != model.MethodConstructor {
			continue
		}
		if m.Arity == args {
			return m
		}
		if first == nil {
			first = m
		}
	}
	return first
}

// calleeArity returns the argument count when id is the function of an
// invocation, and -1 otherwise.
func calleeArity(tree *syntax.Tree, id syntax.NodeID) int {
	parent := tree.Parent(id)
	if tree.Kind(parent) != syntax.KindInvocation {
		return -1
	}
	if fn, ok := tree.ChildByField(parent, "function"); ok && fn != id {
		return -1
	}
	args, ok := tree.ChildByField(parent, "arguments")
	if !ok {
		args, ok = tree.FirstChildOfKind(parent, syntax.KindArgumentList)
	}
	if !ok {
		return 0
	}
	return len(tree.ChildrenOfKind(args, syntax.KindArgument))
}

// isTypePosition reports identifiers that can only name a type.
func isTypePosition(tree *syntax.Tree, id syntax.NodeID) bool {
	switch tree.Node(id).Field {
	case "type", "returns":
		return true
	}
	parent := tree.Parent(id)
	switch tree.Kind(parent) {
	case syntax.KindBaseList, syntax.KindTypeArgumentList, syntax.KindArrayType, syntax.KindNullableType:
		return true
	case syntax.KindOther:
		return tree.Kind(tree.Parent(parent)) == syntax.KindBaseList
	}
	return false
}

// initializerOf returns the expression assigned by a variable declarator.
func initializerOf(tree *syntax.Tree, declarator syntax.NodeID) (syntax.NodeID, bool) {
	children := tree.Children(declarator)
	for i := len(children) - 1; i >= 0; i-- {
		c := children[i]
		if tree.Kind(c) == syntax.KindName {
			return syntax.NoNode, false
		}
		if tree.Kind(c) == syntax.KindOther && strings.HasPrefix(tree.Text(c), "=") {
			inner := tree.Children(c)
			if len(inner) == 0 {
				return syntax.NoNode, false
			}
			return inner[0], true
		}
		return c, true
	}
	return syntax.NoNode, false
}
