// Package symbollinker builds the program model the rules query: a
// codebase-wide table of types and their members, and one Binder per file
// that resolves names and expressions against that table.
package symbollinker

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/standardbeagle/smellscan/internal/debug"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var (
	// ErrResolved is returned by Declare once the tables are resolved.
	ErrResolved = errors.New("symbol tables already resolved")
	// ErrDuplicateFile is returned when a file id is declared twice.
	ErrDuplicateFile = errors.New("file already declared")

	errNoTree = errors.New("no syntax tree")
)

var typeKinds = map[syntax.Kind]model.TypeKind{
	syntax.KindClass:     model.TypeClass,
	syntax.KindInterface: model.TypeInterface,
	syntax.KindStruct:    model.TypeStruct,
	syntax.KindRecord:    model.TypeRecord,
	syntax.KindEnum:      model.TypeEnum,
}

// File is one parsed source file handed to the linker. Err marks a file
// that failed to load; it still becomes a unit of the codebase.
type File struct {
	ID   types.FileID
	Path string
	Tree *syntax.Tree
	Err  error
}

type fileInfo struct {
	id       types.FileID
	path     string
	tree     *syntax.Tree
	usings   []string
	declared map[syntax.NodeID]*model.Symbol
}

type baseListDecl struct {
	file *fileInfo
	list syntax.NodeID
	sym  *model.Symbol
	ns   string
}

// scope is the context a type name is looked up from.
type scope struct {
	ns     string
	usings []string
	owner  *model.Symbol
}

// Linker collects the declarations of every file of a codebase. Declare is
// safe for concurrent use; Resolve runs once after the last Declare, and
// binders are only handed out afterwards.
type Linker struct {
	byKey      map[string]*model.Symbol
	keys       map[*model.Symbol]string
	byName     map[string][]*model.Symbol
	typeOrder  []*model.Symbol
	extensions map[string][]*model.Symbol
	receivers  map[*model.Symbol]string
	files      map[types.FileID]*fileInfo
	baseLists  []baseListDecl
	resolved   bool

	mutex sync.RWMutex
}

// NewLinker creates an empty linker.
func NewLinker() *Linker {
	return &Linker{
		byKey:      make(map[string]*model.Symbol),
		keys:       make(map[*model.Symbol]string),
		byName:     make(map[string][]*model.Symbol),
		extensions: make(map[string][]*model.Symbol),
		receivers:  make(map[*model.Symbol]string),
		files:      make(map[types.FileID]*fileInfo),
	}
}

// Link declares every loaded file in order, resolves the tables and returns
// the codebase whose units carry binders over them. Files that failed to
// load are kept as failed units.
func Link(name, root string, files []File) *model.Codebase {
	l := NewLinker()
	for _, f := range files {
		if f.Err != nil || f.Tree == nil {
			continue
		}
		if err := l.Declare(f.ID, f.Path, f.Tree); err != nil {
			debug.LogAnalysis("link %s: %v\n", f.Path, err)
		}
	}
	l.Resolve()

	cb := &model.Codebase{Name: name, Root: root, Units: make([]*model.SourceUnit, 0, len(files))}
	for _, f := range files {
		if u, ok := l.Unit(f.ID); ok && f.Err == nil {
			cb.Units = append(cb.Units, u)
			continue
		}
		err := f.Err
		if err == nil {
			err = errNoTree
		}
		cb.Units = append(cb.Units, model.FailedUnit(f.ID, f.Path, err))
	}

	stats := l.Stats()
	debug.LogAnalysis("linked %s: %d files, %d types, %d members\n", name, stats["files"], stats["types"], stats["members"])
	return cb
}

// Declare records the types and members declared by one file.
func (l *Linker) Declare(id types.FileID, path string, tree *syntax.Tree) error {
	if tree == nil {
		return fmt.Errorf("declare %s: %w", path, errNoTree)
	}
	f := &fileInfo{
		id:       id,
		path:     path,
		tree:     tree,
		usings:   collectUsings(tree),
		declared: make(map[syntax.NodeID]*model.Symbol),
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.resolved {
		return fmt.Errorf("declare %s: %w", path, ErrResolved)
	}
	if _, exists := l.files[id]; exists {
		return fmt.Errorf("declare %s: %w", path, ErrDuplicateFile)
	}
	l.files[id] = f
	if tree.Root() != syntax.NoNode {
		d := declarer{l: l, f: f}
		d.walk(tree.Root(), "", nil)
	}
	return nil
}

// Resolve links base types and interfaces and synthesizes the implicit
// constructors of types that declare none. Calling it again is a no-op.
func (l *Linker) Resolve() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.resolved {
		return
	}
	for _, bl := range l.baseLists {
		l.resolveBaseList(bl)
	}
	for _, t := range l.typeOrder {
		l.synthesizeConstructor(t)
	}
	l.resolved = true
}

// Unit wraps a declared file in a source unit whose oracle is a Binder.
func (l *Linker) Unit(id types.FileID) (*model.SourceUnit, bool) {
	l.mutex.RLock()
	f, ok := l.files[id]
	l.mutex.RUnlock()
	if !ok {
		return nil, false
	}
	return model.NewSourceUnit(f.id, f.path, f.tree, func() model.Oracle {
		return newBinder(l, f)
	}), true
}

// Binder returns the oracle of a declared file. The tables are resolved
// first when needed.
func (l *Linker) Binder(id types.FileID) (*Binder, bool) {
	l.Resolve()
	l.mutex.RLock()
	f, ok := l.files[id]
	l.mutex.RUnlock()
	if !ok {
		return nil, false
	}
	return newBinder(l, f), true
}

// Type returns the type declared under a namespace-qualified name; nested
// types use '+' after their outer type ("A.Outer+Inner").
func (l *Linker) Type(qualified string) (*model.Symbol, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	sym, ok := l.byKey[qualified]
	if !ok || sym.Kind != model.SymbolType {
		return nil, false
	}
	return sym, true
}

// Stats returns counts of the linked tables.
func (l *Linker) Stats() map[string]int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	members := 0
	for _, t := range l.typeOrder {
		members += len(t.Members())
	}
	extensions := 0
	for _, ms := range l.extensions {
		extensions += len(ms)
	}
	return map[string]int{
		"files":      len(l.files),
		"types":      len(l.typeOrder),
		"members":    members,
		"extensions": extensions,
	}
}

func (l *Linker) resolveBaseList(bl baseListDecl) {
	tree := bl.file.tree
	sc := scope{ns: bl.ns, usings: bl.file.usings}
	if owner, ok := bl.sym.ContainingType(); ok {
		sc.owner = owner
	}
	for i, entry := range tree.Children(bl.list) {
		base := l.lookupType(typeName(tree, entry), sc)
		if base == nil || base == bl.sym {
			continue
		}
		switch {
		case base.TypeKind == model.TypeInterface:
			if !containsSymbol(bl.sym.Interfaces(), base) {
				bl.sym.AddInterface(base)
			}
		case i == 0 && inheritsClasses(bl.sym) && inheritsClasses(base):
			if _, has := bl.sym.BaseType(); !has {
				bl.sym.SetBaseType(base)
			}
		}
	}
}

func inheritsClasses(t *model.Symbol) bool {
	return t.TypeKind == model.TypeClass || t.TypeKind == model.TypeRecord
}

func (l *Linker) synthesizeConstructor(t *model.Symbol) {
	switch t.TypeKind {
	case model.TypeClass, model.TypeStruct, model.TypeRecord:
	default:
		return
	}
	if t.Static {
		return
	}
	for _, m := range t.Members() {
		if m.MethodKind == model.MethodConstructor {
			return
		}
	}
	key := l.keys[t] + "..ctor/0"
	ctor := model.NewSymbol(key, ".ctor", model.SymbolMethod)
	ctor.MethodKind = model.MethodConstructor
	ctor.Access = model.AccessPublic
	ctor.Implicit = true
	ctor.SetContainingType(t)
	l.byKey[key] = ctor
	l.keys[ctor] = key
}

// lookupType finds a type by simple, generic or qualified name. Candidates
// in the current or an enclosing namespace win over those brought in by
// using directives, which win over the rest.
func (l *Linker) lookupType(name string, sc scope) *model.Symbol {
	name = stripTypeArguments(name)
	if name == "" {
		return nil
	}

	if strings.Contains(name, ".") {
		if t := l.typeByKey(name); t != nil {
			return t
		}
		for ns := sc.ns; ns != ""; ns = parentNamespace(ns) {
			if t := l.typeByKey(ns + "." + name); t != nil {
				return t
			}
		}
		for _, u := range sc.usings {
			if t := l.typeByKey(u + "." + name); t != nil {
				return t
			}
		}
		name = name[strings.LastIndexByte(name, '.')+1:]
	}

	for t := sc.owner; t != nil; {
		if nested := l.typeByKey(l.keys[t] + "+" + name); nested != nil {
			return nested
		}
		outer, ok := t.ContainingType()
		if !ok {
			break
		}
		t = outer
	}

	candidates := l.byName[name]
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	var best *model.Symbol
	bestScore := -1
	for _, c := range candidates {
		score := 0
		switch {
		case c.Namespace == sc.ns:
			score = 1000
		case c.Namespace != "" && strings.HasPrefix(sc.ns, c.Namespace+"."):
			score = 500 + len(c.Namespace)
		case containsString(sc.usings, c.Namespace):
			score = 100
		case c.Namespace == "":
			score = 10
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

func (l *Linker) typeByKey(key string) *model.Symbol {
	if t, ok := l.byKey[key]; ok && t.Kind == model.SymbolType {
		return t
	}
	return nil
}

// typeOfMember resolves the declared type name of a field, property or
// method from the declaring file's point of view.
func (l *Linker) typeOfMember(m *model.Symbol) *model.Symbol {
	name := elementTypeName(m.TypeName)
	if name == "" {
		return nil
	}
	sc := scope{ns: m.Namespace}
	if owner, ok := m.ContainingType(); ok {
		sc.owner = owner
	}
	if len(m.Declarations) > 0 {
		if f, ok := l.files[m.Declarations[0].File]; ok {
			sc.usings = f.usings
		}
	}
	return l.lookupType(name, sc)
}

// extension finds an extension method callable on receiver with the given
// number of arguments, preferring one declared for the receiver's type.
func (l *Linker) extension(name string, args int, receiver *model.Symbol) *model.Symbol {
	var fallback *model.Symbol
	for _, m := range l.extensions[name] {
		if m.Arity != args+1 {
			continue
		}
		if receiver != nil && stripTypeArguments(l.receivers[m]) == receiver.Name {
			return m
		}
		if fallback == nil {
			fallback = m
		}
	}
	if receiver == nil {
		return nil
	}
	return fallback
}

func collectUsings(tree *syntax.Tree) []string {
	var out []string
	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		if tree.Kind(id) != syntax.KindUsing {
			return true
		}
		children := tree.ChildrenOfKind(id, syntax.KindIdentifier, syntax.KindQualifiedName, syntax.KindGenericName)
		if len(children) > 0 {
			if name := typeName(tree, children[len(children)-1]); name != "" {
				out = append(out, name)
			}
		}
		return false
	})
	return out
}

// typeName returns the name a type syntax node refers to, or "" for
// predefined and array types.
func typeName(tree *syntax.Tree, id syntax.NodeID) string {
	n := tree.Node(id)
	switch n.Kind {
	case syntax.KindIdentifier, syntax.KindGenericName:
		if n.Name == "var" || n.Name == "dynamic" {
			return ""
		}
		return n.Name
	case syntax.KindQualifiedName:
		return stripTypeArguments(n.Name)
	case syntax.KindNullableType:
		if inner, ok := tree.ChildByField(id, "type"); ok {
			return typeName(tree, inner)
		}
		if children := tree.Children(id); len(children) > 0 {
			return typeName(tree, children[0])
		}
	case syntax.KindOther:
		// primary constructor base types wrap the type and its arguments
		if children := tree.Children(id); len(children) > 0 {
			return typeName(tree, children[0])
		}
	}
	return ""
}

// elementTypeName reduces declared type text to the name of a type that can
// carry members: nullable markers and type arguments are dropped, arrays
// yield "".
func elementTypeName(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "]") {
		return ""
	}
	text = strings.TrimSuffix(text, "?")
	return stripTypeArguments(text)
}

func stripTypeArguments(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func parentNamespace(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		return ns[:i]
	}
	return ""
}

func joinName(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	}
	return prefix + "." + name
}

func containsSymbol(list []*model.Symbol, s *model.Symbol) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
