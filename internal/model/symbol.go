package model

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// SymbolKind is the closed set of symbol categories.
type SymbolKind uint8

const (
	SymbolMethod SymbolKind = iota
	SymbolProperty
	SymbolField
	SymbolParameter
	SymbolLocal
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolMethod:
		return "method"
	case SymbolProperty:
		return "property"
	case SymbolField:
		return "field"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	case SymbolType:
		return "type"
	}
	return "unknown"
}

// MethodKind refines SymbolMethod.
type MethodKind uint8

const (
	MethodNone MethodKind = iota
	MethodOrdinary
	MethodConstructor
	MethodStaticConstructor
	MethodDestructor
	MethodPropertyGet
	MethodPropertySet
	MethodLocalFunction
)

// IsOrdinary reports methods that are neither constructors, destructors
// nor accessors.
func (k MethodKind) IsOrdinary() bool {
	return k == MethodOrdinary
}

// TypeKind refines SymbolType.
type TypeKind uint8

const (
	TypeNone TypeKind = iota
	TypeClass
	TypeInterface
	TypeStruct
	TypeRecord
	TypeEnum
)

// Accessibility is the declared visibility of a symbol.
type Accessibility uint8

const (
	AccessPrivate Accessibility = iota
	AccessPublic
	AccessProtected
	AccessInternal
	AccessProtectedInternal
)

// AccessibilityOf derives visibility from declaration modifiers.
// Members without an access modifier are private.
func AccessibilityOf(mods syntax.Modifiers) Accessibility {
	switch {
	case mods.Has(syntax.ModPublic):
		return AccessPublic
	case mods.Has(syntax.ModProtected | syntax.ModInternal):
		return AccessProtectedInternal
	case mods.Has(syntax.ModProtected):
		return AccessProtected
	case mods.Has(syntax.ModInternal):
		return AccessInternal
	}
	return AccessPrivate
}

// Declaration locates one declaring node of a symbol.
type Declaration struct {
	File types.FileID
	Path string
	Node syntax.NodeID
}

// Symbol is a declared entity of the program. Symbols are compared by
// pointer identity; ID is a stable fingerprint of the declaration key.
type Symbol struct {
	ID         types.SymbolID
	Name       string
	Kind       SymbolKind
	MethodKind MethodKind
	TypeKind   TypeKind
	Access     Accessibility
	Static     bool
	Extension  bool
	Const      bool
	ReadOnly   bool
	Implicit   bool
	HasGetter  bool
	HasSetter  bool
	Arity      int
	TypeName   string
	Namespace  string

	Declarations []Declaration

	containing *Symbol
	base       *Symbol
	interfaces []*Symbol
	members    []*Symbol
}

// NewSymbol creates a symbol whose ID is derived from key.
func NewSymbol(key, name string, kind SymbolKind) *Symbol {
	return &Symbol{
		ID:   types.SymbolID(xxhash.Sum64String(key)),
		Name: name,
		Kind: kind,
	}
}

// Same reports symbol identity. Nil symbols are never the same.
func (s *Symbol) Same(o *Symbol) bool {
	return s != nil && o != nil && s == o
}

// ContainingType returns the type declaring s.
func (s *Symbol) ContainingType() (*Symbol, bool) {
	if s == nil || s.containing == nil {
		return nil, false
	}
	return s.containing, true
}

// SetContainingType records the declaring type and registers s as one of its members.
func (s *Symbol) SetContainingType(t *Symbol) {
	s.containing = t
	if s.Namespace == "" {
		s.Namespace = t.Namespace
	}
	switch s.Kind {
	case SymbolParameter, SymbolLocal:
		return
	}
	t.members = append(t.members, s)
}

// BaseType returns the base class of a type symbol.
func (s *Symbol) BaseType() (*Symbol, bool) {
	if s == nil || s.base == nil {
		return nil, false
	}
	return s.base, true
}

// SetBaseType records the base class.
func (s *Symbol) SetBaseType(b *Symbol) { s.base = b }

// Interfaces returns the implemented interfaces of a type symbol.
func (s *Symbol) Interfaces() []*Symbol { return s.interfaces }

// AddInterface records an implemented interface.
func (s *Symbol) AddInterface(i *Symbol) { s.interfaces = append(s.interfaces, i) }

// Members returns the directly declared members of a type symbol.
func (s *Symbol) Members() []*Symbol {
	if s == nil {
		return nil
	}
	return s.members
}

// AllMembers returns the members of s followed by those of each base type.
func (s *Symbol) AllMembers() []*Symbol {
	var out []*Symbol
	seen := make(map[*Symbol]bool)
	for t := s; t != nil && !seen[t]; t = t.base {
		seen[t] = true
		out = append(out, t.members...)
	}
	return out
}

// LookupMember finds a member by name in s and its base chain.
func (s *Symbol) LookupMember(name string) (*Symbol, bool) {
	for _, m := range s.AllMembers() {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// IsStatic reports static members and static types.
func (s *Symbol) IsStatic() bool { return s != nil && s.Static }

// IsExtension reports extension methods.
func (s *Symbol) IsExtension() bool { return s != nil && s.Extension }

// ContainingNamespace returns the innermost namespace name of s ("" for the
// global namespace).
func (s *Symbol) ContainingNamespace() string {
	if s == nil {
		return ""
	}
	return NamespaceName(s.Namespace)
}

// QualifiedName returns the namespace-qualified name of s.
func (s *Symbol) QualifiedName() string {
	if s == nil {
		return ""
	}
	var parts []string
	for t := s; t != nil; t = t.containing {
		parts = append(parts, t.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	name := strings.Join(parts, ".")
	if s.Namespace != "" {
		return s.Namespace + "." + name
	}
	return name
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Kind.String() + " " + s.QualifiedName()
}

// NamespaceName returns the last segment of a dotted namespace.
func NamespaceName(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
