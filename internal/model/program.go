package model

import (
	"sync"

	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// Oracle answers semantic questions about the nodes of one source unit.
// Absence means the information is not available; it never panics.
type Oracle interface {
	// SymbolOf resolves the symbol an expression or name refers to.
	SymbolOf(id syntax.NodeID) (*Symbol, bool)
	// DeclaredSymbolOf returns the symbol a declaration node introduces.
	DeclaredSymbolOf(id syntax.NodeID) (*Symbol, bool)
}

// MapOracle is an Oracle backed by explicit node-to-symbol tables.
type MapOracle struct {
	mu       sync.RWMutex
	refs     map[syntax.NodeID]*Symbol
	declared map[syntax.NodeID]*Symbol
}

// NewMapOracle returns an empty MapOracle.
func NewMapOracle() *MapOracle {
	return &MapOracle{
		refs:     make(map[syntax.NodeID]*Symbol),
		declared: make(map[syntax.NodeID]*Symbol),
	}
}

// Bind records the symbol that id refers to.
func (o *MapOracle) Bind(id syntax.NodeID, sym *Symbol) {
	o.mu.Lock()
	o.refs[id] = sym
	o.mu.Unlock()
}

// Declare records the symbol that declaration id introduces.
func (o *MapOracle) Declare(id syntax.NodeID, sym *Symbol) {
	o.mu.Lock()
	o.declared[id] = sym
	o.mu.Unlock()
}

func (o *MapOracle) SymbolOf(id syntax.NodeID) (*Symbol, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.refs[id]
	return s, ok && s != nil
}

func (o *MapOracle) DeclaredSymbolOf(id syntax.NodeID) (*Symbol, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.declared[id]
	return s, ok && s != nil
}

type emptyOracle struct{}

func (emptyOracle) SymbolOf(syntax.NodeID) (*Symbol, bool)         { return nil, false }
func (emptyOracle) DeclaredSymbolOf(syntax.NodeID) (*Symbol, bool) { return nil, false }

// SourceUnit is one parsed file together with its lazily built oracle.
type SourceUnit struct {
	ID   types.FileID
	Path string
	Tree *syntax.Tree
	// Err is set when the file could not be loaded; Tree is nil then.
	Err error

	newOracle  func() Oracle
	oracleOnce sync.Once
	oracle     Oracle
}

// NewSourceUnit wraps a parsed tree. newOracle is invoked at most once, on
// first use.
func NewSourceUnit(id types.FileID, path string, tree *syntax.Tree, newOracle func() Oracle) *SourceUnit {
	return &SourceUnit{ID: id, Path: path, Tree: tree, newOracle: newOracle}
}

// FailedUnit records a file that could not be loaded.
func FailedUnit(id types.FileID, path string, err error) *SourceUnit {
	return &SourceUnit{ID: id, Path: path, Err: err}
}

// Oracle returns the memoized oracle of the unit. It is never nil.
func (u *SourceUnit) Oracle() Oracle {
	u.oracleOnce.Do(func() {
		if u.newOracle != nil {
			u.oracle = u.newOracle()
		}
		if u.oracle == nil {
			u.oracle = emptyOracle{}
		}
	})
	return u.oracle
}

// Ok reports whether the unit has a usable tree.
func (u *SourceUnit) Ok() bool {
	return u.Err == nil && u.Tree != nil && u.Tree.Root() != syntax.NoNode
}

// Codebase is the set of source units analyzed together.
type Codebase struct {
	Name  string
	Root  string
	Units []*SourceUnit
}

// Healthy returns the units that loaded successfully, in order.
func (c *Codebase) Healthy() []*SourceUnit {
	out := make([]*SourceUnit, 0, len(c.Units))
	for _, u := range c.Units {
		if u.Ok() {
			out = append(out, u)
		}
	}
	return out
}

// Failures returns the load errors of the codebase's units.
func (c *Codebase) Failures() []error {
	var errs []error
	for _, u := range c.Units {
		if u.Err != nil {
			errs = append(errs, u.Err)
		}
	}
	return errs
}

// Unit returns the unit with the given id.
func (c *Codebase) Unit(id types.FileID) (*SourceUnit, bool) {
	for _, u := range c.Units {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}
