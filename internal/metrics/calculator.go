// Package metrics computes the size and complexity figures of a codebase:
// number of classes, methods and namespaces, cyclomatic complexity and
// lines of code.
package metrics

import (
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var (
	classKinds = []syntax.Kind{
		syntax.KindClass, syntax.KindInterface, syntax.KindEnum, syntax.KindStruct, syntax.KindRecord,
	}
	methodKinds = []syntax.Kind{
		syntax.KindMethod, syntax.KindAccessor, syntax.KindConstructor,
	}
	branchKinds = []syntax.Kind{
		syntax.KindIf, syntax.KindWhile, syntax.KindFor, syntax.KindForEach,
		syntax.KindSwitchSection, syntax.KindContinue, syntax.KindGoto,
		syntax.KindCatch, syntax.KindConditional,
	}
)

// FileMetrics holds the raw counts of one source file. Values merge
// commutatively, so files can be measured in any order.
type FileMetrics struct {
	Classes     int
	Methods     int
	Cyclomatic  int
	LinesOfCode int
	Namespaces  map[string]struct{}
}

// Measure computes the metrics of a single unit. Failed units measure zero.
func Measure(unit *model.SourceUnit) FileMetrics {
	m := FileMetrics{Namespaces: make(map[string]struct{})}
	if unit == nil || !unit.Ok() {
		return m
	}
	tree := unit.Tree
	root := tree.Root()
	if root == syntax.NoNode {
		return m
	}
	oracle := unit.Oracle()

	tree.Walk(root, func(id syntax.NodeID) bool {
		n := tree.Node(id)
		switch {
		case hasKind(n.Kind, classKinds):
			m.Classes++
		case hasKind(n.Kind, methodKinds):
			m.Methods++
		case hasKind(n.Kind, branchKinds):
			m.Cyclomatic++
		case n.Kind == syntax.KindBinary && n.Op.IsLogical():
			m.Cyclomatic++
		}
		return true
	})
	m.Cyclomatic += m.Methods

	for decl := range navigator.DescendantsOfKind(tree, root, syntax.KindClass) {
		if sym, ok := oracle.DeclaredSymbolOf(decl); ok {
			m.Namespaces[sym.ContainingNamespace()] = struct{}{}
			continue
		}
		m.Namespaces[model.NamespaceName(navigator.EnclosingNamespace(tree, decl))] = struct{}{}
	}

	m.LinesOfCode = LinesOfCode(tree, root)
	return m
}

// Merge adds o into m.
func (m *FileMetrics) Merge(o FileMetrics) {
	m.Classes += o.Classes
	m.Methods += o.Methods
	m.Cyclomatic += o.Cyclomatic
	m.LinesOfCode += o.LinesOfCode
	if len(o.Namespaces) == 0 {
		return
	}
	if m.Namespaces == nil {
		m.Namespaces = make(map[string]struct{}, len(o.Namespaces))
	}
	for ns := range o.Namespaces {
		m.Namespaces[ns] = struct{}{}
	}
}

// Collect folds per-file metrics into the collection of a codebase.
func Collect(codebase string, files ...FileMetrics) types.MetricCollection {
	var total FileMetrics
	for _, f := range files {
		total.Merge(f)
	}
	return types.MetricCollection{
		Codebase: codebase,
		NOC:      total.Classes,
		NOM:      total.Methods,
		NOP:      len(total.Namespaces),
		CYCLO:    total.Cyclomatic,
		LOC:      total.LinesOfCode,
	}
}

// Calculate measures every healthy unit of cb.
func Calculate(cb *model.Codebase) types.MetricCollection {
	units := cb.Healthy()
	files := make([]FileMetrics, 0, len(units))
	for _, u := range units {
		files = append(files, Measure(u))
	}
	return Collect(cb.Name, files...)
}

func hasKind(k syntax.Kind, kinds []syntax.Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
