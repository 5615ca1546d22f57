package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/syntax"
)

// lex records the braces and comments of src on b, the way the parser
// does for real sources. Consecutive "///" lines form one documentation block.
func lex(b *syntax.Builder, src string) {
	lineAt := func(off int) int { return 1 + strings.Count(src[:off], "\n") }
	lineEnd := func(off int) int {
		if i := strings.IndexByte(src[off:], '\n'); i >= 0 {
			return off + i
		}
		return len(src)
	}
	trivia := func(kind syntax.TriviaKind, start, end int) {
		b.AddTrivia(syntax.Trivia{Kind: kind, Span: syntax.Span{Start: start, End: end}, StartLine: lineAt(start), EndLine: lineAt(end)})
	}

	for i := 0; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], "///"):
			end := lineEnd(i)
			for end < len(src) {
				next := end + 1
				for next < len(src) && (src[next] == ' ' || src[next] == '\t') {
					next++
				}
				if !strings.HasPrefix(src[next:], "///") {
					break
				}
				end = lineEnd(next)
			}
			trivia(syntax.TriviaDocComment, i, end)
			i = end
		case strings.HasPrefix(src[i:], "//"):
			end := lineEnd(i)
			trivia(syntax.TriviaLineComment, i, end)
			i = end
		case strings.HasPrefix(src[i:], "/*"):
			end := i + strings.Index(src[i:], "*/") + 2
			trivia(syntax.TriviaBlockComment, i, end)
			i = end
		case src[i] == '{' || src[i] == '}':
			kind := syntax.TokenOpenBrace
			if src[i] == '}' {
				kind = syntax.TokenCloseBrace
			}
			b.AddToken(syntax.Token{Kind: kind, Span: syntax.Span{Start: i, End: i + 1}, StartLine: lineAt(i), EndLine: lineAt(i)})
			i++
		default:
			i++
		}
	}
}

func lexedTree(src string, extra func(b *syntax.Builder, root syntax.NodeID)) *syntax.Tree {
	b := syntax.NewBuilder("test.cs", []byte(src))
	root := b.Add(syntax.NoNode, syntax.Node{
		Kind:      syntax.KindCompilationUnit,
		Span:      syntax.Span{End: len(src)},
		StartLine: 1,
		EndLine:   1 + strings.Count(src, "\n"),
	})
	if extra != nil {
		extra(b, root)
	}
	lex(b, src)
	return b.Tree()
}

const simpleClass = "class A\n{\n    void M()\n    {\n        // note\n        x = 1;\n\n    }\n}\n"

func TestLinesOfCode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"braces blanks and comments", simpleClass, 3},
		{
			// The documentation block subtracts its marker count plus one.
			"block and documentation comments",
			"/* header\n   more\n*/\n/// <summary>\n/// Doc\n/// </summary>\nclass B\n{\n    int x; /* inline */\n    int y;\n    int z;\n}\n",
			3,
		},
		{"trailing comment keeps the line", "int a; // counted\nint b;\n", 2},
		{"single line block comment", "/* alone */\nint a;\n", 1},
		{"never negative", "/// a\n/// b\n", 0},
		{"empty source", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := lexedTree(tt.src, nil)
			assert.Equal(t, tt.want, LinesOfCode(tree, tree.Root()))
		})
	}
}

func TestLinesOfCodeForNode(t *testing.T) {
	var method syntax.NodeID
	tree := lexedTree(simpleClass, func(b *syntax.Builder, root syntax.NodeID) {
		method = b.Add(root, syntax.Node{Kind: syntax.KindMethod, StartLine: 3, EndLine: 8})
	})

	// "void M()" and "x = 1;"
	assert.Equal(t, 2, LinesOfCode(tree, method))
	assert.Equal(t, 0, LinesOfCode(tree, syntax.NoNode))
	assert.Equal(t, 0, LinesOfCode(nil, 0))
}

func buildMeasuredUnit(t *testing.T) *model.SourceUnit {
	t.Helper()
	b := syntax.NewBuilder("shop.cs", nil)
	root := b.Add(syntax.NoNode, syntax.Node{Kind: syntax.KindCompilationUnit})
	ns := b.Add(root, syntax.Node{Kind: syntax.KindNamespace, Name: "Shop.Core"})

	class := b.Add(ns, syntax.Node{Kind: syntax.KindClass, Name: "Order"})
	method := b.Add(class, syntax.Node{Kind: syntax.KindMethod, Name: "Place"})
	ifStmt := b.Add(method, syntax.Node{Kind: syntax.KindIf})
	b.Add(ifStmt, syntax.Node{Kind: syntax.KindBinary, Op: syntax.OpLogicalAnd})
	b.Add(ifStmt, syntax.Node{Kind: syntax.KindBinary, Op: syntax.OpAdd})
	b.Add(method, syntax.Node{Kind: syntax.KindConditional})
	sw := b.Add(method, syntax.Node{Kind: syntax.KindSwitch})
	b.Add(sw, syntax.Node{Kind: syntax.KindSwitchSection})
	b.Add(sw, syntax.Node{Kind: syntax.KindSwitchSection})
	b.Add(method, syntax.Node{Kind: syntax.KindDo})
	prop := b.Add(class, syntax.Node{Kind: syntax.KindProperty, Name: "Id"})
	accessors := b.Add(prop, syntax.Node{Kind: syntax.KindAccessorList})
	b.Add(accessors, syntax.Node{Kind: syntax.KindAccessor})

	b.Add(ns, syntax.Node{Kind: syntax.KindInterface, Name: "IOrder"})
	b.Add(ns, syntax.Node{Kind: syntax.KindEnum, Name: "State"})

	tree := b.Tree()
	return model.NewSourceUnit(1, tree.Path, tree, func() model.Oracle { return model.NewMapOracle() })
}

func TestMeasure(t *testing.T) {
	m := Measure(buildMeasuredUnit(t))

	assert.Equal(t, 3, m.Classes)
	assert.Equal(t, 2, m.Methods)
	// if, &&, ?:, two switch sections, plus one per method and accessor.
	assert.Equal(t, 7, m.Cyclomatic)
	assert.Equal(t, map[string]struct{}{"Core": {}}, m.Namespaces)
}

func TestMeasureUsesDeclaredNamespace(t *testing.T) {
	b := syntax.NewBuilder("global.cs", nil)
	root := b.Add(syntax.NoNode, syntax.Node{Kind: syntax.KindCompilationUnit})
	class := b.Add(root, syntax.Node{Kind: syntax.KindClass, Name: "Cart"})
	tree := b.Tree()

	sym := model.NewSymbol("Shop.Billing.Cart", "Cart", model.SymbolType)
	sym.Namespace = "Shop.Billing"
	oracle := model.NewMapOracle()
	oracle.Declare(class, sym)
	unit := model.NewSourceUnit(2, tree.Path, tree, func() model.Oracle { return oracle })

	m := Measure(unit)
	assert.Equal(t, map[string]struct{}{"Billing": {}}, m.Namespaces)
}

func TestMeasureFailedUnit(t *testing.T) {
	m := Measure(model.FailedUnit(3, "broken.cs", errors.New("boom")))
	assert.Zero(t, m.Classes)
	assert.Empty(t, m.Namespaces)
}

func TestCollectIsOrderIndependent(t *testing.T) {
	a := FileMetrics{Classes: 2, Methods: 3, Cyclomatic: 5, LinesOfCode: 40, Namespaces: map[string]struct{}{"Core": {}}}
	b := FileMetrics{Classes: 1, Methods: 1, Cyclomatic: 1, LinesOfCode: 10, Namespaces: map[string]struct{}{"Core": {}, "Data": {}}}

	ab := Collect("shop", a, b)
	ba := Collect("shop", b, a)
	assert.Equal(t, ab, ba)
	assert.Equal(t, 3, ab.NOC)
	assert.Equal(t, 4, ab.NOM)
	assert.Equal(t, 2, ab.NOP)
	assert.Equal(t, 6, ab.CYCLO)
	assert.Equal(t, 50, ab.LOC)

	ratios, ok := ab.Ratios()
	require.True(t, ok)
	assert.InDelta(t, 1.5, ratios.NOCPerNOP, 1e-9)
}

func TestCalculate(t *testing.T) {
	cb := &model.Codebase{
		Name:  "shop",
		Units: []*model.SourceUnit{buildMeasuredUnit(t), model.FailedUnit(9, "x.cs", errors.New("unreadable"))},
	}
	got := Calculate(cb)
	assert.Equal(t, "shop", got.Codebase)
	assert.Equal(t, 3, got.NOC)
	assert.Equal(t, 1, got.NOP)
	assert.True(t, got.IsEmpty(), "no source text means no lines of code")
}
