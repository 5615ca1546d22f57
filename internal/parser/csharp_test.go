package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smellscan/internal/syntax"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, err := NewCSharpParser().Parse(1, "test.cs", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree
}

func nodesOfKind(tree *syntax.Tree, kind syntax.Kind) []syntax.NodeID {
	var out []syntax.NodeID
	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		if tree.Kind(id) == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

func firstNamed(t *testing.T, tree *syntax.Tree, kind syntax.Kind, name string) syntax.NodeID {
	t.Helper()
	for _, id := range nodesOfKind(tree, kind) {
		if tree.Node(id).Name == name {
			return id
		}
	}
	require.Failf(t, "node not found", "%s %q", kind, name)
	return syntax.NoNode
}

const calculatorSource = `using System;

namespace MyApp.Core
{
    /// <summary>
    /// Adds numbers.
    /// </summary>
    public class Calculator : Base, IDisposable
    {
        private readonly int seed;
        public int Result { get; set; }

        public Calculator(int seed)
        {
            this.seed = seed;
        }

        /* block
           comment */
        public int Add(int a, int b)
        {
            // running total
            var sum = a + b;
            return sum;
        }
    }
}
`

func TestParseDeclarations(t *testing.T) {
	tree := parse(t, calculatorSource)
	assert.Equal(t, syntax.KindCompilationUnit, tree.Kind(tree.Root()))

	ns := firstNamed(t, tree, syntax.KindNamespace, "MyApp.Core")
	class := firstNamed(t, tree, syntax.KindClass, "Calculator")
	assert.True(t, tree.IsAncestor(ns, class))
	assert.True(t, tree.Node(class).Mods.Has(syntax.ModPublic))

	body, ok := tree.ChildByField(class, "body")
	require.True(t, ok)
	assert.Equal(t, syntax.KindDeclarationList, tree.Kind(body))

	bases, ok := tree.FirstChildOfKind(class, syntax.KindBaseList)
	require.True(t, ok)
	assert.Len(t, tree.Children(bases), 2)

	field := nodesOfKind(tree, syntax.KindField)
	require.Len(t, field, 1)
	assert.True(t, tree.Node(field[0]).Mods.Has(syntax.ModPrivate|syntax.ModReadOnly))

	prop := firstNamed(t, tree, syntax.KindProperty, "Result")
	assert.True(t, tree.Node(prop).Mods.Has(syntax.ModPublic))
	assert.Len(t, nodesOfKind(tree, syntax.KindAccessor), 2)

	ctor := firstNamed(t, tree, syntax.KindConstructor, "Calculator")
	params, ok := tree.ChildByField(ctor, "parameters")
	require.True(t, ok)
	assert.Len(t, tree.ChildrenOfKind(params, syntax.KindParameter), 1)

	add := firstNamed(t, tree, syntax.KindMethod, "Add")
	params, ok = tree.ChildByField(add, "parameters")
	require.True(t, ok)
	ps := tree.ChildrenOfKind(params, syntax.KindParameter)
	require.Len(t, ps, 2)
	assert.Equal(t, "a", tree.Node(ps[0]).Name)
	typ, ok := tree.ChildByField(ps[0], "type")
	require.True(t, ok)
	assert.Equal(t, syntax.KindPredefinedType, tree.Kind(typ))
	assert.Equal(t, "int", tree.Node(typ).Name)

	name, ok := tree.FirstChildOfKind(add, syntax.KindName)
	require.True(t, ok)
	assert.Equal(t, "Add", tree.Node(name).Name)
	assert.Equal(t, 20, tree.Node(add).StartLine)
}

func TestParseExpressions(t *testing.T) {
	tree := parse(t, calculatorSource)

	bins := nodesOfKind(tree, syntax.KindBinary)
	require.Len(t, bins, 1)
	assert.Equal(t, syntax.OpAdd, tree.Node(bins[0]).Op)
	left, ok := tree.ChildByField(bins[0], "left")
	require.True(t, ok)
	assert.Equal(t, "a", tree.Node(left).Name)
	right, ok := tree.ChildByField(bins[0], "right")
	require.True(t, ok)
	assert.Equal(t, "b", tree.Node(right).Name)

	decl := nodesOfKind(tree, syntax.KindVariableDeclarator)
	require.Len(t, decl, 2)
	sum := firstNamed(t, tree, syntax.KindVariableDeclarator, "sum")
	assert.True(t, tree.IsAncestor(sum, bins[0]))

	vars := nodesOfKind(tree, syntax.KindVariableDeclaration)
	var sawVar bool
	for _, v := range vars {
		if typ, ok := tree.ChildByField(v, "type"); ok && tree.Node(typ).Name == "var" {
			sawVar = true
		}
	}
	assert.True(t, sawVar, "implicit types are identifiers named var")

	assert.Len(t, nodesOfKind(tree, syntax.KindReturn), 1)
	assert.NotEmpty(t, nodesOfKind(tree, syntax.KindThis))
}

func TestParseTokensAndTrivia(t *testing.T) {
	tree := parse(t, calculatorSource)

	var open, close, mods int
	for _, tok := range tree.Tokens {
		switch tok.Kind {
		case syntax.TokenOpenBrace:
			open++
		case syntax.TokenCloseBrace:
			close++
		case syntax.TokenModifier:
			mods++
		}
	}
	// namespace, class, accessor list, constructor, method
	assert.Equal(t, 5, open)
	assert.Equal(t, 5, close)
	// public class, private readonly, public property, public ctor, public method
	assert.Equal(t, 6, mods)

	require.Len(t, tree.Trivia, 3)
	doc := tree.Trivia[0]
	assert.Equal(t, syntax.TriviaDocComment, doc.Kind)
	assert.Equal(t, 5, doc.StartLine)
	assert.Equal(t, 7, doc.EndLine)

	block := tree.Trivia[1]
	assert.Equal(t, syntax.TriviaBlockComment, block.Kind)
	assert.Equal(t, 18, block.StartLine)
	assert.Equal(t, 19, block.EndLine)

	line := tree.Trivia[2]
	assert.Equal(t, syntax.TriviaLineComment, line.Kind)
	assert.Equal(t, "// running total", tree.SpanText(line.Span))

	tok, ok := tree.TokenAfter(doc.Span.End)
	require.True(t, ok)
	assert.Equal(t, syntax.TokenModifier, tok.Kind)
	assert.Equal(t, syntax.ModPublic, tok.Mod)
}

func TestParseInvocationsAndLiterals(t *testing.T) {
	tree := parse(t, `class C
{
    object M(Service s)
    {
        s.Send(null, 42);
        var d = new Dispatcher();
        if (s.Ready && d != null) { return -1; }
        return null;
    }
}
`)

	inv := nodesOfKind(tree, syntax.KindInvocation)
	require.Len(t, inv, 1)
	fn, ok := tree.ChildByField(inv[0], "function")
	require.True(t, ok)
	assert.Equal(t, syntax.KindMemberAccess, tree.Kind(fn))
	assert.Equal(t, "Send", tree.Node(fn).Name)

	args, ok := tree.FirstChildOfKind(inv[0], syntax.KindArgumentList)
	require.True(t, ok)
	argNodes := tree.ChildrenOfKind(args, syntax.KindArgument)
	require.Len(t, argNodes, 2)
	lit, ok := tree.FirstChildOfKind(argNodes[0], syntax.KindLiteral)
	require.True(t, ok)
	assert.Equal(t, syntax.LitNull, tree.Node(lit).Lit)
	lit, ok = tree.FirstChildOfKind(argNodes[1], syntax.KindLiteral)
	require.True(t, ok)
	assert.Equal(t, syntax.LitNumeric, tree.Node(lit).Lit)
	assert.Equal(t, "42", tree.Node(lit).Value)

	creation := nodesOfKind(tree, syntax.KindObjectCreation)
	require.Len(t, creation, 1)
	typ, ok := tree.ChildByField(creation[0], "type")
	require.True(t, ok)
	assert.Equal(t, "Dispatcher", tree.Node(typ).Name)

	var logical int
	for _, b := range nodesOfKind(tree, syntax.KindBinary) {
		if tree.Node(b).Op == syntax.OpLogicalAnd {
			logical++
		}
	}
	assert.Equal(t, 1, logical)

	neg := nodesOfKind(tree, syntax.KindPrefixUnary)
	require.Len(t, neg, 1)
	assert.Equal(t, syntax.OpSub, tree.Node(neg[0]).Op)
	assert.Len(t, nodesOfKind(tree, syntax.KindIf), 1)
	assert.Len(t, nodesOfKind(tree, syntax.KindReturn), 2)
}

func TestParseFileScopedNamespaceAndExtension(t *testing.T) {
	tree := parse(t, `namespace Shop.Extensions;

public static class StringExtensions
{
    public static bool IsBlank(this string value) => value.Length == 0;
}
`)

	ns := nodesOfKind(tree, syntax.KindFileScopedNamespace)
	require.Len(t, ns, 1)
	assert.Equal(t, "Shop.Extensions", tree.Node(ns[0]).Name)

	class := firstNamed(t, tree, syntax.KindClass, "StringExtensions")
	assert.True(t, tree.Node(class).Mods.Has(syntax.ModPublic|syntax.ModStatic))

	params := nodesOfKind(tree, syntax.KindParameter)
	require.Len(t, params, 1)
	assert.True(t, tree.Node(params[0]).Mods.Has(syntax.ModThis))
}

func TestParseConcurrent(t *testing.T) {
	p := NewCSharpParser()
	done := make(chan *syntax.Tree, 8)
	for i := 0; i < 8; i++ {
		go func() {
			tree, err := p.Parse(1, "c.cs", []byte(calculatorSource))
			if err != nil {
				done <- nil
				return
			}
			done <- tree
		}()
	}
	for i := 0; i < 8; i++ {
		tree := <-done
		require.NotNil(t, tree)
		assert.Len(t, nodesOfKind(tree, syntax.KindMethod), 1)
	}
}
