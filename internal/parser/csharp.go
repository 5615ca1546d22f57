// Package parser turns C# source files into arena syntax trees using
// tree-sitter.
package parser

import (
	"errors"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/standardbeagle/smellscan/internal/debug"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var (
	errNoParser = errors.New("tree-sitter C# parser unavailable")
	errNoTree   = errors.New("tree-sitter returned no tree")
)

// modifierHosts are the declarations that accept bare modifier keywords.
var modifierHosts = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"struct_declaration":          true,
	"record_declaration":          true,
	"record_struct_declaration":   true,
	"enum_declaration":            true,
	"method_declaration":          true,
	"constructor_declaration":     true,
	"destructor_declaration":      true,
	"property_declaration":        true,
	"accessor_declaration":        true,
	"field_declaration":           true,
	"event_field_declaration":     true,
	"event_declaration":           true,
	"local_function_statement":    true,
	"local_declaration_statement": true,
	"parameter":                   true,
}

// CSharpParser parses C# sources. It is safe for concurrent use; each call
// borrows a tree-sitter parser from a pool.
type CSharpParser struct {
	language *tree_sitter.Language
	pool     sync.Pool
}

// NewCSharpParser creates a parser for C#.
func NewCSharpParser() *CSharpParser {
	p := &CSharpParser{language: tree_sitter.NewLanguage(tree_sitter_csharp.Language())}
	p.pool.New = func() any {
		ts := tree_sitter.NewParser()
		if err := ts.SetLanguage(p.language); err != nil {
			debug.LogParse("failed to set C# language: %v\n", err)
			return nil
		}
		return ts
	}
	return p
}

// Parse builds the arena tree of one file. Syntax errors do not fail the
// parse; the tree then contains whatever tree-sitter recovered.
func (p *CSharpParser) Parse(fileID types.FileID, path string, content []byte) (*syntax.Tree, error) {
	ts, _ := p.pool.Get().(*tree_sitter.Parser)
	if ts == nil {
		return nil, smerrors.NewParseError(fileID, path, 0, 0, errNoParser)
	}
	defer p.pool.Put(ts)

	tsTree := ts.Parse(content, nil)
	if tsTree == nil {
		return nil, smerrors.NewParseError(fileID, path, 0, 0, errNoTree)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.HasError() {
		debug.LogParse("%s: syntax errors, keeping the recovered tree\n", path)
	}

	c := &converter{src: content, b: syntax.NewBuilder(path, content)}
	c.visit(syntax.NoNode, root, "", "")
	for _, tr := range c.trivia {
		c.b.AddTrivia(tr)
	}
	return c.b.Tree(), nil
}

type converter struct {
	src    []byte
	b      *syntax.Builder
	trivia []syntax.Trivia
}

func (c *converter) text(n *tree_sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func span(n *tree_sitter.Node) (syntax.Span, int, int) {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())},
		int(n.StartPosition().Row) + 1,
		int(n.EndPosition().Row) + 1
}

func (c *converter) visit(parent syntax.NodeID, n *tree_sitter.Node, field, parentKind string) {
	kind := n.Kind()
	switch {
	case kind == "comment":
		c.comment(n)
		return
	case kind == "modifier" || kind == "parameter_modifier":
		c.modifier(parent, n)
		return
	case !n.IsNamed():
		c.token(parent, n, field, parentKind)
		return
	}

	sp, start, end := span(n)
	node := syntax.Node{Kind: csharpKinds[kind], Span: sp, StartLine: start, EndLine: end, Field: field}
	if lit, ok := literalKinds[kind]; ok {
		node.Kind = syntax.KindLiteral
		node.Lit = lit
		node.Value = c.text(n)
	}
	c.describe(&node, n, kind)
	id := c.b.Add(parent, node)

	roles := fieldRoles(n, kind)
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		role := roles[child.Id()]
		if c.declaredName(id, child, kind, role) {
			continue
		}
		c.visit(id, child, role, kind)
	}
}

// describe fills the kind-specific attributes of node.
func (c *converter) describe(node *syntax.Node, n *tree_sitter.Node, kind string) {
	switch node.Kind {
	case syntax.KindIdentifier, syntax.KindPredefinedType, syntax.KindQualifiedName:
		node.Name = c.text(n)
	case syntax.KindGenericName:
		if n.NamedChildCount() > 0 {
			node.Name = c.text(n.NamedChild(0))
		}
	case syntax.KindBinary, syntax.KindAssignment:
		if op := n.ChildByFieldName("operator"); op != nil {
			node.Op = syntax.ParseOperator(c.text(op))
		}
	case syntax.KindPrefixUnary:
		if n.ChildCount() > 0 {
			node.Op = syntax.ParseOperator(c.text(n.Child(0)))
		}
	case syntax.KindMemberAccess:
		if name := n.ChildByFieldName("name"); name != nil {
			node.Name = c.text(name)
		}
	}
	if declaringKinds[kind] || kind == "accessor_declaration" {
		if name := n.ChildByFieldName("name"); name != nil {
			node.Name = c.text(name)
		}
	}
}

// declaredName records the identifier that a declaration introduces as a
// KindName leaf. It reports whether child was consumed.
func (c *converter) declaredName(parent syntax.NodeID, child *tree_sitter.Node, parentKind, role string) bool {
	declares := (role == "name" && declaringKinds[parentKind]) ||
		(role == "left" && parentKind == "foreach_statement")
	if !declares || !child.IsNamed() {
		return false
	}
	switch child.Kind() {
	case "identifier", "qualified_name":
	default:
		return false
	}
	sp, start, end := span(child)
	c.b.Add(parent, syntax.Node{
		Kind: syntax.KindName, Span: sp, StartLine: start, EndLine: end,
		Field: role, Name: c.text(child),
	})
	return true
}

func fieldRoles(n *tree_sitter.Node, kind string) map[uintptr]string {
	names := fieldsByKind[kind]
	if len(names) == 0 {
		return nil
	}
	roles := make(map[uintptr]string, len(names))
	for _, f := range names {
		child := n.ChildByFieldName(f)
		if child == nil {
			continue
		}
		if _, taken := roles[child.Id()]; !taken {
			roles[child.Id()] = f
		}
	}
	return roles
}

// token handles anonymous leaves: braces, bare modifier keywords and the
// this/base keywords.
func (c *converter) token(parent syntax.NodeID, n *tree_sitter.Node, field, parentKind string) {
	kind := n.Kind()
	sp, start, end := span(n)
	switch kind {
	case "{":
		c.b.AddToken(syntax.Token{Kind: syntax.TokenOpenBrace, Span: sp, StartLine: start, EndLine: end})
		return
	case "}":
		c.b.AddToken(syntax.Token{Kind: syntax.TokenCloseBrace, Span: sp, StartLine: start, EndLine: end})
		return
	}

	if mod, ok := syntax.ParseModifier(kind); ok && modifierHosts[parentKind] && parent.Valid() {
		c.b.Node(parent).Mods |= mod
		c.b.AddToken(syntax.Token{Kind: syntax.TokenModifier, Mod: mod, Span: sp, StartLine: start, EndLine: end})
		return
	}

	switch kind {
	case "this":
		c.b.Add(parent, syntax.Node{Kind: syntax.KindThis, Span: sp, StartLine: start, EndLine: end, Field: field, Name: kind})
	case "base":
		c.b.Add(parent, syntax.Node{Kind: syntax.KindBase, Span: sp, StartLine: start, EndLine: end, Field: field, Name: kind})
	}
}

func (c *converter) modifier(parent syntax.NodeID, n *tree_sitter.Node) {
	var mods syntax.Modifiers
	for _, word := range strings.Fields(c.text(n)) {
		if m, ok := syntax.ParseModifier(word); ok {
			mods |= m
		}
	}
	if mods == 0 {
		return
	}
	if parent.Valid() {
		c.b.Node(parent).Mods |= mods
	}
	sp, start, end := span(n)
	c.b.AddToken(syntax.Token{Kind: syntax.TokenModifier, Mod: mods, Span: sp, StartLine: start, EndLine: end})
}

// comment records comments as trivia. Consecutive "///" lines merge into a
// single documentation block.
func (c *converter) comment(n *tree_sitter.Node) {
	sp, start, end := span(n)
	text := c.text(n)

	kind := syntax.TriviaLineComment
	switch {
	case strings.HasPrefix(text, "///"):
		kind = syntax.TriviaDocComment
	case strings.HasPrefix(text, "/*"):
		kind = syntax.TriviaBlockComment
	}

	if kind == syntax.TriviaDocComment && len(c.trivia) > 0 {
		last := &c.trivia[len(c.trivia)-1]
		if last.Kind == syntax.TriviaDocComment && last.EndLine == start-1 &&
			strings.TrimSpace(string(c.src[last.Span.End:sp.Start])) == "" {
			last.Span.End = sp.End
			last.EndLine = end
			return
		}
	}
	c.trivia = append(c.trivia, syntax.Trivia{Kind: kind, Span: sp, StartLine: start, EndLine: end})
}
