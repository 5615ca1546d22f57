package syntax

import (
	"sort"
	"strings"
	"sync"
)

// Tree is an arena-allocated syntax tree for one source file.
// Node 0 is the root. A Tree is immutable once built and safe for
// concurrent readers.
type Tree struct {
	Path   string
	Source []byte
	Tokens []Token
	Trivia []Trivia

	nodes []Node

	linesOnce sync.Once
	lines     []string
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node stored at id. Callers must not modify it.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Kind returns the kind of id, or KindOther when id is invalid.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return KindOther
	}
	return t.nodes[id].Kind
}

// Parent returns the parent of id, NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Children returns the children of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].Children
}

// Text returns the source text covered by id.
func (t *Tree) Text(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	sp := t.nodes[id].Span
	if sp.Start < 0 || sp.End > len(t.Source) || sp.Start > sp.End {
		return ""
	}
	return string(t.Source[sp.Start:sp.End])
}

// SpanText returns the source text covered by sp.
func (t *Tree) SpanText(sp Span) string {
	if sp.Start < 0 || sp.End > len(t.Source) || sp.Start > sp.End {
		return ""
	}
	return string(t.Source[sp.Start:sp.End])
}

// Lines returns the source split into lines without line terminators.
// A trailing newline produces a final empty line.
func (t *Tree) Lines() []string {
	t.linesOnce.Do(func() {
		src := strings.ReplaceAll(string(t.Source), "\r\n", "\n")
		t.lines = strings.Split(src, "\n")
	})
	return t.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (t *Tree) Line(n int) string {
	lines := t.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// ChildByField returns the first child of id whose field role is field.
func (t *Tree) ChildByField(id NodeID, field string) (NodeID, bool) {
	for _, c := range t.Children(id) {
		if t.nodes[c].Field == field {
			return c, true
		}
	}
	return NoNode, false
}

// FirstChildOfKind returns the first direct child of id matching any of kinds.
func (t *Tree) FirstChildOfKind(id NodeID, kinds ...Kind) (NodeID, bool) {
	for _, c := range t.Children(id) {
		if matchKind(t.nodes[c].Kind, kinds) {
			return c, true
		}
	}
	return NoNode, false
}

// ChildrenOfKind returns the direct children of id matching any of kinds.
func (t *Tree) ChildrenOfKind(id NodeID, kinds ...Kind) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if matchKind(t.nodes[c].Kind, kinds) {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if !t.valid(id) {
		return
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		children := t.nodes[n].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// IsAncestor reports whether ancestor is a strict ancestor of id.
func (t *Tree) IsAncestor(ancestor, id NodeID) bool {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// TokenAfter returns the first token starting at or after offset.
func (t *Tree) TokenAfter(offset int) (Token, bool) {
	i := sort.Search(len(t.Tokens), func(i int) bool {
		return t.Tokens[i].Span.Start >= offset
	})
	if i == len(t.Tokens) {
		return Token{}, false
	}
	return t.Tokens[i], true
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func matchKind(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
