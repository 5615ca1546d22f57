package syntax

import "sort"

// Builder assembles a Tree node by node. The first node added becomes the root.
type Builder struct {
	tree *Tree
}

// NewBuilder starts a tree for the given file.
func NewBuilder(path string, source []byte) *Builder {
	return &Builder{tree: &Tree{Path: path, Source: source}}
}

// Add appends n under parent and returns its id. Pass NoNode as parent for the root.
func (b *Builder) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(b.tree.nodes))
	n.Parent = parent
	n.Children = nil
	b.tree.nodes = append(b.tree.nodes, n)
	if parent != NoNode {
		p := &b.tree.nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// Node gives mutable access to a node under construction.
func (b *Builder) Node(id NodeID) *Node {
	return &b.tree.nodes[id]
}

// AddToken records a leaf token.
func (b *Builder) AddToken(tok Token) {
	b.tree.Tokens = append(b.tree.Tokens, tok)
}

// AddTrivia records a comment.
func (b *Builder) AddTrivia(tr Trivia) {
	b.tree.Trivia = append(b.tree.Trivia, tr)
}

// Tree finishes construction. The builder must not be used afterwards.
func (b *Builder) Tree() *Tree {
	t := b.tree
	sort.SliceStable(t.Tokens, func(i, j int) bool { return t.Tokens[i].Span.Start < t.Tokens[j].Span.Start })
	sort.SliceStable(t.Trivia, func(i, j int) bool { return t.Trivia[i].Span.Start < t.Trivia[j].Span.Start })
	b.tree = nil
	return t
}
