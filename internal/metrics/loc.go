package metrics

import (
	"strings"

	"github.com/standardbeagle/smellscan/internal/syntax"
)

const docCommentMarker = "///"

// LinesOfCode counts the code lines covered by node. Starting from the raw
// line count it subtracts, independently of each other:
//   - blank and comment-only lines,
//   - the interior lines of block comments,
//   - lines holding nothing but a brace (once per brace token),
//   - the "///" split count of every documentation block.
//
// The result never drops below zero.
func LinesOfCode(tree *syntax.Tree, node syntax.NodeID) int {
	if tree == nil || !node.Valid() || int(node) >= tree.Len() {
		return 0
	}
	first, last := lineRange(tree, node)
	if last < first {
		return 0
	}
	inRange := func(line int) bool { return line >= first && line <= last }

	total := last - first + 1
	loc := total -
		blankOrCommentLines(tree, first, last) -
		blockCommentInteriorLines(tree, inRange) -
		braceOnlyLines(tree, inRange) -
		docCommentMarkers(tree, inRange)
	if loc < 0 {
		return 0
	}
	return loc
}

func lineRange(tree *syntax.Tree, node syntax.NodeID) (int, int) {
	if node == tree.Root() {
		return 1, len(tree.Lines())
	}
	n := tree.Node(node)
	return n.StartLine, n.EndLine
}

func blankOrCommentLines(tree *syntax.Tree, first, last int) int {
	commentOnly := make(map[int]bool)
	for _, tr := range tree.Trivia {
		if tr.EndLine < first || tr.EndLine > last {
			continue
		}
		switch tr.Kind {
		case syntax.TriviaLineComment:
			if blankBefore(tree.Source, tr.Span.Start) {
				commentOnly[tr.EndLine] = true
			}
		case syntax.TriviaBlockComment:
			if !blankAfter(tree.Source, tr.Span.End) {
				continue
			}
			if tr.StartLine != tr.EndLine || blankBefore(tree.Source, tr.Span.Start) {
				commentOnly[tr.EndLine] = true
			}
		}
	}

	count := 0
	for line := first; line <= last; line++ {
		if commentOnly[line] || strings.TrimSpace(tree.Line(line)) == "" {
			count++
		}
	}
	return count
}

func blockCommentInteriorLines(tree *syntax.Tree, inRange func(int) bool) int {
	count := 0
	for _, tr := range tree.Trivia {
		if tr.Kind == syntax.TriviaBlockComment && inRange(tr.StartLine) && inRange(tr.EndLine) {
			count += tr.EndLine - tr.StartLine
		}
	}
	return count
}

func braceOnlyLines(tree *syntax.Tree, inRange func(int) bool) int {
	count := 0
	for _, tok := range tree.Tokens {
		if tok.Kind != syntax.TokenOpenBrace && tok.Kind != syntax.TokenCloseBrace {
			continue
		}
		if inRange(tok.StartLine) && len(strings.TrimSpace(tree.Line(tok.StartLine))) == 1 {
			count++
		}
	}
	return count
}

func docCommentMarkers(tree *syntax.Tree, inRange func(int) bool) int {
	count := 0
	for _, tr := range tree.Trivia {
		if tr.Kind == syntax.TriviaDocComment && inRange(tr.StartLine) {
			count += strings.Count(tree.SpanText(tr.Span), docCommentMarker) + 1
		}
	}
	return count
}

func blankBefore(src []byte, offset int) bool {
	for i := offset - 1; i >= 0 && i < len(src); i-- {
		switch src[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

func blankAfter(src []byte, offset int) bool {
	for i := offset; i >= 0 && i < len(src); i++ {
		switch src[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}
