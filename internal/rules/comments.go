package rules

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/navigator"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

var codeInComment = regexp.MustCompile(`^\s*//.*;\s*$`)

// minHeadlineBlock is the number of lines a headline comment must introduce.
const minHeadlineBlock = 3

func findCodeInComments(unit *model.SourceUnit) []types.Occurrence {
	var out []types.Occurrence
	for _, tr := range unit.Tree.Trivia {
		if tr.Kind == syntax.TriviaLineComment && codeInComment.MatchString(unit.Tree.SpanText(tr.Span)) {
			out = append(out, navigator.TriviaOccurrence(unit, tr))
		}
	}
	return out
}

// headlineComments reports line comments that introduce a block of code
// which is in turn followed by another comment. Up to blockSize following
// lines are collected, stopping after the first blank one.
func headlineComments(blockSize int) func(*model.SourceUnit) []types.Occurrence {
	return func(unit *model.SourceUnit) []types.Occurrence {
		tree := unit.Tree
		lastLine := len(tree.Lines())

		var out []types.Occurrence
		for _, tr := range tree.Trivia {
			if tr.Kind != syntax.TriviaLineComment {
				continue
			}
			collected, next := 0, tr.StartLine+1
			for i := 1; i <= blockSize && tr.StartLine+i <= lastLine; i++ {
				collected++
				next = tr.StartLine + i + 1
				if strings.TrimSpace(tree.Line(tr.StartLine+i)) == "" {
					break
				}
			}
			if collected >= minHeadlineBlock && next <= lastLine && isCommentLine(tree.Line(next)) {
				out = append(out, navigator.TriviaOccurrence(unit, tr))
			}
		}
		return out
	}
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "//")
}

// findPrivateDocumentation reports documentation blocks attached directly
// to a private modifier.
func findPrivateDocumentation(unit *model.SourceUnit) []types.Occurrence {
	tree := unit.Tree
	var out []types.Occurrence
	for _, tr := range tree.Trivia {
		if tr.Kind != syntax.TriviaDocComment {
			continue
		}
		tok, ok := tree.TokenAfter(tr.Span.End)
		if !ok || tok.Kind != syntax.TokenModifier || tok.Mod != syntax.ModPrivate {
			continue
		}
		between := tree.SpanText(syntax.Span{Start: tr.Span.End, End: tok.Span.Start})
		if strings.TrimSpace(between) == "" {
			out = append(out, navigator.TriviaOccurrence(unit, tr))
		}
	}
	return out
}
