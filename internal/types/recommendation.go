package types

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxFragmentLength caps the evidence text stored in an Occurrence.
const MaxFragmentLength = 100

// Occurrence is one located piece of evidence for a recommendation.
type Occurrence struct {
	File         string `json:"file"`
	Line         string `json:"line"`
	CodeFragment string `json:"code_fragment"`
}

// NewOccurrence builds an occurrence for a single 1-based line.
func NewOccurrence(file string, line int, fragment string) Occurrence {
	return Occurrence{
		File:         file,
		Line:         strconv.Itoa(line),
		CodeFragment: TruncateFragment(fragment),
	}
}

// NewPairOccurrence builds an occurrence that records two locations as "L1 & L2".
func NewPairOccurrence(file string, first, second int, fragment string) Occurrence {
	return Occurrence{
		File:         file,
		Line:         strconv.Itoa(first) + " & " + strconv.Itoa(second),
		CodeFragment: TruncateFragment(fragment),
	}
}

// Lines returns the 1-based line numbers recorded in the occurrence.
func (o Occurrence) Lines() []int {
	var lines []int
	for _, part := range strings.Split(o.Line, "&") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			lines = append(lines, n)
		}
	}
	return lines
}

// TruncateFragment cuts s at the first line break and caps it at
// MaxFragmentLength characters.
func TruncateFragment(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, " \t")
	if utf8.RuneCountInString(s) <= MaxFragmentLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxFragmentLength])
}

// Recommendation groups the occurrences of one rule kind found in one scope.
type Recommendation struct {
	Kind        RuleKind     `json:"kind"`
	Message     string       `json:"message"`
	Occurrences []Occurrence `json:"occurrences"`
}

// NewRecommendation creates a recommendation carrying the catalog message for kind.
func NewRecommendation(kind RuleKind, occurrences ...Occurrence) Recommendation {
	return Recommendation{
		Kind:        kind,
		Message:     kind.Message(),
		Occurrences: occurrences,
	}
}

// Add appends an occurrence.
func (r *Recommendation) Add(o Occurrence) {
	r.Occurrences = append(r.Occurrences, o)
}

// IsEmpty reports whether the recommendation has no evidence.
func (r Recommendation) IsEmpty() bool {
	return len(r.Occurrences) == 0
}
