package report

import (
	"encoding/json"
	"io"

	"github.com/standardbeagle/smellscan/internal/engine"
	"github.com/standardbeagle/smellscan/internal/types"
	"github.com/standardbeagle/smellscan/internal/version"
)

// Document is the JSON form of an analysis run.
type Document struct {
	Version   string           `json:"version"`
	BuildID   string           `json:"build_id"`
	Codebases []CodebaseReport `json:"codebases"`
}

// CodebaseReport is the JSON form of one codebase result.
type CodebaseReport struct {
	*engine.Result
	Ratios *types.Ratios `json:"ratios,omitempty"`
	Errors []string      `json:"errors,omitempty"`
}

// NewDocument converts results into their JSON form. Empty
// recommendations are dropped.
func NewDocument(results []*engine.Result) Document {
	doc := Document{
		Version:   version.Version,
		BuildID:   version.BuildID(),
		Codebases: make([]CodebaseReport, 0, len(results)),
	}
	for _, r := range results {
		doc.Codebases = append(doc.Codebases, newCodebaseReport(r))
	}
	return doc
}

func newCodebaseReport(r *engine.Result) CodebaseReport {
	trimmed := *r
	trimmed.Recommendations = make([]types.Recommendation, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		if !rec.IsEmpty() {
			trimmed.Recommendations = append(trimmed.Recommendations, rec)
		}
	}

	cr := CodebaseReport{Result: &trimmed}
	if ratios, ok := r.Metrics.Ratios(); ok {
		cr.Ratios = &ratios
	}
	for _, err := range r.Errors {
		cr.Errors = append(cr.Errors, err.Error())
	}
	return cr
}

// WriteJSON writes results as one indented JSON document.
func WriteJSON(w io.Writer, results []*engine.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(results))
}
