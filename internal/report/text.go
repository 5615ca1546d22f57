package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/standardbeagle/smellscan/internal/engine"
	"github.com/standardbeagle/smellscan/internal/types"
)

// TextOptions controls the console summary.
type TextOptions struct {
	// MaxOccurrences caps the occurrences listed per rule kind; zero lists
	// them all.
	MaxOccurrences int
	// HideMetrics leaves out the metric and coupling lines.
	HideMetrics bool
}

// WriteText writes a console summary of results.
func WriteText(w io.Writer, results []*engine.Result, opts TextOptions) error {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		formatResult(&sb, r, opts)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatResult(sb *strings.Builder, r *engine.Result, opts TextOptions) {
	fmt.Fprintf(sb, "%s: %d occurrences in %d recommendations (%s)\n",
		r.Codebase, r.Occurrences(), countNonEmpty(r.Recommendations), r.Duration.Round(time.Millisecond))

	for _, kind := range sortedKinds(r.Recommendations) {
		var occurrences []types.Occurrence
		for _, rec := range r.ByKind(kind) {
			occurrences = append(occurrences, rec.Occurrences...)
		}
		fmt.Fprintf(sb, "\n  %s (%d)\n    %s\n", kind, len(occurrences), kind.Message())
		for j, o := range occurrences {
			if opts.MaxOccurrences > 0 && j == opts.MaxOccurrences {
				fmt.Fprintf(sb, "    ... %d more\n", len(occurrences)-j)
				break
			}
			fmt.Fprintf(sb, "    %s:%s  %s\n", o.File, o.Line, RemoveNewLines(o.CodeFragment))
		}
	}

	if !opts.HideMetrics {
		m := r.Metrics
		fmt.Fprintf(sb, "\n  Metrics: NOC %d  NOM %d  CYCLO %d  NOP %d  LOC %d\n", m.NOC, m.NOM, m.CYCLO, m.NOP, m.LOC)
		if ratios, ok := m.Ratios(); ok {
			fmt.Fprintf(sb, "  Ratios:  NOC/NOP %s  NOM/NOC %s  LOC/NOM %s  CYCLO/LOC %s\n",
				ratio(ratios.NOCPerNOP), ratio(ratios.NOMPerNOC), ratio(ratios.LOCPerNOM), ratio(ratios.CYCLOPerLOC))
		}
		for _, c := range r.Coupling {
			if c.ExternalCalls == 0 {
				continue
			}
			name := c.Class
			if c.Namespace != "" {
				name = c.Namespace + "." + c.Class
			}
			fmt.Fprintf(sb, "  Coupling: %s makes %d of %d calls into %s\n",
				name, c.ExternalCalls, c.TotalCalls, externalNamespaces(c))
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(sb, "\n  %d errors\n", len(r.Errors))
		for _, err := range r.Errors {
			fmt.Fprintf(sb, "    %v\n", err)
		}
	}
}

func countNonEmpty(recs []types.Recommendation) int {
	n := 0
	for _, rec := range recs {
		if !rec.IsEmpty() {
			n++
		}
	}
	return n
}
