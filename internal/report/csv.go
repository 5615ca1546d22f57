// Package report writes analysis results as semicolon-separated CSV, JSON
// or a console summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/standardbeagle/smellscan/internal/types"
)

// Separator is the CSV field separator.
const Separator = ';'

var (
	recommendationsHeader = []string{"Recommendation", "Codefragment", "Line", "File"}
	metricsHeader         = []string{"Codebase", "NOC", "NOM", "CYCLO", "NOP", "LOC", "NOC/NOP", "NOM/NOC", "LOC/NOM", "CYCLO/LOC"}
	couplingHeader        = []string{"File", "Class", "Namespace", "TotalCalls", "InternalCalls", "ExternalCalls", "ExternalNamespaces"}
)

var newLineReplacer = strings.NewReplacer("\r\n", "", "\n\r", "", "\r", "", "\n", "", string(Separator), " ")

// RemoveNewLines strips line breaks from s and turns separators into
// spaces so a fragment always stays one CSV field.
func RemoveNewLines(s string) string {
	return newLineReplacer.Replace(s)
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	return cw
}

// WriteRecommendationsCSV writes one row per occurrence. Recommendations
// without occurrences are skipped.
func WriteRecommendationsCSV(w io.Writer, recs []types.Recommendation) error {
	cw := newWriter(w)
	if err := cw.Write(recommendationsHeader); err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.IsEmpty() {
			continue
		}
		for _, o := range rec.Occurrences {
			row := []string{rec.Kind.Message(), RemoveNewLines(o.CodeFragment), o.Line, o.File}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSV writes one row per metric collection. Collections with
// no classes, namespaces or lines are skipped; ratio columns stay blank
// when a denominator is zero.
func WriteMetricsCSV(w io.Writer, collections ...types.MetricCollection) error {
	cw := newWriter(w)
	if err := cw.Write(metricsHeader); err != nil {
		return err
	}
	for _, m := range collections {
		if m.IsEmpty() {
			continue
		}
		row := []string{
			RemoveNewLines(m.Codebase),
			strconv.Itoa(m.NOC),
			strconv.Itoa(m.NOM),
			strconv.Itoa(m.CYCLO),
			strconv.Itoa(m.NOP),
			strconv.Itoa(m.LOC),
		}
		if r, ok := m.Ratios(); ok {
			row = append(row, ratio(r.NOCPerNOP), ratio(r.NOMPerNOC), ratio(r.LOCPerNOM), ratio(r.CYCLOPerLOC))
		} else {
			row = append(row, "", "", "", "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCouplingCSV writes one row per type declaration. External calls
// are listed as "namespace:count" pairs in namespace order.
func WriteCouplingCSV(w io.Writer, coupling []types.ClassCouplingMetrics) error {
	cw := newWriter(w)
	if err := cw.Write(couplingHeader); err != nil {
		return err
	}
	for _, c := range coupling {
		row := []string{
			c.File,
			c.Class,
			c.Namespace,
			strconv.Itoa(c.TotalCalls),
			strconv.Itoa(c.InternalCalls),
			strconv.Itoa(c.ExternalCalls),
			externalNamespaces(c),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func externalNamespaces(c types.ClassCouplingMetrics) string {
	parts := make([]string, 0, len(c.ExternalCallsByNamespace))
	for _, ns := range c.Namespaces() {
		parts = append(parts, fmt.Sprintf("%s:%d", ns, c.ExternalCallsByNamespace[ns]))
	}
	return strings.Join(parts, ",")
}

func ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// sortedKinds returns the kinds present in recs in catalog order.
func sortedKinds(recs []types.Recommendation) []types.RuleKind {
	seen := make(map[types.RuleKind]bool)
	var kinds []types.RuleKind
	for _, rec := range recs {
		if !rec.IsEmpty() && !seen[rec.Kind] {
			seen[rec.Kind] = true
			kinds = append(kinds, rec.Kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
