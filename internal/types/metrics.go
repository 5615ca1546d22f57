package types

import "sort"

// MetricCollection holds the size and complexity metrics of one codebase.
type MetricCollection struct {
	Codebase string `json:"codebase"`
	NOC      int    `json:"noc"`   // classes, interfaces, enums, structs, records
	NOM      int    `json:"nom"`   // methods, accessors, constructors
	NOP      int    `json:"nop"`   // distinct namespaces
	CYCLO    int    `json:"cyclo"` // cyclomatic complexity
	LOC      int    `json:"loc"`   // lines of code
}

// Ratios are the derived metrics of a MetricCollection.
type Ratios struct {
	NOCPerNOP   float64 `json:"noc_per_nop"`
	NOMPerNOC   float64 `json:"nom_per_noc"`
	LOCPerNOM   float64 `json:"loc_per_nom"`
	CYCLOPerLOC float64 `json:"cyclo_per_loc"`
}

// IsEmpty reports whether the collection carries no meaningful data.
func (m MetricCollection) IsEmpty() bool {
	return m.NOP == 0 || m.NOC == 0 || m.LOC == 0
}

// Ratios computes the derived metrics. The second result is false unless
// every denominator is non-zero.
func (m MetricCollection) Ratios() (Ratios, bool) {
	if m.NOP == 0 || m.NOC == 0 || m.NOM == 0 || m.LOC == 0 {
		return Ratios{}, false
	}
	return Ratios{
		NOCPerNOP:   float64(m.NOC) / float64(m.NOP),
		NOMPerNOC:   float64(m.NOM) / float64(m.NOC),
		LOCPerNOM:   float64(m.LOC) / float64(m.NOM),
		CYCLOPerLOC: float64(m.CYCLO) / float64(m.LOC),
	}, true
}

// ClassCouplingMetrics counts the calls made from inside one type declaration.
type ClassCouplingMetrics struct {
	File                     string         `json:"file"`
	Class                    string         `json:"class"`
	Namespace                string         `json:"namespace"`
	TotalCalls               int            `json:"total_calls"`
	InternalCalls            int            `json:"internal_calls"`
	ExternalCalls            int            `json:"external_calls"`
	ExternalCallsByNamespace map[string]int `json:"external_calls_by_namespace,omitempty"`
}

// AddExternal records an external call into namespace.
func (c *ClassCouplingMetrics) AddExternal(namespace string) {
	if c.ExternalCallsByNamespace == nil {
		c.ExternalCallsByNamespace = make(map[string]int)
	}
	c.ExternalCalls++
	c.TotalCalls++
	c.ExternalCallsByNamespace[namespace]++
}

// AddInternal records a call that stays inside the type.
func (c *ClassCouplingMetrics) AddInternal() {
	c.InternalCalls++
	c.TotalCalls++
}

// Namespaces returns the namespaces called into, sorted.
func (c ClassCouplingMetrics) Namespaces() []string {
	out := make([]string, 0, len(c.ExternalCallsByNamespace))
	for ns := range c.ExternalCallsByNamespace {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
