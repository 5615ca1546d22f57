package mcp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Response formats.
const (
	formatJSON = "json"
	formatText = "text"
)

// UnknownField is a request field the tool does not recognize. It is
// reported back as a warning instead of failing the call.
type UnknownField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// AnalyzeParams are the arguments of analyze_codebase and
// codebase_metrics.
type AnalyzeParams struct {
	Root           string   `json:"root,omitempty"`
	Rules          []string `json:"rules,omitempty"`
	Disable        []string `json:"disable,omitempty"`
	Include        []string `json:"include,omitempty"`
	Exclude        []string `json:"exclude,omitempty"`
	Format         string   `json:"format,omitempty"`
	MaxOccurrences int      `json:"max_occurrences,omitempty"`

	Warnings []UnknownField `json:"-"`
}

var analyzeFields = map[string]struct{}{
	"root": {}, "rules": {}, "disable": {}, "include": {}, "exclude": {},
	"format": {}, "max_occurrences": {},
	// aliases
	"path": {}, "only": {},
}

// UnmarshalJSON accepts unknown fields as warnings and maps "path" to
// root and "only" to rules.
func (p *AnalyzeParams) UnmarshalJSON(data []byte) error {
	type Alias AnalyzeParams

	if len(data) == 0 || string(data) == "null" {
		*p = AnalyzeParams{}
		return nil
	}
	raw, warnings, err := collectUnknownFields(data, analyzeFields)
	if err != nil {
		return err
	}

	normalized := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		if _, known := analyzeFields[key]; !known {
			continue
		}
		switch key {
		case "path":
			if _, ok := raw["root"]; !ok {
				normalized["root"] = value
			}
		case "only":
			if _, ok := raw["rules"]; !ok {
				normalized["rules"] = value
			}
		default:
			normalized[key] = value
		}
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	var alias Alias
	if err := json.Unmarshal(encoded, &alias); err != nil {
		return err
	}
	*p = AnalyzeParams(alias)
	p.Warnings = warnings
	return nil
}

// normalizedFormat returns the requested format, defaulting to JSON.
func (p AnalyzeParams) normalizedFormat() (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(p.Format)); f {
	case "":
		return formatJSON, nil
	case formatJSON, formatText:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format '%s' (use '%s' or '%s')", p.Format, formatJSON, formatText)
	}
}

// collectUnknownFields decodes data as an object and reports the fields
// not in known, sorted by name.
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		warnings = append(warnings, decodeUnknownField(key, value))
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Name < warnings[j].Name })
	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}
