// Package types defines the rule catalog and the result model shared by
// the detectors, the engine and the reports.
package types

import "strings"

// RuleKind enumerates the design smells the analyzer can report.
type RuleKind uint8

const (
	RuleFunctionWithTooManyArguments RuleKind = iota
	RuleFunctionIsTooBig
	RuleVariableNameIsNumberSeries
	RuleFlagArgument
	RuleCommentHeadline
	RuleCodeInComment
	RuleLODViolation
	RuleHybridDataStructure
	RuleLimitCondition
	RuleInheritanceDependency
	RuleDocumentationOnPrivateSoftwareUnits
	RuleNullReturn
	RuleNullArgument
	RuleErrorFlag

	ruleKindCount
)

var ruleNames = [ruleKindCount]string{
	RuleFunctionWithTooManyArguments:        "FunctionWithTooManyArguments",
	RuleFunctionIsTooBig:                    "FunctionIsTooBig",
	RuleVariableNameIsNumberSeries:          "VariableNameIsNumberSeries",
	RuleFlagArgument:                        "FlagArgument",
	RuleCommentHeadline:                     "CommentHeadline",
	RuleCodeInComment:                       "CodeInComment",
	RuleLODViolation:                        "LODViolation",
	RuleHybridDataStructure:                 "HybridDataStructure",
	RuleLimitCondition:                      "LimitCondition",
	RuleInheritanceDependency:               "InheritanceDependency",
	RuleDocumentationOnPrivateSoftwareUnits: "DocumentationOnPrivateSoftwareUnits",
	RuleNullReturn:                          "NullReturn",
	RuleNullArgument:                        "NullArgument",
	RuleErrorFlag:                           "ErrorFlag",
}

var ruleMessages = [ruleKindCount]string{
	RuleFunctionWithTooManyArguments:        "Function takes too many arguments; group related arguments into an object.",
	RuleFunctionIsTooBig:                    "Function is too big; extract smaller functions that do one thing.",
	RuleVariableNameIsNumberSeries:          "Variable name is a number series; use a name that reveals intent.",
	RuleFlagArgument:                        "Flag argument; split the function instead of selecting behaviour with a flag.",
	RuleCommentHeadline:                     "Comment used as a headline; extract the block into a well-named function.",
	RuleCodeInComment:                       "Commented-out code; delete it, version control remembers.",
	RuleLODViolation:                        "Law of Demeter violation; talk to friends, not to strangers.",
	RuleHybridDataStructure:                 "Hybrid data structure; decide between an object and a data structure.",
	RuleLimitCondition:                      "Duplicated limit condition; encapsulate the boundary calculation in one place.",
	RuleInheritanceDependency:               "Base type depends on a derived type; base types should know nothing about their derivatives.",
	RuleDocumentationOnPrivateSoftwareUnits: "Documentation comment on a private member; private code should explain itself.",
	RuleNullReturn:                          "Returning null; return a special-case object or throw instead.",
	RuleNullArgument:                        "Passing null as an argument; pass a meaningful value or overload the function.",
	RuleErrorFlag:                           "Error code returned; prefer exceptions over error flags.",
}

// AllRuleKinds returns every rule kind in catalog order.
func AllRuleKinds() []RuleKind {
	kinds := make([]RuleKind, 0, ruleKindCount)
	for k := RuleKind(0); k < ruleKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the catalog name of the rule kind.
func (k RuleKind) String() string {
	if k >= ruleKindCount {
		return "Unknown"
	}
	return ruleNames[k]
}

// Message returns the fixed human-readable message for the rule kind.
func (k RuleKind) Message() string {
	if k >= ruleKindCount {
		return ""
	}
	return ruleMessages[k]
}

// Valid reports whether k is part of the catalog.
func (k RuleKind) Valid() bool {
	return k < ruleKindCount
}

// ParseRuleKind looks up a rule kind by its catalog name (case-insensitive).
func ParseRuleKind(name string) (RuleKind, bool) {
	name = strings.TrimSpace(name)
	for k := RuleKind(0); k < ruleKindCount; k++ {
		if strings.EqualFold(ruleNames[k], name) {
			return k, true
		}
	}
	return 0, false
}

// RuleNames returns the catalog names in catalog order.
func RuleNames() []string {
	names := make([]string, 0, ruleKindCount)
	for _, n := range ruleNames {
		names = append(names, n)
	}
	return names
}

// MarshalText implements encoding.TextMarshaler.
func (k RuleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
