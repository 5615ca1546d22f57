package syntax

// NodeID addresses a node inside its Tree's arena.
type NodeID int32

// NoNode is the absent node.
const NoNode NodeID = -1

// Valid reports whether id refers to a node.
func (id NodeID) Valid() bool { return id >= 0 }

// Span is a half-open byte range into the source.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Operator is the raw operator of a binary or unary expression.
type Operator uint8

const (
	OpNone Operator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLogicalAnd
	OpLogicalOr
	OpCoalesce
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpBitAnd
	OpBitOr
	OpXor
	OpShiftLeft
	OpShiftRight
	OpNot
	OpComplement
	OpIncrement
	OpDecrement
	OpOther
)

var operatorTokens = map[string]Operator{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"&&": OpLogicalAnd,
	"||": OpLogicalOr,
	"??": OpCoalesce,
	"==": OpEqual,
	"!=": OpNotEqual,
	"<":  OpLess,
	"<=": OpLessEqual,
	">":  OpGreater,
	">=": OpGreaterEqual,
	"&":  OpBitAnd,
	"|":  OpBitOr,
	"^":  OpXor,
	"<<": OpShiftLeft,
	">>": OpShiftRight,
	"!":  OpNot,
	"~":  OpComplement,
	"++": OpIncrement,
	"--": OpDecrement,
}

// ParseOperator maps an operator token to its Operator. Unknown tokens yield OpOther.
func ParseOperator(tok string) Operator {
	if op, ok := operatorTokens[tok]; ok {
		return op
	}
	return OpOther
}

// IsArithmetic reports +, -, * and /.
func (o Operator) IsArithmetic() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// IsLogical reports &&, || and ??.
func (o Operator) IsLogical() bool {
	switch o {
	case OpLogicalAnd, OpLogicalOr, OpCoalesce:
		return true
	}
	return false
}

func (o Operator) String() string {
	for tok, op := range operatorTokens {
		if op == o {
			return tok
		}
	}
	if o == OpNone {
		return ""
	}
	return "?"
}

// LitKind classifies literal nodes.
type LitKind uint8

const (
	LitNone LitKind = iota
	LitNumeric
	LitString
	LitChar
	LitBool
	LitNull
)

// Modifiers is a bitset of declaration modifiers.
type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModReadOnly
	ModConst
	ModAbstract
	ModVirtual
	ModOverride
	ModSealed
	ModPartial
	ModAsync
	ModExtern
	ModNew
	ModVolatile
	ModUnsafe
	ModRequired
	ModThis
	ModRef
	ModOut
	ModParams
)

var modifierKeywords = map[string]Modifiers{
	"public":    ModPublic,
	"private":   ModPrivate,
	"protected": ModProtected,
	"internal":  ModInternal,
	"static":    ModStatic,
	"readonly":  ModReadOnly,
	"const":     ModConst,
	"abstract":  ModAbstract,
	"virtual":   ModVirtual,
	"override":  ModOverride,
	"sealed":    ModSealed,
	"partial":   ModPartial,
	"async":     ModAsync,
	"extern":    ModExtern,
	"new":       ModNew,
	"volatile":  ModVolatile,
	"unsafe":    ModUnsafe,
	"required":  ModRequired,
	"this":      ModThis,
	"ref":       ModRef,
	"out":       ModOut,
	"params":    ModParams,
}

// ParseModifier maps a modifier keyword to its bit.
func ParseModifier(keyword string) (Modifiers, bool) {
	m, ok := modifierKeywords[keyword]
	return m, ok
}

// Has reports whether every bit of want is set.
func (m Modifiers) Has(want Modifiers) bool {
	return m&want == want
}

// Node is one arena entry. Children are stored in source order.
type Node struct {
	Kind      Kind
	Parent    NodeID
	Children  []NodeID
	Span      Span
	StartLine int // 1-based
	EndLine   int // 1-based
	Field     string
	Name      string
	Op        Operator
	Lit       LitKind
	Value     string
	Mods      Modifiers
}

// TokenKind classifies the leaf tokens kept alongside the tree.
type TokenKind uint8

const (
	TokenOther TokenKind = iota
	TokenOpenBrace
	TokenCloseBrace
	TokenModifier
)

// Token is a leaf token of the source.
type Token struct {
	Kind      TokenKind
	Mod       Modifiers
	Span      Span
	StartLine int
	EndLine   int
}

// TriviaKind classifies comments.
type TriviaKind uint8

const (
	TriviaLineComment TriviaKind = iota
	TriviaBlockComment
	TriviaDocComment
)

// Trivia is a comment. Consecutive "///" lines form a single doc-comment trivia.
type Trivia struct {
	Kind      TriviaKind
	Span      Span
	StartLine int
	EndLine   int
}
