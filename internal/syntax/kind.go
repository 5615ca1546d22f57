package syntax

// Kind is the closed set of node variants the analyzers understand.
type Kind uint8

const (
	KindOther Kind = iota
	KindCompilationUnit
	KindNamespace
	KindFileScopedNamespace
	KindUsing

	// Type declarations
	KindClass
	KindInterface
	KindStruct
	KindRecord
	KindEnum
	KindBaseList
	KindDeclarationList

	// Members
	KindMethod
	KindConstructor
	KindDestructor
	KindProperty
	KindAccessorList
	KindAccessor
	KindField
	KindEvent
	KindEnumMember
	KindVariableDeclaration
	KindVariableDeclarator
	KindParameterList
	KindParameter

	// Statements
	KindBlock
	KindLocalDeclaration
	KindLocalFunction
	KindIf
	KindWhile
	KindDo
	KindFor
	KindForEach
	KindSwitch
	KindSwitchSection
	KindContinue
	KindGoto
	KindTry
	KindCatch
	KindReturn
	KindExpressionStatement

	// Expressions
	KindInvocation
	KindArgumentList
	KindArgument
	KindMemberAccess
	KindObjectCreation
	KindBinary
	KindPrefixUnary
	KindConditional
	KindParenthesized
	KindAssignment
	KindCast
	KindLambda
	KindLiteral
	KindIdentifier
	KindThis
	KindBase
	KindElementAccess

	// Type syntax
	KindPredefinedType
	KindGenericName
	KindArrayType
	KindQualifiedName
	KindNullableType
	KindTypeArgumentList

	// KindName is an identifier that declares something rather than refers to it.
	KindName

	kindCount
)

var kindNames = [kindCount]string{
	KindOther:               "other",
	KindCompilationUnit:     "compilation_unit",
	KindNamespace:           "namespace",
	KindFileScopedNamespace: "file_scoped_namespace",
	KindUsing:               "using",
	KindClass:               "class",
	KindInterface:           "interface",
	KindStruct:              "struct",
	KindRecord:              "record",
	KindEnum:                "enum",
	KindBaseList:            "base_list",
	KindDeclarationList:     "declaration_list",
	KindMethod:              "method",
	KindConstructor:         "constructor",
	KindDestructor:          "destructor",
	KindProperty:            "property",
	KindAccessorList:        "accessor_list",
	KindAccessor:            "accessor",
	KindField:               "field",
	KindEvent:               "event",
	KindEnumMember:          "enum_member",
	KindVariableDeclaration: "variable_declaration",
	KindVariableDeclarator:  "variable_declarator",
	KindParameterList:       "parameter_list",
	KindParameter:           "parameter",
	KindBlock:               "block",
	KindLocalDeclaration:    "local_declaration",
	KindLocalFunction:       "local_function",
	KindIf:                  "if",
	KindWhile:               "while",
	KindDo:                  "do",
	KindFor:                 "for",
	KindForEach:             "foreach",
	KindSwitch:              "switch",
	KindSwitchSection:       "switch_section",
	KindContinue:            "continue",
	KindGoto:                "goto",
	KindTry:                 "try",
	KindCatch:               "catch",
	KindReturn:              "return",
	KindExpressionStatement: "expression_statement",
	KindInvocation:          "invocation",
	KindArgumentList:        "argument_list",
	KindArgument:            "argument",
	KindMemberAccess:        "member_access",
	KindObjectCreation:      "object_creation",
	KindBinary:              "binary",
	KindPrefixUnary:         "prefix_unary",
	KindConditional:         "conditional",
	KindParenthesized:       "parenthesized",
	KindAssignment:          "assignment",
	KindCast:                "cast",
	KindLambda:              "lambda",
	KindLiteral:             "literal",
	KindIdentifier:          "identifier",
	KindThis:                "this",
	KindBase:                "base",
	KindElementAccess:       "element_access",
	KindPredefinedType:      "predefined_type",
	KindGenericName:         "generic_name",
	KindArrayType:           "array_type",
	KindQualifiedName:       "qualified_name",
	KindNullableType:        "nullable_type",
	KindTypeArgumentList:    "type_argument_list",
	KindName:                "name",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// IsTypeDeclaration reports class, interface, struct and record declarations.
// Enums are excluded.
func (k Kind) IsTypeDeclaration() bool {
	switch k {
	case KindClass, KindInterface, KindStruct, KindRecord:
		return true
	}
	return false
}

// IsMethodLike reports declarations that own a parameter list and a body.
func (k Kind) IsMethodLike() bool {
	switch k {
	case KindMethod, KindConstructor, KindDestructor, KindLocalFunction:
		return true
	}
	return false
}

// IsTypeSyntax reports nodes that can denote a type.
func (k Kind) IsTypeSyntax() bool {
	switch k {
	case KindIdentifier, KindPredefinedType, KindGenericName, KindArrayType:
		return true
	}
	return false
}

// TypeDeclarationKinds lists the kinds matched by IsTypeDeclaration.
var TypeDeclarationKinds = []Kind{KindClass, KindInterface, KindStruct, KindRecord}

// MethodLikeKinds lists the kinds matched by IsMethodLike.
var MethodLikeKinds = []Kind{KindMethod, KindConstructor, KindDestructor, KindLocalFunction}

// TypeSyntaxKinds lists the kinds matched by IsTypeSyntax.
var TypeSyntaxKinds = []Kind{KindIdentifier, KindPredefinedType, KindGenericName, KindArrayType}
