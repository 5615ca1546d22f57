package parser

import "github.com/standardbeagle/smellscan/internal/syntax"

// csharpKinds maps tree-sitter-c-sharp node kinds to arena kinds. Kinds
// that are absent become syntax.KindOther but keep their children.
var csharpKinds = map[string]syntax.Kind{
	"compilation_unit":                  syntax.KindCompilationUnit,
	"namespace_declaration":             syntax.KindNamespace,
	"file_scoped_namespace_declaration": syntax.KindFileScopedNamespace,
	"using_directive":                   syntax.KindUsing,

	"class_declaration":            syntax.KindClass,
	"interface_declaration":        syntax.KindInterface,
	"struct_declaration":           syntax.KindStruct,
	"record_declaration":           syntax.KindRecord,
	"record_struct_declaration":    syntax.KindRecord,
	"enum_declaration":             syntax.KindEnum,
	"base_list":                    syntax.KindBaseList,
	"declaration_list":             syntax.KindDeclarationList,
	"enum_member_declaration_list": syntax.KindDeclarationList,

	"method_declaration":      syntax.KindMethod,
	"constructor_declaration": syntax.KindConstructor,
	"destructor_declaration":  syntax.KindDestructor,
	"property_declaration":    syntax.KindProperty,
	"accessor_list":           syntax.KindAccessorList,
	"accessor_declaration":    syntax.KindAccessor,
	"field_declaration":       syntax.KindField,
	"event_field_declaration": syntax.KindEvent,
	"event_declaration":       syntax.KindEvent,
	"enum_member_declaration": syntax.KindEnumMember,
	"variable_declaration":    syntax.KindVariableDeclaration,
	"variable_declarator":     syntax.KindVariableDeclarator,
	"parameter_list":          syntax.KindParameterList,
	"parameter":               syntax.KindParameter,

	"block":                       syntax.KindBlock,
	"local_declaration_statement": syntax.KindLocalDeclaration,
	"local_function_statement":    syntax.KindLocalFunction,
	"if_statement":                syntax.KindIf,
	"while_statement":             syntax.KindWhile,
	"do_statement":                syntax.KindDo,
	"for_statement":               syntax.KindFor,
	"foreach_statement":           syntax.KindForEach,
	"switch_statement":            syntax.KindSwitch,
	"switch_section":              syntax.KindSwitchSection,
	"continue_statement":          syntax.KindContinue,
	"goto_statement":              syntax.KindGoto,
	"try_statement":               syntax.KindTry,
	"catch_clause":                syntax.KindCatch,
	"return_statement":            syntax.KindReturn,
	"expression_statement":        syntax.KindExpressionStatement,

	"invocation_expression":       syntax.KindInvocation,
	"argument_list":               syntax.KindArgumentList,
	"argument":                    syntax.KindArgument,
	"member_access_expression":    syntax.KindMemberAccess,
	"object_creation_expression":  syntax.KindObjectCreation,
	"binary_expression":           syntax.KindBinary,
	"prefix_unary_expression":     syntax.KindPrefixUnary,
	"conditional_expression":      syntax.KindConditional,
	"parenthesized_expression":    syntax.KindParenthesized,
	"assignment_expression":       syntax.KindAssignment,
	"cast_expression":             syntax.KindCast,
	"lambda_expression":           syntax.KindLambda,
	"anonymous_method_expression": syntax.KindLambda,
	"identifier":                  syntax.KindIdentifier,
	"implicit_type":               syntax.KindIdentifier,
	"this_expression":             syntax.KindThis,
	"this":                        syntax.KindThis,
	"base_expression":             syntax.KindBase,
	"base":                        syntax.KindBase,
	"element_access_expression":   syntax.KindElementAccess,

	"predefined_type":    syntax.KindPredefinedType,
	"generic_name":       syntax.KindGenericName,
	"array_type":         syntax.KindArrayType,
	"qualified_name":     syntax.KindQualifiedName,
	"nullable_type":      syntax.KindNullableType,
	"type_argument_list": syntax.KindTypeArgumentList,
}

var literalKinds = map[string]syntax.LitKind{
	"integer_literal":                syntax.LitNumeric,
	"real_literal":                   syntax.LitNumeric,
	"string_literal":                 syntax.LitString,
	"verbatim_string_literal":        syntax.LitString,
	"raw_string_literal":             syntax.LitString,
	"interpolated_string_expression": syntax.LitString,
	"character_literal":              syntax.LitChar,
	"boolean_literal":                syntax.LitBool,
	"null_literal":                   syntax.LitNull,
}

// fieldsByKind lists the grammar fields whose role is recorded on the
// child nodes.
var fieldsByKind = map[string][]string{
	"namespace_declaration":             {"name", "body"},
	"file_scoped_namespace_declaration": {"name"},
	"class_declaration":                 {"name", "body"},
	"interface_declaration":             {"name", "body"},
	"struct_declaration":                {"name", "body"},
	"record_declaration":                {"name", "body", "parameters"},
	"record_struct_declaration":         {"name", "body", "parameters"},
	"enum_declaration":                  {"name", "body"},
	"method_declaration":                {"returns", "type", "name", "parameters", "body"},
	"constructor_declaration":           {"name", "parameters", "body"},
	"destructor_declaration":            {"name", "body"},
	"local_function_statement":          {"returns", "type", "name", "parameters", "body"},
	"property_declaration":              {"type", "name", "accessors", "value"},
	"accessor_declaration":              {"body"},
	"event_declaration":                 {"type", "name", "accessors"},
	"enum_member_declaration":           {"name", "value"},
	"variable_declaration":              {"type"},
	"variable_declarator":               {"name"},
	"parameter":                         {"type", "name"},
	"binary_expression":                 {"left", "right"},
	"assignment_expression":             {"left", "right"},
	"invocation_expression":             {"function", "arguments"},
	"member_access_expression":          {"expression", "name"},
	"object_creation_expression":        {"type", "arguments", "initializer"},
	"conditional_expression":            {"condition", "consequence", "alternative"},
	"if_statement":                      {"condition", "consequence", "alternative"},
	"while_statement":                   {"condition", "body"},
	"do_statement":                      {"body", "condition"},
	"for_statement":                     {"initializer", "condition", "update", "body"},
	"foreach_statement":                 {"type", "left", "right", "body"},
	"switch_statement":                  {"value", "body"},
	"cast_expression":                   {"type", "value"},
	"lambda_expression":                 {"parameters", "body"},
	"catch_declaration":                 {"type", "name"},
	"declaration_expression":            {"type", "name"},
	"qualified_name":                    {"qualifier", "name"},
	"array_type":                        {"type", "rank"},
	"nullable_type":                     {"type"},
	"element_access_expression":         {"expression", "subscript"},
}

// declaringKinds are the nodes whose "name" field declares rather than
// references.
var declaringKinds = map[string]bool{
	"namespace_declaration":             true,
	"file_scoped_namespace_declaration": true,
	"class_declaration":                 true,
	"interface_declaration":             true,
	"struct_declaration":                true,
	"record_declaration":                true,
	"record_struct_declaration":         true,
	"enum_declaration":                  true,
	"method_declaration":                true,
	"constructor_declaration":           true,
	"destructor_declaration":            true,
	"local_function_statement":          true,
	"property_declaration":              true,
	"event_declaration":                 true,
	"enum_member_declaration":           true,
	"variable_declarator":               true,
	"parameter":                         true,
	"catch_declaration":                 true,
	"declaration_expression":            true,
}
