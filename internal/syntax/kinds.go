package syntax

// Node kinds understood by the reader and the definition provider
const (
	KindProgram = "program"
	KindError   = "ERROR"
	KindMissing = "MISSING"
	KindComment = "comment"

	KindName          = "name"
	KindQualifiedName = "qualified_name"
	KindNamespaceName = "namespace_name"
	KindVariableName  = "variable_name"
	KindRelativeScope = "relative_scope"
	KindString        = "string"
	KindEncapsed      = "encapsed_string"

	KindNamespaceDefinition = "namespace_definition"
	KindNamespaceUse        = "namespace_use_declaration"
	KindNamespaceUseClause  = "namespace_use_clause"
	KindNamespaceUseGroup   = "namespace_use_group"
	KindCompound            = "compound_statement"

	KindClass            = "class_declaration"
	KindInterface        = "interface_declaration"
	KindTrait            = "trait_declaration"
	KindEnum             = "enum_declaration"
	KindEnumCase         = "enum_case"
	KindAnonymousClass   = "anonymous_class"
	KindBaseClause       = "base_clause"
	KindInterfaceClause  = "class_interface_clause"
	KindDeclarationList  = "declaration_list"
	KindEnumDeclarations = "enum_declaration_list"
	KindUseDeclaration   = "use_declaration"

	KindFunction          = "function_definition"
	KindMethod            = "method_declaration"
	KindAnonymousFunction = "anonymous_function"
	KindArrowFunction     = "arrow_function"
	KindParameters        = "formal_parameters"
	KindSimpleParameter   = "simple_parameter"
	KindVariadicParameter = "variadic_parameter"
	KindPromotedParameter = "property_promotion_parameter"
	KindUseClause         = "anonymous_function_use_clause"

	KindProperty        = "property_declaration"
	KindPropertyElement = "property_element"
	KindConst           = "const_declaration"
	KindConstElement    = "const_element"

	KindVisibility     = "visibility_modifier"
	KindStaticModifier = "static_modifier"
	KindAbstract       = "abstract_modifier"
	KindFinal          = "final_modifier"
	KindReadonly       = "readonly_modifier"
	KindVarModifier    = "var_modifier"

	KindNamedType     = "named_type"
	KindPrimitiveType = "primitive_type"
	KindOptionalType  = "optional_type"
	KindUnionType     = "union_type"
	KindIntersection  = "intersection_type"
	KindTypeList      = "type_list"

	KindExpressionStatement = "expression_statement"
	KindAssignment          = "assignment_expression"
	KindGlobal              = "global_declaration"
	KindCatch               = "catch_clause"
	KindForeach             = "foreach_statement"
	KindPair                = "pair"
	KindFunctionCall        = "function_call_expression"
	KindArguments           = "arguments"
	KindArgument            = "argument"
	KindObjectCreation      = "object_creation_expression"
	KindMemberAccess        = "member_access_expression"
	KindMemberCall          = "member_call_expression"
	KindNullsafeAccess      = "nullsafe_member_access_expression"
	KindNullsafeCall        = "nullsafe_member_call_expression"
	KindScopedCall          = "scoped_call_expression"
	KindScopedProperty      = "scoped_property_access_expression"
	KindClassConstantAccess = "class_constant_access_expression"
	KindParenthesized       = "parenthesized_expression"
)

// leafKinds are kept as text leaves regardless of their inner structure
var leafKinds = map[string]bool{
	KindComment:        true,
	KindName:           true,
	KindQualifiedName:  true,
	KindNamespaceName:  true,
	KindVariableName:   true,
	KindRelativeScope:  true,
	KindString:         true,
	KindEncapsed:       true,
	KindVisibility:     true,
	KindStaticModifier: true,
	KindAbstract:       true,
	KindFinal:          true,
	KindReadonly:       true,
	KindVarModifier:    true,
	KindPrimitiveType:  true,
	KindNamedType:      true,
}

// IsLeafKind reports whether kind is always represented as a text leaf
func IsLeafKind(kind string) bool {
	return leafKinds[kind]
}

// renamed maps grammar variants onto the kinds above
var renamed = map[string]string{
	"anonymous_function_creation_expression": KindAnonymousFunction,
	"namespace_use_group_clause":             KindNamespaceUseClause,
}

// keywords are anonymous tokens kept in the tree because they change meaning
var keywords = map[string]bool{
	"function": true,
	"const":    true,
	"static":   true,
	"new":      true,
	"class":    true,
	"as":       true,
	"&":        true,
}
