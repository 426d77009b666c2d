package definition

import (
	"strings"

	"github.com/dshills/phpsymbols/internal/reader"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

// RefKind is the shape of a reference
type RefKind int

const (
	RefNone RefKind = iota
	RefType
	RefFunction
	RefConstant
	RefScopedMember
	RefInstanceMember
	RefVariable
	RefThis
	RefImport
)

func (k RefKind) String() string {
	switch k {
	case RefType:
		return "type"
	case RefFunction:
		return "function"
	case RefConstant:
		return "constant"
	case RefScopedMember:
		return "scoped_member"
	case RefInstanceMember:
		return "instance_member"
	case RefVariable:
		return "variable"
	case RefThis:
		return "this"
	case RefImport:
		return "import"
	}
	return "none"
}

// Reference is a classified name at the cursor
type Reference struct {
	Kind RefKind
	Name string

	// Declared is set when the name is the declaration itself
	Declared bool

	// Target is the left-hand side of a member access; nil means the
	// enclosing class
	Target *syntax.Node

	// MemberKinds are the symbol kinds a member reference may resolve to
	MemberKinds []types.SymbolKind

	Import *reader.Import
}

var typeContexts = map[string]bool{
	syntax.KindBaseClause:        true,
	syntax.KindInterfaceClause:   true,
	syntax.KindUseDeclaration:    true,
	syntax.KindObjectCreation:    true,
	syntax.KindAnonymousClass:    true,
	syntax.KindTypeList:          true,
	syntax.KindOptionalType:      true,
	syntax.KindUnionType:         true,
	syntax.KindIntersection:      true,
	syntax.KindNamedType:         true,
	syntax.KindCatch:             true,
	syntax.KindSimpleParameter:   true,
	syntax.KindVariadicParameter: true,
	syntax.KindPromotedParameter: true,
	syntax.KindProperty:          true,
	syntax.KindMethod:            true,
	syntax.KindFunction:          true,
	syntax.KindAnonymousFunction: true,
	syntax.KindArrowFunction:     true,
}

var classLikes = map[string]bool{
	syntax.KindClass:     true,
	syntax.KindInterface: true,
	syntax.KindTrait:     true,
	syntax.KindEnum:      true,
}

func isMemberAccess(kind string) bool {
	return kind == syntax.KindMemberAccess || kind == syntax.KindNullsafeAccess
}

func isMemberCall(kind string) bool {
	return kind == syntax.KindMemberCall || kind == syntax.KindNullsafeCall
}

// objectOf returns the object or scope operand of a member expression
func objectOf(n *syntax.Node) *syntax.Node {
	for _, f := range []string{"object", "scope"} {
		if c := syntax.Field(n, f); c != nil {
			return c
		}
	}
	if n.Len() > 0 {
		return n.Child(0)
	}
	return nil
}

// isOperand reports whether leaf is the object or scope of its parent
func isOperand(leaf *syntax.Node) bool {
	return objectOf(leaf.Parent()) == leaf
}

// classify maps the node at the cursor onto a reference. Names are read
// from leaves only; anything else yields RefNone.
func classify(leaf *syntax.Node) Reference {
	if leaf == nil || !leaf.IsLeaf() || leaf.Parent() == nil {
		return Reference{}
	}
	text := syntax.Text(leaf)
	parent := leaf.Parent()
	pk := parent.Value.Kind

	switch leaf.Value.Kind {
	case syntax.KindVariableName:
		if pk == syntax.KindScopedProperty && !isOperand(leaf) {
			return Reference{Kind: RefScopedMember, Name: text, Target: objectOf(parent), MemberKinds: []types.SymbolKind{types.KindProperty}}
		}
		if text == "$this" {
			return Reference{Kind: RefThis, Name: text}
		}
		if pk == syntax.KindPropertyElement || pk == syntax.KindPromotedParameter {
			return memberDeclaration(text, types.KindProperty)
		}
		return Reference{Kind: RefVariable, Name: text}

	case syntax.KindRelativeScope:
		return Reference{Kind: RefType, Name: text}

	case syntax.KindName, syntax.KindQualifiedName, syntax.KindNamespaceName, syntax.KindNamedType:
	default:
		return Reference{}
	}

	switch {
	case isMemberAccess(pk) && !isOperand(leaf):
		return Reference{Kind: RefInstanceMember, Name: "$" + text, Target: objectOf(parent), MemberKinds: []types.SymbolKind{types.KindProperty}}
	case isMemberCall(pk) && !isOperand(leaf):
		return Reference{Kind: RefInstanceMember, Name: text, Target: objectOf(parent), MemberKinds: []types.SymbolKind{types.KindMethod}}
	case pk == syntax.KindScopedCall && !isOperand(leaf):
		return Reference{Kind: RefScopedMember, Name: text, Target: objectOf(parent), MemberKinds: []types.SymbolKind{types.KindMethod}}
	case pk == syntax.KindClassConstantAccess && !isOperand(leaf):
		if strings.EqualFold(text, "class") {
			return Reference{Kind: RefType, Name: syntax.Text(objectOf(parent))}
		}
		return Reference{Kind: RefScopedMember, Name: text, Target: objectOf(parent), MemberKinds: []types.SymbolKind{types.KindClassConstant}}
	case pk == syntax.KindScopedCall || pk == syntax.KindClassConstantAccess || pk == syntax.KindScopedProperty:
		return Reference{Kind: RefType, Name: text}
	case pk == syntax.KindFunctionCall:
		return Reference{Kind: RefFunction, Name: text}
	case pk == syntax.KindNamespaceUseClause:
		return importReference(leaf)
	case pk == syntax.KindNamespaceDefinition || pk == syntax.KindNamespaceUse:
		return Reference{}
	}

	declared := leaf.Value.Field == "name" || syntax.NameOf(parent) == leaf
	switch {
	case classLikes[pk] && declared:
		return Reference{Kind: RefType, Name: text, Declared: true}
	case pk == syntax.KindFunction && declared:
		return Reference{Kind: RefFunction, Name: text, Declared: true}
	case pk == syntax.KindMethod && declared:
		return memberDeclaration(text, types.KindMethod)
	case pk == syntax.KindEnumCase:
		return memberDeclaration(text, types.KindClassConstant)
	case pk == syntax.KindConstElement:
		if syntax.Is(parent.Parent(), syntax.KindConst) && syntax.Is(parent.Parent().Parent(), syntax.KindDeclarationList) {
			return memberDeclaration(text, types.KindClassConstant)
		}
		return Reference{Kind: RefConstant, Name: text, Declared: true}
	case leaf.Value.Kind == syntax.KindNamedType || typeContexts[pk]:
		return Reference{Kind: RefType, Name: text}
	}
	return Reference{Kind: RefConstant, Name: text}
}

// memberDeclaration references a member by name in the enclosing class
func memberDeclaration(name string, kind types.SymbolKind) Reference {
	return Reference{Kind: RefScopedMember, Name: name, Declared: true, MemberKinds: []types.SymbolKind{kind}}
}

func importReference(leaf *syntax.Node) Reference {
	clause := leaf.Parent()
	decl := clause.Parent()
	if syntax.Is(decl, syntax.KindNamespaceUseGroup) {
		decl = decl.Parent()
	}
	if decl == nil {
		return Reference{}
	}
	imports, _ := reader.Imports(decl)
	for i := range imports {
		if imports[i].Clause == clause {
			return Reference{Kind: RefImport, Name: imports[i].FQN, Import: &imports[i]}
		}
	}
	return Reference{}
}
