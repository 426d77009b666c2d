package reader

import (
	"strings"

	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/tree"
	"github.com/dshills/phpsymbols/pkg/types"
)

// recordVariable adds a Variable to the innermost scope unless the scope
// already has one of that name. The first recorded type wins.
func (v *visitor) recordVariable(n *syntax.Node, typ types.TypeExpr) {
	if v.opts.ExternalOnly {
		return
	}
	name := syntax.Text(n)
	if name == "" || name == "$this" || strings.HasPrefix(name, "$$") {
		return
	}
	f := v.scopeFrame()
	if f.vars[name] {
		return
	}
	f.vars[name] = true
	f.sym.AddChild(&types.Symbol{
		Kind:     types.KindVariable,
		Name:     name,
		Type:     typ,
		Scope:    f.sym.Name,
		Location: v.locate(n),
	})
}

func (v *visitor) readAssignment(n *syntax.Node) {
	if v.opts.ExternalOnly {
		return
	}
	kids := n.Children()
	if len(kids) == 0 {
		return
	}
	left := syntax.Field(n, "left")
	if left == nil {
		left = kids[0]
	}
	right := syntax.Field(n, "right")
	if right == nil && len(kids) > 1 {
		right = kids[len(kids)-1]
	}

	if left.Value.Kind == syntax.KindVariableName {
		name := syntax.Text(left)
		typ := v.docFor(n).varType(v, name)
		if typ.IsEmpty() {
			typ = v.expressionType(right)
		}
		v.recordVariable(left, typ)
		return
	}
	if syntax.Is(left, "list_literal", "array_creation_expression") {
		for _, vn := range variables(left) {
			v.recordVariable(vn, types.TypeExpr{})
		}
	}
}

// expressionType infers the type of `new Foo` expressions only
func (v *visitor) expressionType(n *syntax.Node) types.TypeExpr {
	for n != nil && n.Value.Kind == syntax.KindParenthesized && n.Len() > 0 {
		n = n.Child(0)
	}
	if !syntax.Is(n, syntax.KindObjectCreation) {
		return types.TypeExpr{}
	}
	name := syntax.First(n, syntax.KindName, syntax.KindQualifiedName, syntax.KindRelativeScope)
	if name == nil {
		return types.TypeExpr{}
	}
	text := syntax.Text(name)
	if resolve.IsRelative(text) {
		if class := v.classFrame(); class != nil && !strings.EqualFold(text, "parent") {
			return types.NewType(class.Name)
		}
		return types.TypeExpr{}
	}
	return types.NewType(v.resolver.Resolve(resolve.Class, text))
}

func (v *visitor) readGlobal(n *syntax.Node) {
	for _, vn := range variables(n) {
		v.recordVariable(vn, types.TypeExpr{})
	}
}

func (v *visitor) readCatch(n *syntax.Node) {
	tn := syntax.Field(n, "type")
	if tn == nil {
		tn = syntax.First(n, syntax.KindTypeList, syntax.KindNamedType, syntax.KindName, syntax.KindQualifiedName)
	}
	vn := syntax.Field(n, "name")
	if vn == nil {
		vn = syntax.First(n, syntax.KindVariableName)
	}
	if vn != nil {
		v.recordVariable(vn, v.typeExpr(tn))
	}
}

// readForeach records the key and value variables that follow `as`
func (v *visitor) readForeach(n *syntax.Node) {
	kids := n.Children()
	start := 1
	for i, c := range kids {
		if c.Value.Kind == "as" {
			start = i + 1
			break
		}
	}
	for _, c := range kids[min(start, len(kids)):] {
		if c.Value.Field == "body" || syntax.Is(c, syntax.KindCompound) {
			continue
		}
		for _, vn := range variables(c) {
			v.recordVariable(vn, types.TypeExpr{})
		}
	}
}

// variables returns every variable_name at or below n
func variables(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	return tree.FindAll(n, func(c *syntax.Node) bool {
		return c.Value.Kind == syntax.KindVariableName
	})
}
