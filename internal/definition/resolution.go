package definition

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/store"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

// maxDepth bounds type inference through member chains
const maxDepth = 16

var typeKinds = []types.SymbolKind{types.KindClass, types.KindInterface, types.KindTrait}

type resolution struct {
	store    *store.Store
	resolver *resolve.Resolver
	builtins *resolve.Builtins

	// spine holds the symbols enclosing the cursor, outermost first,
	// starting at the document root
	spine []*types.Symbol
}

func (r *resolution) resolve(ref Reference) []*types.Symbol {
	switch ref.Kind {
	case RefType:
		return r.findTypes(r.typeName(ref.Name, ref.Declared))
	case RefFunction:
		return r.findGlobal(resolve.Function, ref.Name, ref.Declared, types.KindFunction)
	case RefConstant:
		return r.findGlobal(resolve.Constant, ref.Name, ref.Declared, types.KindConstant)
	case RefImport:
		switch ref.Import.Kind {
		case resolve.Function:
			return r.store.FindKind(ref.Import.FQN, types.KindFunction)
		case resolve.Constant:
			return r.store.FindKind(ref.Import.FQN, types.KindConstant)
		}
		return r.store.FindKind(ref.Import.FQN, typeKinds...)
	case RefThis:
		if c := r.enclosingClass(); c != nil {
			return []*types.Symbol{c}
		}
	case RefScopedMember:
		var owners []string
		if ref.Target == nil {
			if c := r.enclosingClass(); c != nil {
				owners = []string{c.Name}
			}
		} else {
			owners = r.scopeTypes(ref.Target, 0)
		}
		return r.members(owners, ref.Name, ref.MemberKinds)
	case RefInstanceMember:
		return r.members(r.exprTypes(ref.Target, 0), ref.Name, ref.MemberKinds)
	case RefVariable:
		if v := r.variable(ref.Name); v != nil {
			return []*types.Symbol{v}
		}
	}
	return nil
}

// typeName resolves a written class name, mapping self, static and parent
// onto the enclosing class
func (r *resolution) typeName(raw string, declared bool) string {
	if declared {
		return r.resolver.Declare(raw)
	}
	switch strings.ToLower(raw) {
	case "self", "static":
		if c := r.enclosingClass(); c != nil {
			return c.Name
		}
		return ""
	case "parent":
		if c := r.enclosingClass(); c != nil {
			p, _ := r.store.Parent(c.Name)
			return p
		}
		return ""
	}
	return r.resolver.Resolve(resolve.Class, raw)
}

func (r *resolution) findTypes(fqn string) []*types.Symbol {
	if fqn == "" || r.builtins.IsType(fqn) {
		return nil
	}
	return r.store.FindKind(fqn, typeKinds...)
}

// findGlobal resolves a function or constant name. Unqualified names fall
// back to the global namespace.
func (r *resolution) findGlobal(kind resolve.Kind, raw string, declared bool, symKind types.SymbolKind) []*types.Symbol {
	if declared {
		return r.store.FindKind(r.resolver.Declare(raw), symKind)
	}
	found := r.store.FindKind(r.resolver.Resolve(kind, raw), symKind)
	if len(found) == 0 && !resolve.IsQualified(raw) {
		found = r.store.FindKind(raw, symKind)
	}
	return found
}

func (r *resolution) members(owners []string, name string, kinds []types.SymbolKind) []*types.Symbol {
	var out []*types.Symbol
	for _, owner := range owners {
		if m := r.store.Member(owner, name, kinds...); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// scopeTypes returns the class names the left side of :: denotes
func (r *resolution) scopeTypes(n *syntax.Node, depth int) []string {
	switch n.Value.Kind {
	case syntax.KindName, syntax.KindQualifiedName, syntax.KindRelativeScope, syntax.KindNamedType:
		if name := r.typeName(syntax.Text(n), false); name != "" {
			return []string{name}
		}
		return nil
	}
	return r.exprTypes(n, depth)
}

// exprTypes infers the class names an expression evaluates to from the
// declared types recorded on symbols. There is no flow analysis.
func (r *resolution) exprTypes(n *syntax.Node, depth int) []string {
	if n == nil || depth > maxDepth {
		return nil
	}
	depth++

	switch n.Value.Kind {
	case syntax.KindVariableName:
		name := syntax.Text(n)
		if name == "$this" {
			if c := r.enclosingClass(); c != nil {
				return []string{c.Name}
			}
			return nil
		}
		if v := r.variable(name); v != nil {
			scope := ""
			if c := r.enclosingClass(); c != nil {
				scope = c.Name
			}
			return r.classNames(v.Type, scope)
		}
	case syntax.KindParenthesized:
		if n.Len() > 0 {
			return r.exprTypes(n.Child(0), depth)
		}
	case syntax.KindObjectCreation:
		if name := syntax.First(n, syntax.KindName, syntax.KindQualifiedName, syntax.KindRelativeScope); name != nil {
			return r.scopeTypes(name, depth)
		}
	case syntax.KindMemberAccess, syntax.KindNullsafeAccess:
		return r.memberTypes(r.exprTypes(objectOf(n), depth), "$"+memberName(n), types.KindProperty)
	case syntax.KindMemberCall, syntax.KindNullsafeCall:
		return r.memberTypes(r.exprTypes(objectOf(n), depth), memberName(n), types.KindMethod)
	case syntax.KindScopedCall:
		return r.memberTypes(r.scopeTypes(objectOf(n), depth), memberName(n), types.KindMethod)
	case syntax.KindScopedProperty:
		return r.memberTypes(r.scopeTypes(objectOf(n), depth), memberName(n), types.KindProperty)
	case syntax.KindClassConstantAccess:
		return r.memberTypes(r.scopeTypes(objectOf(n), depth), memberName(n), types.KindClassConstant)
	case syntax.KindFunctionCall:
		fn := syntax.Field(n, "function")
		if fn == nil {
			fn = syntax.First(n, syntax.KindName, syntax.KindQualifiedName)
		}
		var out []string
		for _, f := range r.findGlobal(resolve.Function, syntax.Text(fn), false, types.KindFunction) {
			out = append(out, r.classNames(f.Type, "")...)
		}
		return out
	}
	return nil
}

func (r *resolution) memberTypes(owners []string, name string, kind types.SymbolKind) []string {
	var out []string
	for _, m := range r.members(owners, name, []types.SymbolKind{kind}) {
		out = append(out, r.classNames(m.Type, m.Scope)...)
	}
	return out
}

// classNames keeps the class members of a type, mapping self, static and
// $this onto scope
func (r *resolution) classNames(t types.TypeExpr, scope string) []string {
	var out []string
	for _, name := range t.Names {
		switch strings.ToLower(name) {
		case "self", "static", "$this":
			if scope != "" {
				out = append(out, scope)
			}
			continue
		case "parent":
			if p, ok := r.store.Parent(scope); ok {
				out = append(out, p)
			}
			continue
		}
		if r.builtins.IsType(name) || strings.HasSuffix(name, "[]") {
			continue
		}
		out = append(out, name)
	}
	return out
}

// memberName returns the member name of an access expression without $
func memberName(n *syntax.Node) string {
	name := syntax.Field(n, "name")
	if name == nil {
		for _, c := range n.Children() {
			if c != objectOf(n) && syntax.Is(c, syntax.KindName, syntax.KindVariableName) {
				name = c
				break
			}
		}
	}
	return strings.TrimPrefix(syntax.Text(name), "$")
}

func (r *resolution) enclosingClass() *types.Symbol {
	for i := len(r.spine) - 1; i >= 0; i-- {
		if r.spine[i].Kind.IsType() {
			return r.spine[i]
		}
	}
	return nil
}

// variable finds the declaration of name from the innermost scope outward.
// The search stops at the first function boundary unless the variable is
// captured with use or the scope is an arrow function.
func (r *resolution) variable(name string) *types.Symbol {
	for i := len(r.spine) - 1; i >= 0; i-- {
		scope := r.spine[i]
		if i > 0 && scope.Kind != types.KindFunction && scope.Kind != types.KindMethod {
			continue
		}
		v := scope.Child(name, types.KindVariable, types.KindParameter)
		if v != nil && !v.Modifiers.Has(types.ModUse) {
			return v
		}
		if v == nil && !isArrowFunction(scope) {
			return nil
		}
	}
	return nil
}

func isArrowFunction(s *types.Symbol) bool {
	return s.Modifiers.Has(types.ModAnonymous) && strings.HasPrefix(s.Name, "{fn:")
}

// spineAt returns root followed by the class-likes, functions and methods
// whose location spans pos, outermost first
func spineAt(root *types.Symbol, pos protocol.Position) []*types.Symbol {
	spine := []*types.Symbol{root}
	cur := root
	for {
		var next *types.Symbol
		for _, c := range cur.Children {
			if c.Modifiers.Has(types.ModMagic) || !c.Contains(pos) {
				continue
			}
			if c.Kind.IsType() || c.Kind == types.KindFunction || c.Kind == types.KindMethod {
				next = c
				break
			}
		}
		if next == nil {
			return spine
		}
		spine = append(spine, next)
		cur = next
	}
}
