package definition

import (
	"github.com/dshills/phpsymbols/internal/reader"
	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/tree"
)

// contextVisitor replays the namespace and use declarations that precede
// the cursor
type contextVisitor struct {
	tree.Base[syntax.Element]
	offset   int
	resolver *resolve.Resolver
}

func newContextVisitor(offset int, builtins *resolve.Builtins) *contextVisitor {
	return &contextVisitor{offset: offset, resolver: resolve.New(builtins)}
}

func (c *contextVisitor) PreOrder(n *syntax.Node) bool {
	if n.Value.Start > c.offset {
		return false
	}
	switch n.Value.Kind {
	case syntax.KindProgram:
		return true
	case syntax.KindNamespaceDefinition:
		name := syntax.Field(n, "name")
		if name == nil {
			name = syntax.First(n, syntax.KindNamespaceName, syntax.KindName, syntax.KindQualifiedName)
		}
		c.resolver.SetNamespace(syntax.Text(name))
		return true
	case syntax.KindCompound:
		return syntax.Is(n.Parent(), syntax.KindNamespaceDefinition)
	case syntax.KindNamespaceUse:
		imports, _ := reader.Imports(n)
		for _, imp := range imports {
			c.resolver.AddAlias(imp.Kind, imp.Alias, imp.FQN)
		}
	}
	return false
}

func (c *contextVisitor) PostOrder(n *syntax.Node) {
	if n.Value.Kind == syntax.KindNamespaceDefinition && syntax.Field(n, "body") != nil && n.Value.End < c.offset {
		c.resolver.SetNamespace("")
	}
}

// locator records the deepest node spanning the offset
type locator struct {
	tree.Base[syntax.Element]
	offset  int
	deepest *syntax.Node
}

func (l *locator) PreOrder(n *syntax.Node) bool {
	if !syntax.Contains(n, l.offset) {
		return false
	}
	l.deepest = n
	return true
}
