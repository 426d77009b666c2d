package reader

import (
	"strings"

	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

var importNameKinds = []string{syntax.KindQualifiedName, syntax.KindNamespaceName, syntax.KindName}

// Import is one clause of a use declaration
type Import struct {
	Kind   resolve.Kind
	Alias  string // as written, empty when not aliased
	FQN    string
	Clause *syntax.Node
}

// Name returns the local name the import binds
func (i Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return types.ShortName(i.FQN)
}

// Imports lists the clauses of a namespace_use_declaration. Clauses without
// a usable name are returned separately; a declaration with no clauses at
// all is returned as its own incomplete node.
func Imports(n *syntax.Node) (imports []Import, incomplete []*syntax.Node) {
	kind := useKind(n, resolve.Class)

	prefix := ""
	clauses := syntax.All(n, syntax.KindNamespaceUseClause)
	if group := syntax.First(n, syntax.KindNamespaceUseGroup); group != nil {
		prefix = strings.TrimPrefix(syntax.Text(syntax.First(n, importNameKinds...)), `\`)
		clauses = append(clauses, syntax.All(group, syntax.KindNamespaceUseClause)...)
	}
	if len(clauses) == 0 {
		return nil, []*syntax.Node{n}
	}

	for _, c := range clauses {
		var nameNode *syntax.Node
		for _, child := range syntax.All(c, importNameKinds...) {
			if child.Value.Field != "alias" {
				nameNode = child
				break
			}
		}
		target := strings.TrimPrefix(syntax.Text(nameNode), `\`)
		if target == "" {
			incomplete = append(incomplete, c)
			continue
		}
		imports = append(imports, Import{
			Kind:   useKind(c, kind),
			Alias:  syntax.Text(syntax.Field(c, "alias")),
			FQN:    types.JoinName(prefix, target),
			Clause: c,
		})
	}
	return imports, incomplete
}

// readUse registers the aliases of a use declaration and records an import
// stub for each clause
func (v *visitor) readUse(n *syntax.Node) {
	imports, incomplete := Imports(n)
	for _, bad := range incomplete {
		v.incomplete(bad)
	}
	for _, imp := range imports {
		v.resolver.AddAlias(imp.Kind, imp.Alias, imp.FQN)
		if v.opts.ExternalOnly {
			continue
		}
		kind := imp.Kind.SymbolKind()
		stub := &types.Symbol{
			Kind:      kind,
			Name:      imp.Name(),
			Modifiers: types.ModUse,
			Location:  v.locate(imp.Clause),
		}
		stub.Associate(kind, imp.FQN)
		v.add(stub)
	}
}

// useKind reads a function or const keyword child, defaulting to def
func useKind(n *syntax.Node, def resolve.Kind) resolve.Kind {
	for _, c := range n.Children() {
		switch c.Value.Kind {
		case "function", "const":
			return resolve.KindOf(c.Value.Kind)
		}
	}
	return def
}

func (v *visitor) incomplete(n *syntax.Node) {
	pos := v.doc.PositionAt(n.Value.Start)
	v.result.AddError(string(v.doc.URI()), int(pos.Line)+1, int(pos.Character)+1, "incomplete use declaration")
	v.log.Debug("incomplete use declaration", "uri", v.doc.URI(), "line", pos.Line+1)
}
