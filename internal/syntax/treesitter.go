//go:build cgo

package syntax

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/dshills/phpsymbols/internal/tree"
)

// TreeSitter parses PHP with the tree-sitter grammar and normalizes the
// concrete tree into Elements
type TreeSitter struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewParser returns the tree-sitter PHP parser
func NewParser() Parser {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	return &TreeSitter{parser: p}
}

// Parse parses source. Syntax errors are kept as ERROR nodes.
func (t *TreeSitter) Parse(ctx context.Context, source []byte) (*Node, error) {
	t.mu.Lock()
	st, err := t.parser.ParseCtx(ctx, nil, source)
	t.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	root := st.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse error: empty tree")
	}
	return convert(root, "", source), nil
}

func convert(n *sitter.Node, field string, src []byte) *Node {
	kind := n.Type()
	if r, ok := renamed[kind]; ok {
		kind = r
	}
	el := Element{
		Kind:  kind,
		Field: field,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}

	switch {
	case n.IsMissing():
		el.Kind = KindMissing
		return tree.New(el)
	case kind == "namespace_function_or_const":
		el.Kind = n.Content(src)
		el.Text = el.Kind
		return tree.New(el)
	case leafKinds[kind] || n.ChildCount() == 0:
		el.Text = n.Content(src)
		return tree.New(el)
	}

	out := tree.New(el)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() && !keywords[c.Type()] && !c.IsMissing() {
			continue
		}
		name := n.FieldNameForChild(i)
		if c.Type() == "namespace_aliasing_clause" {
			// lift the alias name into the use clause
			for j := 0; j < int(c.ChildCount()); j++ {
				if a := c.Child(j); a != nil && a.Type() == KindName {
					out.Append(convert(a, "alias", src))
				}
			}
			continue
		}
		child := convert(c, name, src)
		if out.Value.Kind == KindObjectCreation && child.Value.Kind == KindDeclarationList {
			out.Value.Kind = KindAnonymousClass
		}
		out.Append(child)
	}
	return out
}
