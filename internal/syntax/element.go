// Package syntax defines the PHP syntax tree consumed by the symbol reader.
//
// The tree is a tree.Node of Element values. Kinds follow the tree-sitter PHP
// grammar; names, qualified names, variables and modifiers are leaves that
// carry their source text. A tree can be produced by the tree-sitter adapter
// or assembled by hand with the builder helpers.
package syntax

import (
	"context"
	"errors"
	"strings"

	"github.com/dshills/phpsymbols/internal/tree"
)

// Element is the value stored at every syntax node
type Element struct {
	Kind  string
	Field string // field name within the parent, empty when unnamed
	Text  string // source text, set for leaves
	Start int    // byte offset of the first byte
	End   int    // byte offset after the last byte
}

// Node is a syntax tree node
type Node = tree.Node[Element]

// Parser turns PHP source into a syntax tree
type Parser interface {
	Parse(ctx context.Context, source []byte) (*Node, error)
}

// ErrParserUnavailable is returned when no grammar is compiled in
var ErrParserUnavailable = errors.New("php parser not available in this build")

// Kind returns the kind of n, or "" for nil
func Kind(n *Node) string {
	if n == nil {
		return ""
	}
	return n.Value.Kind
}

// Is reports whether n has one of kinds
func Is(n *Node, kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Value.Kind == k {
			return true
		}
	}
	return false
}

// Text returns the text of a leaf, trimmed
func Text(n *Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Value.Text)
}

// Field returns the first child stored under field
func Field(n *Node, field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children() {
		if c.Value.Field == field {
			return c
		}
	}
	return nil
}

// First returns the first child with one of kinds
func First(n *Node, kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children() {
		if Is(c, kinds...) {
			return c
		}
	}
	return nil
}

// All returns every child with one of kinds
func All(n *Node, kinds ...string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children() {
		if Is(c, kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// Has reports whether n has a child of kind
func Has(n *Node, kind string) bool {
	return First(n, kind) != nil
}

// NameOf returns the declared name of a declaration node. It prefers the
// "name" field and falls back to the first name-like child.
func NameOf(n *Node) *Node {
	if c := Field(n, "name"); c != nil {
		return c
	}
	return First(n, KindName, KindVariableName)
}

// Contains reports whether the byte offset lies within n. The end offset is
// inclusive so a cursor just after a token still hits it.
func Contains(n *Node, offset int) bool {
	return n != nil && n.Value.Start <= offset && offset <= n.Value.End
}

// IsError reports whether n is a parser error node
func IsError(n *Node) bool {
	return Is(n, KindError, KindMissing)
}
