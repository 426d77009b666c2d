package syntax

import (
	"strings"

	"github.com/dshills/phpsymbols/internal/tree"
)

// N builds an inner node of kind with children
func N(kind string, children ...*Node) *Node {
	return tree.New(Element{Kind: kind}, children...)
}

// L builds a leaf of kind holding text
func L(kind, text string) *Node {
	return tree.New(Element{Kind: kind, Text: text})
}

// F stores n under field and returns it
func F(field string, n *Node) *Node {
	n.Value.Field = field
	return n
}

// Name builds a name leaf
func Name(text string) *Node { return L(KindName, text) }

// Var builds a variable_name leaf; text includes the leading $
func Var(text string) *Node { return L(KindVariableName, text) }

// Type builds a named_type leaf
func Type(text string) *Node { return L(KindNamedType, text) }

// Comment builds a comment leaf
func Comment(text string) *Node { return L(KindComment, text) }

// Layout assigns byte offsets to a hand-built tree by locating each leaf's
// text in src, in order. Inner nodes span their children. Leaves whose text
// cannot be found are given an empty range at the current position.
func Layout(root *Node, src string) *Node {
	cursor := 0
	var place func(n *Node)
	place = func(n *Node) {
		if n.IsLeaf() {
			n.Value.Start, n.Value.End = cursor, cursor
			if n.Value.Text == "" {
				return
			}
			if i := strings.Index(src[cursor:], n.Value.Text); i >= 0 {
				n.Value.Start = cursor + i
				n.Value.End = n.Value.Start + len(n.Value.Text)
				cursor = n.Value.End
			}
			return
		}
		for _, c := range n.Children() {
			place(c)
		}
		kids := n.Children()
		if len(kids) == 0 {
			n.Value.Start, n.Value.End = cursor, cursor
			return
		}
		n.Value.Start = kids[0].Value.Start
		n.Value.End = kids[len(kids)-1].Value.End
	}
	if root != nil {
		place(root)
		if root.Value.Kind == KindProgram {
			root.Value.Start, root.Value.End = 0, len(src)
		}
	}
	return root
}
