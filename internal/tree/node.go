// Package tree provides a generic ordered tree with visitor-driven traversal.
//
// Children are owned by their parent. The parent link is an observer used for
// ancestor queries only.
package tree

// Node is a tree node holding a value and an ordered list of owned children
type Node[T any] struct {
	Value T

	children []*Node[T]
	parent   *Node[T]
	index    int
}

// New creates a node with the given value and children
func New[T any](value T, children ...*Node[T]) *Node[T] {
	n := &Node[T]{Value: value, index: -1}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Append adds child as the last child of n.
// A node can only be owned by one parent; appending an attached node panics.
func (n *Node[T]) Append(child *Node[T]) {
	if child == nil {
		return
	}
	if child.parent != nil {
		panic("tree: node already has a parent")
	}
	child.parent = n
	child.index = len(n.children)
	n.children = append(n.children, child)
}

// Children returns the ordered children of n. The slice must not be modified.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// Len returns the number of children
func (n *Node[T]) Len() int {
	return len(n.children)
}

// Child returns the i-th child or nil when out of range
func (n *Node[T]) Child(i int) *Node[T] {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Parent returns the parent node, or nil for a root
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Index returns the position of n among its siblings, -1 for a root
func (n *Node[T]) Index() int {
	if n.parent == nil {
		return -1
	}
	return n.index
}

// PrevSibling returns the sibling immediately before n
func (n *Node[T]) PrevSibling() *Node[T] {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index - 1)
}

// NextSibling returns the sibling immediately after n
func (n *Node[T]) NextSibling() *Node[T] {
	if n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index + 1)
}

// IsLeaf reports whether n has no children
func (n *Node[T]) IsLeaf() bool {
	return len(n.children) == 0
}

// Depth returns the number of ancestors of n
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Root returns the topmost ancestor of n
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}
