package tree

// Find returns the first node in breadth-first order that satisfies pred,
// starting with root itself.
func Find[T any](root *Node[T], pred func(*Node[T]) bool) *Node[T] {
	if root == nil {
		return nil
	}
	queue := []*Node[T]{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if pred(n) {
			return n
		}
		queue = append(queue, n.children...)
	}
	return nil
}

// FindAll returns every node satisfying pred in depth-first pre-order
func FindAll[T any](root *Node[T], pred func(*Node[T]) bool) []*Node[T] {
	var out []*Node[T]
	Walk(root, func(n *Node[T]) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	}, nil)
	return out
}

// FindAncestor walks parent links upward from n's parent and returns the first
// ancestor satisfying pred, or nil once the root has been passed.
func FindAncestor[T any](n *Node[T], pred func(*Node[T]) bool) *Node[T] {
	if n == nil {
		return nil
	}
	for p := n.parent; p != nil; p = p.parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// Closest is FindAncestor that also considers n itself
func Closest[T any](n *Node[T], pred func(*Node[T]) bool) *Node[T] {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	return FindAncestor(n, pred)
}

// Ancestors returns the chain of ancestors from n's parent up to the root
func Ancestors[T any](n *Node[T]) []*Node[T] {
	var out []*Node[T]
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}
