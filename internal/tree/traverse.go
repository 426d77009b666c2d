package tree

import "context"

// Traverse walks root depth-first, left to right, driving v.
//
// Cancellation of ctx is checked before every callback. Once ctx is done no
// further callbacks fire and Traverse returns ctx.Err().
func Traverse[T any](ctx context.Context, root *Node[T], v Visitor[T]) error {
	if root == nil {
		return nil
	}
	t := &traversal[T]{ctx: ctx, v: v}
	t.visit(root)
	return t.err
}

type traversal[T any] struct {
	ctx context.Context
	v   Visitor[T]
	err error
}

func (t *traversal[T]) cancelled() bool {
	if t.err != nil {
		return true
	}
	if err := t.ctx.Err(); err != nil {
		t.err = err
		return true
	}
	return false
}

func (t *traversal[T]) visit(n *Node[T]) bool {
	if t.cancelled() {
		return false
	}
	if t.v.PreOrder(n) {
		for i, c := range n.children {
			if !t.visit(c) {
				return false
			}
			if t.cancelled() {
				return false
			}
			t.v.InOrder(n, i)
		}
	}
	if t.cancelled() {
		return false
	}
	t.v.PostOrder(n)
	return true
}

// Walk is Traverse without cancellation using plain pre and post functions.
// Either function may be nil.
func Walk[T any](root *Node[T], pre func(*Node[T]) bool, post func(*Node[T])) {
	_ = Traverse(context.Background(), root, Funcs[T]{Pre: pre, Post: post})
}
