package tree

// Visitor receives callbacks during a depth-first traversal.
//
// PreOrder is called before a node's children and reports whether to descend.
// InOrder is called after each child with the index of the finished child.
// PostOrder is called once all descendants have been visited. PostOrder is
// still called for a node whose PreOrder declined descent.
type Visitor[T any] interface {
	PreOrder(n *Node[T]) bool
	InOrder(n *Node[T], childIndex int)
	PostOrder(n *Node[T])
}

// Base implements Visitor with the default behaviour: descend always, do nothing.
// Embed it to override only the callbacks you need.
type Base[T any] struct{}

func (Base[T]) PreOrder(*Node[T]) bool { return true }
func (Base[T]) InOrder(*Node[T], int)  {}
func (Base[T]) PostOrder(*Node[T])     {}

// Funcs adapts plain functions to a Visitor. Nil fields behave like Base.
type Funcs[T any] struct {
	Pre  func(n *Node[T]) bool
	In   func(n *Node[T], childIndex int)
	Post func(n *Node[T])
}

func (f Funcs[T]) PreOrder(n *Node[T]) bool {
	if f.Pre == nil {
		return true
	}
	return f.Pre(n)
}

func (f Funcs[T]) InOrder(n *Node[T], childIndex int) {
	if f.In != nil {
		f.In(n, childIndex)
	}
}

func (f Funcs[T]) PostOrder(n *Node[T]) {
	if f.Post != nil {
		f.Post(n)
	}
}
