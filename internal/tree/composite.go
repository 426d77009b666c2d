package tree

// Composite runs several visitors in lock-step over one traversal.
//
// Each component decides on its own whether to descend. A component that
// declines at node n receives no callbacks for n's descendants, nor InOrder
// for n, and is reactivated when PostOrder(n) runs. The composite descends
// when at least one active component wants to.
type Composite[T any] struct {
	visitors []Visitor[T]
	// declinedAt[i] is the node where visitor i declined descent, nil while active
	declinedAt []*Node[T]
}

// NewComposite creates a composite over the given visitors
func NewComposite[T any](visitors ...Visitor[T]) *Composite[T] {
	return &Composite[T]{
		visitors:   visitors,
		declinedAt: make([]*Node[T], len(visitors)),
	}
}

// Active reports whether the i-th visitor currently receives callbacks
func (c *Composite[T]) Active(i int) bool {
	return c.declinedAt[i] == nil
}

func (c *Composite[T]) PreOrder(n *Node[T]) bool {
	descend := false
	for i, v := range c.visitors {
		if c.declinedAt[i] != nil {
			continue
		}
		if v.PreOrder(n) {
			descend = true
		} else {
			c.declinedAt[i] = n
		}
	}
	return descend
}

func (c *Composite[T]) InOrder(n *Node[T], childIndex int) {
	for i, v := range c.visitors {
		if c.declinedAt[i] == nil {
			v.InOrder(n, childIndex)
		}
	}
}

func (c *Composite[T]) PostOrder(n *Node[T]) {
	for i, v := range c.visitors {
		if c.declinedAt[i] == n {
			c.declinedAt[i] = nil
		}
		if c.declinedAt[i] == nil {
			v.PostOrder(n)
		}
	}
}
