package index

// Compare is a three-way comparison of an element against a probe key.
// It returns a negative value when the element sorts before the probe, zero
// when it matches and a positive value when it sorts after.
type Compare[T any] func(element T) int

// BinarySearch answers ordered queries over an externally owned slice that is
// sorted ascending with respect to the comparators used.
type BinarySearch[T any] struct {
	items []T
}

// NewBinarySearch wraps sorted. The slice is referenced, not copied.
func NewBinarySearch[T any](sorted []T) BinarySearch[T] {
	return BinarySearch[T]{items: sorted}
}

// Find returns the element comparing equal to the probe
func (b BinarySearch[T]) Find(compare Compare[T]) (T, bool) {
	i := b.Rank(compare)
	if i < len(b.items) && compare(b.items[i]) == 0 {
		return b.items[i], true
	}
	var zero T
	return zero, false
}

// Rank returns the leftmost index at which an element equal to the probe
// could be inserted keeping the slice sorted.
func (b BinarySearch[T]) Rank(compare Compare[T]) int {
	return rankFrom(b.items, 0, compare)
}

// Range returns the contiguous run of elements that lie between lower and
// upper. The run starts at the rank of lower and ends before the first
// element for which upper is positive. The second search starts at the
// first result.
func (b BinarySearch[T]) Range(lower, upper Compare[T]) []T {
	start := rankFrom(b.items, 0, lower)
	end := rankFrom(b.items, start, func(element T) int {
		if upper(element) > 0 {
			return 1
		}
		return -1
	})
	return b.items[start:end]
}

// Len returns the number of elements
func (b BinarySearch[T]) Len() int {
	return len(b.items)
}

// rankFrom is a lower bound search over items[lo:]
func rankFrom[T any](items []T, lo int, compare Compare[T]) int {
	hi := len(items)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if compare(items[mid]) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
