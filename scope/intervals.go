package scope

import "sort"

// orderedSlice is a sorted, amortized-growth slice used by MemoryManager
// to keep Allocation entries ordered by base address for O(log n) lookup.
// It is adapted from the catrate package's ringBuffer: the same
// Len/Get/Search/Insert shape, but generalized from a fixed-capacity FIFO
// ring (append-at-tail, evict-from-head) to a plain growable ordered
// slice, because allocations are freed in arbitrary order (a heap free
// may arrive for any live allocation, not just the oldest), which the
// ring buffer's RemoveBefore(index) prefix-only eviction cannot express.
type orderedSlice[E any] struct {
	s    []E
	less func(a, b E) bool
}

func newOrderedSlice[E any](less func(a, b E) bool) *orderedSlice[E] {
	return &orderedSlice[E]{less: less}
}

func (x *orderedSlice[E]) Len() int { return len(x.s) }

func (x *orderedSlice[E]) Get(i int) E { return x.s[i] }

// Search returns the index of the first element not less than value,
// per the same convention as sort.Search / catrate's ringBuffer.Search.
func (x *orderedSlice[E]) Search(value E) int {
	return sort.Search(len(x.s), func(i int) bool {
		return !x.less(x.s[i], value)
	})
}

// Insert places value at index, shifting subsequent elements right.
func (x *orderedSlice[E]) Insert(index int, value E) {
	var zero E
	x.s = append(x.s, zero)
	copy(x.s[index+1:], x.s[index:])
	x.s[index] = value
}

// RemoveAt deletes the element at index.
func (x *orderedSlice[E]) RemoveAt(index int) {
	copy(x.s[index:], x.s[index+1:])
	var zero E
	x.s[len(x.s)-1] = zero
	x.s = x.s[:len(x.s)-1]
}

// Slice returns the elements in order, for iteration/output.
func (x *orderedSlice[E]) Slice() []E {
	return x.s
}
