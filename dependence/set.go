package dependence

import "sort"

// Set is an ordered, deduplicated collection of Dependence values sharing
// one sink LID, ordered by the total order in less/equalKey.
type Set struct {
	items []Dependence
}

// NewSet constructs an empty Set.
func NewSet() *Set { return &Set{} }

// Insert adds d to the set, ignoring it if an equal (by key) Dependence
// is already present. Merging a Set with itself is therefore idempotent.
func (s *Set) Insert(d Dependence) {
	idx := sort.Search(len(s.items), func(i int) bool { return !less(s.items[i], d) })
	if idx < len(s.items) && equalKey(s.items[idx], d) {
		return
	}
	s.items = append(s.items, Dependence{})
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = d
}

// Len returns the number of distinct Dependences in the set.
func (s *Set) Len() int { return len(s.items) }

// Items returns the Dependences in ascending (kind, source_lid, var)
// order.
func (s *Set) Items() []Dependence {
	return s.items
}

// Merge inserts every Dependence from other into s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		s.Insert(d)
	}
}
