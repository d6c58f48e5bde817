package dependence

import "github.com/joeycumines/go-dprtlib/lid"

// Map is a worker-local LID → Set keyed dependence map. Each analysis
// worker owns exactly one Map; merge unions multiple workers' Maps into
// the final report.
type Map struct {
	buckets map[lid.LID]*Set
}

// NewMap constructs an empty Map.
func NewMap() *Map {
	return &Map{buckets: make(map[lid.LID]*Set)}
}

// Insert adds d into the bucket keyed by d.SinkLID, creating it if
// necessary.
func (m *Map) Insert(d Dependence) {
	s, ok := m.buckets[d.SinkLID]
	if !ok {
		s = NewSet()
		m.buckets[d.SinkLID] = s
	}
	s.Insert(d)
}

// Get returns the Set for sinkLID, or nil if no dependence has been
// recorded for that sink.
func (m *Map) Get(sinkLID lid.LID) *Set {
	return m.buckets[sinkLID]
}

// SinkLIDs returns every sink LID with at least one recorded Dependence.
func (m *Map) SinkLIDs() []lid.LID {
	out := make([]lid.LID, 0, len(m.buckets))
	for k := range m.buckets {
		out = append(out, k)
	}
	return out
}

// Merge unions other into m, in place.
func (m *Map) Merge(other *Map) {
	if other == nil {
		return
	}
	for sinkLID, set := range other.buckets {
		target, ok := m.buckets[sinkLID]
		if !ok {
			target = NewSet()
			m.buckets[sinkLID] = target
		}
		target.Merge(set)
	}
}
