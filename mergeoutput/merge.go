// Package mergeoutput unions the per-worker dependence maps produced by
// package dependence into one finalize-time report, re-resolving each
// dependence's allocation tag against the final Memory Manager and
// ordering it for output.
package mergeoutput

import (
	"sort"

	"github.com/joeycumines/go-dprtlib/dependence"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/scope"
)

// Report is the finalized, ordered dependence set ready for a sink.
type Report struct {
	// SinkLIDs are the distinct sink LIDs with at least one dependence,
	// in ascending order.
	SinkLIDs []lid.LID
	// Dependences maps each sink LID to its dependences, each bucket
	// already sorted ascending by (kind, source LID, var name).
	Dependences map[lid.LID][]dependence.Dependence
}

// Merge unions workers' per-shard dependence maps into one Report,
// deduplicating equal dependences across shards, re-resolving AAVar
// against mem (the Memory Manager's state at the end of the run), and
// ordering sink LIDs and each bucket's dependences ascending.
func Merge(workers []*dependence.Map, mem *scope.MemoryManager) Report {
	merged := dependence.NewMap()
	for _, m := range workers {
		merged.Merge(m)
	}

	rep := Report{Dependences: make(map[lid.LID][]dependence.Dependence)}
	for _, sinkLID := range merged.SinkLIDs() {
		items := merged.Get(sinkLID).Items()
		if mem != nil {
			for i := range items {
				items[i].AAVar = mem.ResolveVarName(items[i].AAVar, items[i].Addr)
			}
		}
		rep.SinkLIDs = append(rep.SinkLIDs, sinkLID)
		rep.Dependences[sinkLID] = items
	}
	sort.Slice(rep.SinkLIDs, func(i, j int) bool { return rep.SinkLIDs[i] < rep.SinkLIDs[j] })

	return rep
}
