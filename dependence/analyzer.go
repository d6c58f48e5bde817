package dependence

import (
	"github.com/joeycumines/go-dprtlib/access"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/shadowmem"
)

// Analyzer performs the single-access dependence analysis for one shard.
// It owns one Shadow Memory instance and one dependence Map, and is
// single-threaded: exactly one analysis worker drives it, over the
// chunks assigned to that worker's shard.
type Analyzer struct {
	Shadow shadowmem.Shadow
	Deps   *Map

	// skipRead/skipWrite track, per address, whether the entry currently
	// held in Shadow's read/write signature was produced by a skip-
	// flagged record. Shadow's own contract has no room for this bit (it
	// stores only a packed signature), so the Analyzer keeps it
	// alongside as per-worker bookkeeping: an emittable dependence
	// source must be neither the current access nor the shadowed one
	// flagged skip.
	skipRead  map[uint64]bool
	skipWrite map[uint64]bool
}

// NewAnalyzer constructs an Analyzer over the given Shadow, with a fresh
// dependence Map.
func NewAnalyzer(shadow shadowmem.Shadow) *Analyzer {
	return &Analyzer{
		Shadow:    shadow,
		Deps:      NewMap(),
		skipRead:  make(map[uint64]bool),
		skipWrite: make(map[uint64]bool),
	}
}

// Analyze processes one Access Record, probing and updating shadow
// memory, and inserting any emitted Dependence into the worker-local Map
// keyed by the access's own LID (the sink).
func (a *Analyzer) Analyze(rec access.Record) {
	if rec.IsStackClear {
		// a synthesized stack-clear access: purge both signatures at this
		// address rather than analyzing it as a real access. A departing
		// stack frame's addresses are about to be reused by an unrelated
		// local variable, so any shadowed reader/writer at this address
		// must stop being visible to future accesses.
		a.Shadow.RemoveRead(rec.Addr)
		a.Shadow.RemoveWrite(rec.Addr)
		delete(a.skipRead, rec.Addr)
		delete(a.skipWrite, rec.Addr)
		return
	}

	frozen := rec.FrozenIteration
	sig := lid.Pack(rec.LID, frozen[0], frozen[1], frozen[2])

	if rec.IsRead {
		prevW := a.Shadow.TestWrite(rec.Addr)
		if prevW.Present() && !rec.Skip && !a.skipWrite[rec.Addr] {
			a.emit(classify(RAW, sig, prevW), rec, prevW.LID())
		}
		// last-writer-wins policy for read tracking: only the most
		// recent read matters for a subsequent WAR, so overwrite rather
		// than merge.
		a.Shadow.UpdateRead(rec.Addr, sig)
		a.skipRead[rec.Addr] = rec.Skip
		return
	}

	prevW := a.Shadow.TestWrite(rec.Addr)
	prevR := a.Shadow.TestRead(rec.Addr)

	if prevR.Present() && !rec.Skip && !a.skipRead[rec.Addr] {
		a.emit(classify(WAR, sig, prevR), rec, prevR.LID())
	}
	if prevW.Present() && !rec.Skip && !a.skipWrite[rec.Addr] {
		a.emit(classify(WAW, sig, prevW), rec, prevW.LID())
	}
	if !prevW.Present() && !prevR.Present() && !rec.Skip {
		a.emit(INIT, rec, lid.StackClear)
	}

	a.Shadow.UpdateWrite(rec.Addr, sig)
	a.skipWrite[rec.Addr] = rec.Skip
}

func (a *Analyzer) emit(kind Kind, rec access.Record, sourceLID lid.LID) {
	a.Deps.Insert(Dependence{
		Kind:      kind,
		SinkLID:   rec.LID,
		SourceLID: sourceLID,
		VarName:   rec.VarName,
		AAVar:     rec.AAVar,
		Addr:      rec.Addr,
	})
}

// classify selects the inter-iteration variant of base if the current
// signature's iteration counters differ from the shadowed signature's, at
// the innermost differing level; otherwise it returns base unchanged.
// Levels are checked innermost-first (level 0), matching the convention
// that RAW_II_0 names a dependence carried across the innermost enclosing
// loop.
func classify(base Kind, current, prev lid.Signature) Kind {
	for level := 0; level < 3; level++ {
		if current.Iteration(level) != prev.Iteration(level) {
			return iiVariant(base, level)
		}
	}
	return base
}
