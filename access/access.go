// Package access models the Access Record: the event value carried
// through the chunk pipeline from the instrumented program's producer
// side to an analysis worker. Records are created by the producer,
// consumed exactly once by their assigned worker, and never outlive
// their owning Chunk.
package access

import "github.com/joeycumines/go-dprtlib/lid"

// Record is a single instrumented memory access, or a synthesized
// stack-clear purge.
type Record struct {
	// IsRead distinguishes a read access from a write access. Ignored
	// when IsStackClear is set.
	IsRead bool

	// IsStackClear marks this record as a synthesized purge rather than
	// a real access: the analyzer removes any shadow entry at Addr
	// instead of analyzing it, and none of the other fields besides Addr
	// are consulted. Emitted when a function's stack frame goes out of
	// scope, so a later unrelated local variable reusing the same
	// address doesn't inherit a stale dependence.
	IsStackClear bool

	// Skip suppresses dependence emission for this access (the hybrid
	// analysis hint) without suppressing the shadow memory update: a
	// skipped record is still visible to later accesses as a prior
	// reader/writer, but it never itself appears as the sink of an
	// emitted dependence, nor is it resolved as the source of one for
	// the record that shadowed it (no dependence is emitted when either
	// the current access or the shadowed access is flagged skip).
	Skip bool

	// LID is the source location of this access. Declaration hooks
	// conventionally use lid.StackClear (0) here, matching skip=true,
	// since a declaration never itself becomes a reportable sink.
	LID lid.LID

	// VarName is the interned (pointer-stable) source-level variable
	// name, owned by the instrumenter and valid for the program's
	// lifetime. Dependence ordering relies on comparing this pointer,
	// not the string contents — see package dependence.
	VarName *string

	// AAVar is the allocation-scoped ("anti-aliased") variable tag
	// resolved from the Memory Manager at record time. It may be
	// rewritten by the merge step if the allocation wasn't tracked yet
	// when the record was produced.
	AAVar string

	// Addr is the memory address accessed.
	Addr uint64

	// FrozenIteration holds the three innermost loop iteration counters
	// as observed at the moment this record was produced: shadow memory
	// lives entirely on the worker side, one shard per goroutine, so the
	// producer freezes the iteration signature here rather than leaving
	// the worker to consult live Loop Manager state it has no access to.
	FrozenIteration [3]uint32

	// WorkerHint caches the address-hashed worker id computed by the
	// producer, so a record replayed for diagnostics doesn't need to
	// recompute it.
	WorkerHint int
}

// WorkerID computes the deterministic shard for addr: all accesses to
// the same address are serialized onto a single worker, so dependences
// on that address are detected without inter-worker synchronization.
func WorkerID(addr uint64, numWorkers int) int {
	if numWorkers <= 0 {
		return 0
	}
	return int(((addr &^ 3) >> 2) % uint64(numWorkers))
}
