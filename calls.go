package dprtlib

import (
	"github.com/joeycumines/go-dprtlib/access"
	"github.com/joeycumines/go-dprtlib/internal/obslog"
	"github.com/joeycumines/go-dprtlib/lid"
)

// stackWordSize is the granularity at which a departing stack frame's
// address range is purged from shadow memory: one synthesized
// stack-clear record per 4-byte-aligned word, matching the address-hash
// shard width ((addr &^ 3) >> 2), so every word routes to its correct
// worker.
const stackWordSize = 4

// Read records a read access to addr at source location l. varName is
// the interned source-level variable name (nil if unavailable); skip
// suppresses dependence emission without suppressing the shadow memory
// update, for the hybrid-analysis instrumentation mode.
func Read(l lid.LID, addr uint64, varName *string, skip bool) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.submitAccess(true, l, addr, varName, skip)
}

// Write records a write access to addr at source location l.
func Write(l lid.LID, addr uint64, varName *string, skip bool) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.submitAccess(false, l, addr, varName, skip)
}

// Decl registers a declaration: a variable coming into scope at addr,
// size bytes, tracked as a stack allocation owned by the current
// function frame. It also synthesizes the skip-flagged write Access
// Record the original runtime's declaration hook always produces (sink
// LID 0, skip=true), so a later overwrite of the same address doesn't
// mistake the declaration itself for a reportable prior writer.
func Decl(l lid.LID, addr, size uint64, varName *string) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}

	e.functions.ResetCall(l)

	name := derefOr(varName, "")
	e.memory.RecordAlloc(name, addr, size, l, true)

	rec := access.Record{
		IsRead:  false,
		Skip:    true,
		LID:     lid.StackClear,
		VarName: varName,
		AAVar:   e.memory.ResolveVarName(name, addr),
		Addr:    addr,
	}
	e.pipeline.Submit(rec)
}

// Alloc registers a heap allocation of size bytes at addr, owned by
// allocLID, tracked until a matching Free.
func Alloc(allocLID lid.LID, addr, size uint64, aaVar string) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.memory.RecordAlloc(aaVar, addr, size, allocLID, false)
}

// Free releases the heap allocation based at addr, if tracked.
func Free(addr uint64) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.memory.RecordFree(addr)
}

// Call records that the current function frame issued a call or invoke
// at l, the bookkeeping behind the original runtime's call(lid) hook.
func Call(l lid.LID) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.functions.Call(l)
}

// FuncEntry pushes a new function frame and begins tracking its stack
// allocations.
func FuncEntry(l lid.LID) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.functions.Enter(l)
	e.memory.EnterScope()
	e.memory.PushStackFrame()
}

// FuncExit pops the current function frame, purging its stack address
// range from shadow memory (one stack-clear record every stackWordSize
// bytes from the range's low bound) before the frame's scope-local
// allocations are dropped. isExit distinguishes a normal return (false,
// recorded into the exit-LID census) from a synthesized unwinding exit
// (true, e.g. one generated by Finalize).
func FuncExit(l lid.LID, isExit bool) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.funcExit(l, isExit)
}

func (e *engine) funcExit(l lid.LID, isExit bool) {
	stackLevel := e.functions.GetCurrentStackLevel()
	e.loops.CleanFunctionExit(stackLevel, l)
	e.functions.Exit(l, isExit)

	low, high := e.memory.PopLastStackAddress()
	e.clearStackAccesses(low, high)
	e.memory.LeaveScope("function", l)
}

// clearStackAccesses submits a synthesized stack-clear record for every
// word in [low, high), evicting them from shadow memory across whichever
// shard each word hashes to.
func (e *engine) clearStackAccesses(low, high uint64) {
	for addr := low; addr < high; addr += stackWordSize {
		e.pipeline.Submit(access.Record{IsStackClear: true, Addr: addr})
	}
}

// LoopEntry pushes a new loop frame at iteration 0.
func LoopEntry(l lid.LID) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.loops.Enter(l, e.functions.GetCurrentStackLevel())
}

// LoopIter advances the innermost loop's iteration counter. Later
// accesses freeze the new counter into their records, which is what
// inter-iteration dependence classification reads.
func LoopIter(l lid.LID) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.loops.Iter(l)
}

// LoopExit pops the loop frame at l.
func LoopExit(l lid.LID) {
	e := current()
	e.callMu.Lock()
	defer e.callMu.Unlock()
	if e.terminated.Load() {
		return
	}
	e.loops.Exit(l, e.functions.GetCurrentStackLevel())
}

func (e *engine) submitAccess(isRead bool, l lid.LID, addr uint64, varName *string, skip bool) {
	if e.loops.ConsumeScopeChange() {
		obslog.L().Debug().Uint64("addr", addr).Msg("loop iteration boundary crossed since last access")
	}

	rec := access.Record{
		IsRead:          isRead,
		Skip:            skip,
		LID:             l,
		VarName:         varName,
		AAVar:           e.memory.ResolveVarName(derefOr(varName, ""), addr),
		Addr:            addr,
		FrozenIteration: e.loops.CurrentIterationSignature(),
	}
	e.pipeline.Submit(rec)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
