package scope

import (
	"fmt"
	"io"

	"github.com/joeycumines/go-dprtlib/lid"
)

// Allocation is a tracked region of memory, created by an alloc/new-element
// hook and destroyed when its containing scope exits (stack) or an
// explicit free arrives (heap).
type Allocation struct {
	AAVar             string
	Base              uint64
	Size              uint64
	AllocatingLID     lid.LID
	IsStack           bool
	ScopeDepthAtAlloc int
}

// End returns the exclusive upper bound of the allocation's range.
func (a *Allocation) End() uint64 { return a.Base + a.Size }

func allocLess(a, b *Allocation) bool { return a.Base < b.Base }

// stackFrame tracks the address range spanned by stack allocations made
// since the matching PushStackFrame call.
type stackFrame struct {
	low, high uint64
	hasRange  bool
}

// MemoryManager tracks allocations as an interval map from [base,
// base+size) to Allocation, plus the stack-frame address ranges needed
// to synthesize stack-clear accesses on function exit.
type MemoryManager struct {
	allocations *orderedSlice[*Allocation]
	byBase      map[uint64]*Allocation
	stackFrames []stackFrame
	depth       int
}

// NewMemoryManager constructs an empty MemoryManager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		allocations: newOrderedSlice[*Allocation](allocLess),
		byBase:      make(map[uint64]*Allocation),
	}
}

// RecordAlloc registers a new tracked allocation.
func (m *MemoryManager) RecordAlloc(aaVar string, base, size uint64, allocLID lid.LID, isStack bool) *Allocation {
	if prior, ok := m.byBase[base]; ok {
		// a re-declaration or re-allocation at an address already tracked
		// (e.g. a loop-local variable declared once per iteration): drop
		// the stale entry first so byBase and the ordered slice never hold
		// two allocations sharing a base.
		m.removeAllocation(prior)
	}

	alloc := &Allocation{
		AAVar:             aaVar,
		Base:              base,
		Size:              size,
		AllocatingLID:     allocLID,
		IsStack:           isStack,
		ScopeDepthAtAlloc: m.depth,
	}
	idx := m.allocations.Search(alloc)
	m.allocations.Insert(idx, alloc)
	m.byBase[base] = alloc

	if isStack && len(m.stackFrames) > 0 {
		top := &m.stackFrames[len(m.stackFrames)-1]
		end := base + size
		if !top.hasRange {
			top.low, top.high, top.hasRange = base, end, true
		} else {
			if base < top.low {
				top.low = base
			}
			if end > top.high {
				top.high = end
			}
		}
	}

	return alloc
}

// RecordFree removes the allocation based at addr, if tracked. Freeing
// an address that isn't a tracked allocation base is a no-op (the
// producer may issue frees for untracked/pre-existing memory).
func (m *MemoryManager) RecordFree(addr uint64) {
	alloc, ok := m.byBase[addr]
	if !ok {
		return
	}
	m.removeAllocation(alloc)
}

func (m *MemoryManager) removeAllocation(alloc *Allocation) {
	idx := m.allocations.Search(alloc)
	for idx < m.allocations.Len() && m.allocations.Get(idx) != alloc {
		idx++
	}
	if idx < m.allocations.Len() {
		m.allocations.RemoveAt(idx)
	}
	delete(m.byBase, alloc.Base)
}

// PushStackFrame begins tracking a new function-local stack scope.
func (m *MemoryManager) PushStackFrame() {
	m.stackFrames = append(m.stackFrames, stackFrame{})
}

// PopLastStackAddress pops the innermost stack frame, returning the
// address range ([low, high)) spanned by stack allocations made within
// it so the caller can synthesize stack-clear accesses evicting those
// addresses from shadow memory. Returns (0, 0) if the frame never saw a
// stack allocation.
func (m *MemoryManager) PopLastStackAddress() (low, high uint64) {
	if len(m.stackFrames) == 0 {
		return 0, 0
	}
	n := len(m.stackFrames) - 1
	frame := m.stackFrames[n]
	m.stackFrames = m.stackFrames[:n]
	return frame.low, frame.high
}

// LeaveScope evicts tracked stack allocations made within the
// departing scope (kind is "function" or "loop", carried for
// diagnostics/logging symmetry with the C++ original, which branches on
// it) and decrements the scope depth counter. Heap allocations persist
// regardless of scope depth: they are only removed by an explicit
// RecordFree.
func (m *MemoryManager) LeaveScope(kind string, departingLID lid.LID) {
	_ = kind // retained for parity with the C++ leave_scope(kind, lid) signature
	_ = departingLID

	depth := m.depth
	var toRemove []*Allocation
	for i := 0; i < m.allocations.Len(); i++ {
		a := m.allocations.Get(i)
		if a.IsStack && a.ScopeDepthAtAlloc >= depth {
			toRemove = append(toRemove, a)
		}
	}
	for _, a := range toRemove {
		m.removeAllocation(a)
	}

	if m.depth > 0 {
		m.depth--
	}
}

// EnterScope increments the scope depth counter, the mirror of
// LeaveScope, called on function entry.
func (m *MemoryManager) EnterScope() {
	m.depth++
}

// Lookup returns the AAVar of the allocation whose range contains addr,
// and whether one was found. O(log n) via binary search over the
// base-address-ordered allocation table.
func (m *MemoryManager) Lookup(addr uint64) (aaVar string, ok bool) {
	// find the first allocation with Base > addr, then step back one.
	idx := m.allocations.Search(&Allocation{Base: addr + 1})
	if idx == 0 {
		return "", false
	}
	candidate := m.allocations.Get(idx - 1)
	if addr >= candidate.Base && addr < candidate.End() {
		return candidate.AAVar, true
	}
	return "", false
}

// ResolveVarName returns the allocation's AAVar if addr hits a tracked
// region, else fallback (typically the variable's source-level name).
func (m *MemoryManager) ResolveVarName(fallback string, addr uint64) string {
	if aa, ok := m.Lookup(addr); ok {
		return aa
	}
	return fallback
}

// OutputMemoryRegions writes the canonical allocation report: one line
// per tracked allocation, "aa_var\tstart_addr\tend_addr\tallocating_lid".
func (m *MemoryManager) OutputMemoryRegions(w io.Writer, decode lid.Decoder) error {
	for i := 0; i < m.allocations.Len(); i++ {
		a := m.allocations.Get(i)
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", a.AAVar, a.Base, a.End(), decode.Decode(a.AllocatingLID)); err != nil {
			return err
		}
	}
	return nil
}

// Allocations returns a snapshot of all tracked allocations, ordered by
// base address, for tests and diagnostics.
func (m *MemoryManager) Allocations() []*Allocation {
	out := make([]*Allocation, m.allocations.Len())
	copy(out, m.allocations.Slice())
	return out
}
