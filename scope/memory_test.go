package scope

import (
	"testing"

	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/stretchr/testify/require"
)

func TestMemoryManagerLookup(t *testing.T) {
	m := NewMemoryManager()
	m.RecordAlloc("arr", 0x1000, 0x100, lid.LID(1), false)
	m.RecordAlloc("other", 0x2000, 0x50, lid.LID(2), false)

	aa, ok := m.Lookup(0x1050)
	require.True(t, ok)
	require.Equal(t, "arr", aa)

	aa, ok = m.Lookup(0x2010)
	require.True(t, ok)
	require.Equal(t, "other", aa)

	_, ok = m.Lookup(0x1100) // just past arr's end (exclusive)
	require.False(t, ok)

	_, ok = m.Lookup(0x500) // before anything
	require.False(t, ok)
}

func TestMemoryManagerResolveVarNameFallback(t *testing.T) {
	m := NewMemoryManager()
	require.Equal(t, "x", m.ResolveVarName("x", 0xdead))
}

func TestMemoryManagerRecordFree(t *testing.T) {
	m := NewMemoryManager()
	m.RecordAlloc("h", 0x3000, 0x10, lid.LID(1), false)
	_, ok := m.Lookup(0x3000)
	require.True(t, ok)

	m.RecordFree(0x3000)
	_, ok = m.Lookup(0x3000)
	require.False(t, ok)
}

func TestMemoryManagerStackFrameRange(t *testing.T) {
	m := NewMemoryManager()
	m.PushStackFrame()
	m.RecordAlloc("local1", 0x7000, 0x8, lid.LID(1), true)
	m.RecordAlloc("local2", 0x7010, 0x8, lid.LID(2), true)

	low, high := m.PopLastStackAddress()
	require.EqualValues(t, 0x7000, low)
	require.EqualValues(t, 0x7018, high)
}

func TestMemoryManagerStackFrameEmptyRange(t *testing.T) {
	m := NewMemoryManager()
	m.PushStackFrame()
	low, high := m.PopLastStackAddress()
	require.Zero(t, low)
	require.Zero(t, high)
}

func TestMemoryManagerLeaveScopeEvictsStackOnly(t *testing.T) {
	m := NewMemoryManager()
	m.EnterScope()
	m.RecordAlloc("stackvar", 0x8000, 0x8, lid.LID(1), true)
	m.RecordAlloc("heapvar", 0x9000, 0x8, lid.LID(2), false)

	m.LeaveScope("function", lid.LID(3))

	_, stackOK := m.Lookup(0x8000)
	require.False(t, stackOK, "stack allocation must be evicted on scope leave")

	_, heapOK := m.Lookup(0x9000)
	require.True(t, heapOK, "heap allocation must survive scope leave")
}

func TestMemoryManagerAllocationsNonOverlapping(t *testing.T) {
	m := NewMemoryManager()
	m.RecordAlloc("a", 0x100, 0x10, lid.LID(1), false)
	m.RecordAlloc("b", 0x200, 0x10, lid.LID(2), false)
	m.RecordAlloc("c", 0x110, 0x10, lid.LID(3), false)

	allocs := m.Allocations()
	for i := 1; i < len(allocs); i++ {
		require.Less(t, allocs[i-1].Base, allocs[i].Base)
		require.LessOrEqual(t, allocs[i-1].End(), allocs[i].Base, "ranges must not overlap")
		require.Less(t, allocs[i-1].Base, allocs[i-1].End(), "start must be < end")
	}
}
