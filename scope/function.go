package scope

import (
	"fmt"
	"io"
	"sort"

	"github.com/joeycumines/go-dprtlib/lid"
)

// FunctionFrame represents one active call, pushed on
// function entry and popped on function exit. Stack address-range
// tracking lives on MemoryManager's stack-frame stack rather than here
// (see DESIGN.md): the two were merged to avoid tracking the same
// [low, high) range in two places with no way to keep them consistent.
type FunctionFrame struct {
	FuncLID       lid.LID
	ChildCallFlag bool
}

// FunctionManager maintains the runtime call stack, depth, and the
// entry/exit LID census needed for output_functions.
type FunctionManager struct {
	stack            []FunctionFrame
	entryLIDs        map[lid.LID]struct{}
	exitLIDs         map[lid.LID]struct{}
	lastCallOrInvoke lid.LID
	lastProcessed    lid.LID
}

// NewFunctionManager constructs an empty FunctionManager, with the
// runtime call depth starting at -1.
func NewFunctionManager() *FunctionManager {
	return &FunctionManager{
		entryLIDs: make(map[lid.LID]struct{}),
		exitLIDs:  make(map[lid.LID]struct{}),
	}
}

// Enter pushes a new Function Frame for a call to the function at lid.
func (m *FunctionManager) Enter(l lid.LID) {
	m.stack = append(m.stack, FunctionFrame{FuncLID: l})
	m.entryLIDs[l] = struct{}{}
}

// Exit pops the current Function Frame. isExit distinguishes a normal
// return (false) from a synthesized unwinding exit, e.g. one generated by
// Finalize (true); only normal returns are recorded into the exit-LID
// census, matching the original runtime's endFuncs bookkeeping.
func (m *FunctionManager) Exit(l lid.LID, isExit bool) {
	if len(m.stack) > 0 {
		m.stack = m.stack[:len(m.stack)-1]
	}
	m.lastCallOrInvoke = 0
	m.lastProcessed = l
	if !isExit {
		m.exitLIDs[l] = struct{}{}
	}
}

// Call records that the current frame issued a call or invoke at l,
// clearing on the next declaration via ResetCall. This is the
// bookkeeping behind the `call(lid)` instrumentation hook.
func (m *FunctionManager) Call(l lid.LID) {
	m.lastCallOrInvoke = l
	if len(m.stack) > 0 {
		m.stack[len(m.stack)-1].ChildCallFlag = true
	}
}

// ResetCall clears the stale call marker, called from the declaration
// hook: a declaration can only be reached once any pending call has
// returned, so any leftover "last call" marker is stale.
func (m *FunctionManager) ResetCall(l lid.LID) {
	m.lastCallOrInvoke = 0
	m.lastProcessed = l
}

// LastCallOrInvoke returns the LID of the most recent unresolved call or
// invoke, or 0 if none is pending.
func (m *FunctionManager) LastCallOrInvoke() lid.LID { return m.lastCallOrInvoke }

// GetCurrentStackLevel returns the runtime call depth: -1 when no
// function is active, 0 for the outermost active call, and so on.
func (m *FunctionManager) GetCurrentStackLevel() int { return len(m.stack) - 1 }

// TopFuncLID returns the LID of the innermost active function frame, and
// whether one exists.
func (m *FunctionManager) TopFuncLID() (lid.LID, bool) {
	if len(m.stack) == 0 {
		return 0, false
	}
	return m.stack[len(m.stack)-1].FuncLID, true
}

// OutputFunctions writes the function census: every observed entry LID
// and exit LID, one per line, tagged ENTRY or EXIT. Each set is sorted by
// LID so two runs over the same trace produce byte-identical output
// regardless of map iteration order.
func (m *FunctionManager) OutputFunctions(w io.Writer, decode lid.Decoder) error {
	entries := sortedLIDs(m.entryLIDs)
	exits := sortedLIDs(m.exitLIDs)

	for _, l := range entries {
		if _, err := fmt.Fprintf(w, "ENTRY\t%s\n", decode.Decode(l)); err != nil {
			return err
		}
	}
	for _, l := range exits {
		if _, err := fmt.Fprintf(w, "EXIT\t%s\n", decode.Decode(l)); err != nil {
			return err
		}
	}
	return nil
}

func sortedLIDs(set map[lid.LID]struct{}) []lid.LID {
	out := make([]lid.LID, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
