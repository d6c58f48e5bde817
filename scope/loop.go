package scope

import (
	"fmt"
	"io"
	"sort"

	"github.com/joeycumines/go-dprtlib/lid"
)

// LoopFrame represents one active loop scope, pushed on loop entry and
// popped on loop exit.
type LoopFrame struct {
	LoopLID        lid.LID
	Iteration      uint32
	FuncStackLevel int
}

// LoopManager maintains the stack of currently-executing loop scopes and
// the per-loop iteration counts observed over the run, for the census
// emitted by Output.
type LoopManager struct {
	stack   []LoopFrame
	census  map[lid.LID]uint32 // loop_lid -> observed iteration count (max seen)
	changed bool               // set by Iter, cleared by ConsumeScopeChange
}

// NewLoopManager constructs an empty LoopManager.
func NewLoopManager() *LoopManager {
	return &LoopManager{census: make(map[lid.LID]uint32)}
}

// Enter pushes a new Loop Frame with iteration 0.
func (m *LoopManager) Enter(loopLID lid.LID, funcStackLevel int) {
	m.stack = append(m.stack, LoopFrame{LoopLID: loopLID, FuncStackLevel: funcStackLevel})
	if _, ok := m.census[loopLID]; !ok {
		m.census[loopLID] = 0
	}
}

// Iter increments the top-of-stack iteration counter and marks that a
// positive scope change has occurred, observable via ConsumeScopeChange
// until the next call clears it.
func (m *LoopManager) Iter(loopLID lid.LID) {
	if len(m.stack) == 0 {
		return
	}
	top := &m.stack[len(m.stack)-1]
	top.Iteration++
	if top.Iteration > m.census[top.LoopLID] {
		m.census[top.LoopLID] = top.Iteration
	}
	m.changed = true
}

// Exit pops frames back to (and including) the matching loop.
func (m *LoopManager) Exit(loopLID lid.LID, funcStackLevel int) {
	for len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		if top.LoopLID == loopLID {
			return
		}
	}
}

// CleanFunctionExit pops all loop frames entered at function stack level
// funcStackLevel or deeper (the exiting function's loops): the recovery path for
// non-local exits (longjmp-alikes, destructor-triggered unwinding) where
// no matching Exit call will ever arrive.
func (m *LoopManager) CleanFunctionExit(funcStackLevel int, currentLID lid.LID) {
	_ = currentLID
	for len(m.stack) > 0 && m.stack[len(m.stack)-1].FuncStackLevel >= funcStackLevel {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

// CurrentIterationSignature returns the three innermost loop iteration
// counters (missing levels are zero), used to pack shadow signatures.
func (m *LoopManager) CurrentIterationSignature() [3]uint32 {
	var out [3]uint32
	for level := 0; level < 3 && level < len(m.stack); level++ {
		out[level] = m.stack[len(m.stack)-1-level].Iteration
	}
	return out
}

// ConsumeScopeChange reports whether a loop iteration has advanced since
// the last call, resetting the flag.
func (m *LoopManager) ConsumeScopeChange() bool {
	v := m.changed
	m.changed = false
	return v
}

// Empty reports whether the loop stack is empty, as expected at normal
// program termination; Finalize logs a warning when it is not.
func (m *LoopManager) Empty() bool { return len(m.stack) == 0 }

// Depth returns the current loop nesting depth.
func (m *LoopManager) Depth() int { return len(m.stack) }

// Output writes the loop census: "loop_lid\titeration_count" per loop
// ever entered, sorted by LID so two runs over the same trace produce
// byte-identical output regardless of map iteration order.
func (m *LoopManager) Output(w io.Writer, decode lid.Decoder) error {
	lids := make([]lid.LID, 0, len(m.census))
	for loopLID := range m.census {
		lids = append(lids, loopLID)
	}
	sort.Slice(lids, func(i, j int) bool { return lids[i] < lids[j] })

	for _, loopLID := range lids {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", decode.Decode(loopLID), m.census[loopLID]); err != nil {
			return err
		}
	}
	return nil
}

// Census returns a copy of the observed loop iteration counts.
func (m *LoopManager) Census() map[lid.LID]uint32 {
	out := make(map[lid.LID]uint32, len(m.census))
	for k, v := range m.census {
		out[k] = v
	}
	return out
}
