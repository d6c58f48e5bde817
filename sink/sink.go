// Package sink defines the contract for the finalize-time output
// formatter, the external collaborator that renders a mergeoutput.Report
// and the scope managers' census into the textual conventions a
// downstream tool expects, plus TextSink, a reference implementation of
// that contract.
package sink

import (
	"io"

	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/mergeoutput"
	"github.com/joeycumines/go-dprtlib/scope"
)

// Sink is the contract a finalize-time output formatter satisfies. The
// lifecycle controller calls each method once, in the order they appear
// here, with whatever state finalize produced. Implementations own their
// own destinations (files, buffers, network sinks); Close releases them.
type Sink interface {
	// WriteMemoryRegions emits the allocation report.
	WriteMemoryRegions(mem *scope.MemoryManager, decode lid.Decoder) error
	// WriteLoops emits the loop iteration census.
	WriteLoops(loops *scope.LoopManager, decode lid.Decoder) error
	// WriteFunctions emits the function entry/exit census.
	WriteFunctions(funcs *scope.FunctionManager, decode lid.Decoder) error
	// WriteDependences emits the merged dependence report, terminated by
	// the "<lid> END program" sentinel keyed on finalizeLID.
	WriteDependences(report mergeoutput.Report, finalizeLID lid.LID, decode lid.Decoder) error
	// WriteProfilingTime emits the elapsed wall-clock profiling duration.
	WriteProfilingTime(elapsed_ms int64) error
	// Close releases any resources the Sink opened. Safe to call once,
	// after all Write* calls have completed.
	Close() error
}

// writerSink adapts a fixed set of io.Writers to the Sink contract. It is
// unexported: constructing one requires a caller to have already decided
// where each stream goes, which is what TextSink (for a directory tree)
// and test fakes (for in-memory buffers) each do differently.
type writerSink struct {
	regions io.Writer
	deps    io.Writer
	timing  io.Writer
	closers []io.Closer
}

func (w *writerSink) WriteMemoryRegions(mem *scope.MemoryManager, decode lid.Decoder) error {
	return mem.OutputMemoryRegions(w.regions, decode)
}

func (w *writerSink) WriteLoops(loops *scope.LoopManager, decode lid.Decoder) error {
	return loops.Output(w.deps, decode)
}

func (w *writerSink) WriteFunctions(funcs *scope.FunctionManager, decode lid.Decoder) error {
	return funcs.OutputFunctions(w.deps, decode)
}

func (w *writerSink) WriteDependences(report mergeoutput.Report, finalizeLID lid.LID, decode lid.Decoder) error {
	if err := writeDependenceReport(w.deps, report, decode); err != nil {
		return err
	}
	return writeEndSentinel(w.deps, finalizeLID, decode)
}

func (w *writerSink) WriteProfilingTime(elapsedMS int64) error {
	return writeProfilingTime(w.timing, elapsedMS)
}

func (w *writerSink) Close() error {
	var firstErr error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
