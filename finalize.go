package dprtlib

import (
	"time"

	"github.com/joeycumines/go-dprtlib/dependence"
	"github.com/joeycumines/go-dprtlib/internal/obslog"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/mergeoutput"
)

// Finalize synthesizes exits for every still-active function frame,
// drains and joins the analysis pipeline, merges the per-worker
// dependence maps, and writes the run's output files. Called once, at
// target program termination (main's return, or an explicit exit hook);
// a second call is a silent no-op, matching the original runtime's
// double-finalize guard.
func Finalize(l lid.LID) error {
	e := current()

	e.callMu.Lock()
	if e.terminated.Load() {
		e.callMu.Unlock()
		return nil
	}

	for e.functions.GetCurrentStackLevel() >= 0 {
		e.funcExit(l, true)
	}
	// Mark terminated before releasing callMu: every instrumentation call
	// below checks this flag first and bails out as a no-op, so a
	// reentrant call arriving from another thread during the drain and
	// output-writing that follows can never reach pipeline.Submit on an
	// already-closing worker.
	e.terminated.Store(true)
	e.callMu.Unlock()

	if e.functions.GetCurrentStackLevel() != -1 {
		obslog.L().Warn().Msg("finalize: function stack not fully unwound")
	}
	if !e.loops.Empty() {
		obslog.L().Warn().Msg("finalize: loop stack not empty at program termination")
	}

	if err := e.pipeline.Finish(); err != nil {
		return err
	}

	deps := make([]*dependence.Map, 0, len(e.analyzers))
	for _, a := range e.analyzers {
		deps = append(deps, a.Deps)
	}
	report := mergeoutput.Merge(deps, e.memory)

	decode := *e.decode.Load()

	s, err := e.sinkMaker(e.cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.WriteMemoryRegions(e.memory, decode); err != nil {
		return err
	}
	if err := s.WriteLoops(e.loops, decode); err != nil {
		return err
	}
	if err := s.WriteFunctions(e.functions, decode); err != nil {
		return err
	}
	if err := s.WriteDependences(report, l, decode); err != nil {
		return err
	}

	elapsedMS := time.Since(e.startedAt).Milliseconds()
	if err := s.WriteProfilingTime(elapsedMS); err != nil {
		return err
	}

	return nil
}
