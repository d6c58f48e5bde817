// Package dprtlib is the core runtime library of a dynamic
// data-dependence profiler: it ingests an instrumentation call stream
// (reads, writes, declarations, allocations, function/loop scope
// changes) and produces, at program termination, a dependence report
// plus loop, function, and allocation metadata.
//
// Because the instrumented program's calls carry no handle parameter,
// the runtime is a process-wide singleton, lazily initialized on first
// call and guarded by an atomic flag to avoid module-initialization
// order hazards.
package dprtlib

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/joeycumines/go-dprtlib/chunk"
	"github.com/joeycumines/go-dprtlib/config"
	"github.com/joeycumines/go-dprtlib/dependence"
	"github.com/joeycumines/go-dprtlib/internal/obslog"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/scope"
	"github.com/joeycumines/go-dprtlib/sink"
)

// engine holds all process-wide runtime state: the scope managers, the
// chunk pipeline, and the per-worker analyzers the pipeline's consumers
// are bound to.
type engine struct {
	// callMu serializes every instrumentation call (pthread
	// compatibility mode is always on; there is no switch to disable
	// it), reducing a multi-threaded instrumented program's producer
	// side back to a single logical producer. It is always held across
	// the full body of a call, per the pthread-compatibility contract.
	callMu sync.Mutex

	cfg       config.Config
	decode    atomic.Pointer[lid.Decoder]
	sinkMaker func(cfg config.Config) (sink.Sink, error)

	pipeline  chunk.Engine
	analyzers []*dependence.Analyzer

	loops     *scope.LoopManager
	functions *scope.FunctionManager
	memory    *scope.MemoryManager

	startedAt time.Time

	inited     atomic.Bool
	terminated atomic.Bool
}

var (
	initOnce sync.Once
	global   *engine
)

// current returns the process-wide engine, lazily initializing it (and
// best-effort configuring process-wide resource limits) on first call.
// The double-checked atomic flag exists only to make the lazy-init path
// cheap on every call after the first; initOnce still does the actual
// one-time work under a lock.
func current() *engine {
	if global == nil || !global.inited.Load() {
		initOnce.Do(initGlobal)
	}
	return global
}

func initGlobal() {
	// Best-effort container-aware resource tuning, mirroring the ambient
	// tuning pattern a production Go service applies before doing
	// anything else: automaxprocs (blank-imported above) has already
	// adjusted GOMAXPROCS to the visible CPU quota by the time this
	// runs; automemlimit adjusts GOMEMLIMIT similarly. Both are no-ops
	// outside a cgroup-constrained environment.
	if _, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.FromCgroup),
	); err != nil {
		obslog.L().Debug().Err(err).Msg("automemlimit: no cgroup memory limit detected")
	}

	cfg := config.Load()
	obslog.Configure(os.Stderr, cfg.Verbose)

	e := &engine{
		cfg:       cfg,
		sinkMaker: defaultSinkMaker,
		loops:     scope.NewLoopManager(),
		functions: scope.NewFunctionManager(),
		memory:    scope.NewMemoryManager(),
		startedAt: time.Now(),
	}
	e.decode.Store(decoderPtr(lid.LineDecoder{Table: map[uint32]string{}}))

	e.pipeline = newPipeline(cfg, e)

	global = e
	e.inited.Store(true)
}

func decoderPtr(d lid.Decoder) *lid.Decoder { return &d }

func defaultSinkMaker(cfg config.Config) (sink.Sink, error) {
	return sink.NewTextSink(cfg.ProfilerDir, "dependences.txt")
}

// newPipeline builds the chunk pipeline (or the inline single-threaded
// mode when cfg.NumWorkers == 0), allocating one Shadow Memory and one
// Analyzer per shard and recording them on e.analyzers so Finalize can
// merge across all of them.
func newPipeline(cfg config.Config, e *engine) chunk.Engine {
	backend := shadowBackend(cfg.ShadowBackend)

	if cfg.NumWorkers <= 0 {
		a := dependence.NewAnalyzer(newShadow(backend, cfg.ShadowLeafBits))
		e.analyzers = []*dependence.Analyzer{a}
		return chunk.NewInlinePipeline(a.Analyze)
	}

	e.analyzers = make([]*dependence.Analyzer, cfg.NumWorkers)
	return chunk.NewPipeline(cfg.NumWorkers, cfg.ChunkSize, cfg.QueueCapacity, func(workerID int) chunk.Consumer {
		a := dependence.NewAnalyzer(newShadow(backend, cfg.ShadowLeafBits))
		e.analyzers[workerID] = a
		return a.Analyze
	})
}

// SetDecoder installs the LID decoder used to render output, replacing
// the default (a lid.LineDecoder with an empty table, which renders every
// LID as a placeholder). The instrumentation collaborator supplies this;
// call it any time before Finalize.
func SetDecoder(d lid.Decoder) {
	current().decode.Store(decoderPtr(d))
}

// SetSink overrides the default TextSink with a caller-supplied Sink
// factory, invoked once at Finalize. Call it any time before Finalize.
func SetSink(maker func(cfg config.Config) (sink.Sink, error)) {
	current().sinkMaker = maker
}

// resetForTest discards the process-wide engine so the next call to
// current() re-initializes from scratch. The production runtime never
// calls this (there is exactly one profiling run per process); it exists
// solely so this package's own tests can exercise more than one
// lifecycle in a single test binary.
func resetForTest() {
	initOnce = sync.Once{}
	global = nil
}
