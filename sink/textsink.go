package sink

import (
	"io"
	"os"
	"path/filepath"
)

// TextSink is the reference Sink implementation: it writes the three
// canonical plain-text files under a profiler output directory (it does
// not write the optional dependency_metadata.txt), matching the
// conventions a downstream parallelism-discovery tool expects to parse.
//
// TextSink is a usable default, not a mandated format — callers with a
// different downstream consumer can implement Sink directly.
type TextSink struct {
	*writerSink
}

// NewTextSink creates profilerDir (and its statistics/ subdirectory) if
// necessary, and opens memory_regions.txt, depsFileName (the dependence
// sink file — callers typically pass something like "dependences.txt"),
// and statistics/profiling_time.txt for writing, truncating any existing
// contents.
func NewTextSink(profilerDir, depsFileName string) (*TextSink, error) {
	if err := os.MkdirAll(filepath.Join(profilerDir, "statistics"), 0o755); err != nil {
		return nil, err
	}

	regions, err := os.Create(filepath.Join(profilerDir, "memory_regions.txt"))
	if err != nil {
		return nil, err
	}
	deps, err := os.Create(filepath.Join(profilerDir, depsFileName))
	if err != nil {
		regions.Close()
		return nil, err
	}
	timing, err := os.Create(filepath.Join(profilerDir, "statistics", "profiling_time.txt"))
	if err != nil {
		regions.Close()
		deps.Close()
		return nil, err
	}

	return &TextSink{writerSink: &writerSink{
		regions: regions,
		deps:    deps,
		timing:  timing,
		closers: []io.Closer{regions, deps, timing},
	}}, nil
}
