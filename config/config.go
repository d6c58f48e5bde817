// Package config resolves the runtime's configuration: the environment
// variables DOT_DISCOPOP and DP_NUM_WORKERS, an optional supplementary
// TOML file for settings too numerous to comfortably carry as
// environment variables, and resource-aware defaulting of the worker
// count when none is specified.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/pbnjay/memory"
)

// Defaults for settings with no environment or file override.
const (
	DefaultDotDiscopop    = ".discopop"
	DefaultChunkSize      = 16384
	DefaultQueueCapacity  = 4
	DefaultShadowLeafBits = 16

	// perWorkerMemoryBudget is a conservative estimate of the peak
	// resident size of one worker's dense shadow memory plus its
	// dependence map, used only to cap the resource-aware default
	// worker count on memory-constrained hosts.
	perWorkerMemoryBudget = 256 << 20 // 256 MiB
)

// Config is the resolved runtime configuration.
type Config struct {
	// DotDiscopop is the root output directory (DOT_DISCOPOP, default
	// ".discopop").
	DotDiscopop string
	// ProfilerDir is $DotDiscopop/profiler, the destination for the
	// three output files the run produces (DOT_DISCOPOP_PROFILER).
	ProfilerDir string
	// NumWorkers is the analysis worker count. 0 selects the
	// single-threaded inline pipeline.
	NumWorkers int
	// ChunkSize is the number of Access Records per published Chunk.
	ChunkSize int
	// QueueCapacity bounds each worker's chunk queue, in chunks.
	QueueCapacity int
	// ShadowLeafBits sizes a Dense shadow backend's leaf blocks, as a
	// power of two.
	ShadowLeafBits uint
	// ShadowBackend selects the shadow memory backend ("dense" or
	// "sparse"). Empty defaults to "sparse", the safer choice for
	// workloads with no known address-density hint.
	ShadowBackend string
	// Verbose enables debug-level tracing in the runtime's internal
	// logger.
	Verbose bool
}

// fileConfig mirrors the subset of Config that may be supplied via the
// optional $DOT_DISCOPOP/dprtlib.toml file. Environment variables always
// take precedence over it.
type fileConfig struct {
	NumWorkers     *int    `toml:"num_workers"`
	ChunkSize      *int    `toml:"chunk_size"`
	QueueCapacity  *int    `toml:"queue_capacity"`
	ShadowLeafBits *uint   `toml:"shadow_leaf_bits"`
	ShadowBackend  *string `toml:"shadow_backend"`
	Verbose        *bool   `toml:"verbose"`
}

// Load resolves Config from the environment, then an optional
// $DOT_DISCOPOP/dprtlib.toml, then resource-aware defaults for anything
// still unset. Environment variables win over the file, which wins over
// defaults.
func Load() Config {
	c := Config{
		DotDiscopop:    envOr("DOT_DISCOPOP", DefaultDotDiscopop),
		ChunkSize:      DefaultChunkSize,
		QueueCapacity:  DefaultQueueCapacity,
		ShadowLeafBits: DefaultShadowLeafBits,
		ShadowBackend:  "sparse",
	}

	var fc fileConfig
	fileSetsWorkers := false
	path := filepath.Join(c.DotDiscopop, "dprtlib.toml")
	if _, err := toml.DecodeFile(path, &fc); err == nil {
		if fc.NumWorkers != nil {
			c.NumWorkers = *fc.NumWorkers
			fileSetsWorkers = true
		}
		if fc.ChunkSize != nil {
			c.ChunkSize = *fc.ChunkSize
		}
		if fc.QueueCapacity != nil {
			c.QueueCapacity = *fc.QueueCapacity
		}
		if fc.ShadowLeafBits != nil {
			c.ShadowLeafBits = *fc.ShadowLeafBits
		}
		if fc.ShadowBackend != nil {
			c.ShadowBackend = *fc.ShadowBackend
		}
		if fc.Verbose != nil {
			c.Verbose = *fc.Verbose
		}
	}

	if v, ok := os.LookupEnv("DP_VERBOSE"); ok {
		c.Verbose = v != "" && v != "0"
	}

	if v, ok := os.LookupEnv("DP_NUM_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumWorkers = n
		}
	} else if !fileSetsWorkers {
		c.NumWorkers = DefaultNumWorkers()
	}

	c.ProfilerDir = envOr("DOT_DISCOPOP_PROFILER", filepath.Join(c.DotDiscopop, "profiler"))

	return c
}

// DefaultNumWorkers resource-aware-defaults the worker count when
// DP_NUM_WORKERS is not set: one worker per visible CPU, capped so the
// workers' aggregate perWorkerMemoryBudget doesn't exceed detected system
// memory.
func DefaultNumWorkers() int {
	cpuWorkers := runtime.GOMAXPROCS(0)
	if cpuWorkers < 1 {
		cpuWorkers = 1
	}

	total := memory.TotalMemory()
	if total == 0 {
		// detection failed (e.g. unsupported platform); don't let a
		// memory-based cap silently reduce to single-threaded.
		return cpuWorkers
	}

	memWorkers := int(total / perWorkerMemoryBudget)
	if memWorkers < 1 {
		memWorkers = 1
	}
	if memWorkers < cpuWorkers {
		return memWorkers
	}
	return cpuWorkers
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
